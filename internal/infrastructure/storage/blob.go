package storage

import (
	"bytes"
	"context"
	"fmt"

	appconfig "grocery-manager/internal/infrastructure/config"
	"grocery-manager/internal/pkg/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3BlobStore 以 S3 實作收據圖片的物件儲存
type S3BlobStore struct {
	client *s3.Client
	bucket string
}

// NewS3BlobStore 創建 S3 物件儲存。
// 有明確設定 access key 時用靜態憑證，否則走預設憑證鏈
// （環境變數、instance profile 等）。
func NewS3BlobStore(ctx context.Context, cfg *appconfig.Config) (*S3BlobStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Storage.AWSRegion),
	}
	if cfg.Storage.AWSAccessKey != "" && cfg.Storage.AWSSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Storage.AWSAccessKey, cfg.Storage.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	common.LogInfo("S3 物件儲存已初始化",
		zap.String("region", cfg.Storage.AWSRegion),
		zap.String("bucket", cfg.Storage.ReceiptBucket),
	)

	return &S3BlobStore{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Storage.ReceiptBucket,
	}, nil
}

// Put 上傳物件並回傳 s3:// 形式的 handle
func (s *S3BlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
