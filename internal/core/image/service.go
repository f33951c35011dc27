package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG
	_ "image/png"  // 支援 PNG

	_ "golang.org/x/image/webp" // 支援 WebP

	"grocery-manager/internal/pkg/common"
)

// Service 收據圖片處理服務
type Service struct {
	maxSizeBytes int64
}

// NewService 創建新的圖片處理服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
	}
}

// DecodeReceipt 解碼上傳的收據圖片。
// 接受純 base64 或 data URL，檢查大小限制並嗅探圖片格式，
// 回傳原始位元組與 content type。
func (s *Service) DecodeReceipt(imageData string) ([]byte, string, error) {
	imageData = strings.TrimSpace(imageData)
	if imageData == "" {
		return nil, "", common.ErrNoImageProvided
	}

	// 去除 data URL 前綴
	if strings.HasPrefix(imageData, "data:") {
		idx := strings.Index(imageData, ",")
		if idx < 0 {
			return nil, "", common.ErrInvalidImageFormat
		}
		imageData = imageData[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, "", common.WrapError(common.ErrInvalidImageFormat, fmt.Errorf("failed to decode base64 image: %w", err))
	}

	if s.maxSizeBytes > 0 && int64(len(raw)) > s.maxSizeBytes {
		return nil, "", common.WrapError(common.ErrInvalidImageSize,
			fmt.Errorf("image size %d exceeds maximum limit of %d bytes", len(raw), s.maxSizeBytes))
	}

	// 嗅探圖片格式
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", common.WrapError(common.ErrInvalidImageFormat, fmt.Errorf("failed to decode image: %w", err))
	}

	contentType := "image/" + format
	return raw, contentType, nil
}

// ToBase64 將圖片位元組轉回 base64，供推論端點使用
func (s *Service) ToBase64(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}
