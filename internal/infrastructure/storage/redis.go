package storage

import (
	"context"
	"fmt"
	"time"

	"grocery-manager/internal/infrastructure/config"
	"grocery-manager/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// NewRedisClient 創建 Redis 客戶端並驗證連線
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Storage.RedisAddr,
		Password: cfg.Storage.RedisPassword,
		DB:       cfg.Storage.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Storage.RedisAddr, err)
	}

	common.LogInfo("Redis 連線成功",
		zap.String("addr", cfg.Storage.RedisAddr),
		zap.Int("db", cfg.Storage.RedisDB),
	)

	return client, nil
}
