// Package store 以 Redis 作為使用者文件庫：偏好檔、收藏、菜單各占一個鍵，
// 文件以 JSON 保存，寫入一律是整份文件覆寫。
package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/config"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// NewRedisClient 建立文件庫連線並測試連通
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("文件庫連線成功",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
	)
	return client, nil
}

// 鍵命名沿用原系統的文件路徑層級
func userKey(uid string) string {
	return fmt.Sprintf("users:%s", uid)
}

func favoritesKey(uid string) string {
	return fmt.Sprintf("users:%s:favorites", uid)
}

func planKey(uid string) string {
	return fmt.Sprintf("users:%s:mealplan", uid)
}
