package cache

import (
	"context"
	"fmt"
	"prop_manager/config"
	"prop_manager/internal/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetInstance khởi tạo và trả về một *redis.Client.
// Redis được dùng cho pub/sub fan-out và subscriber bookkeeping của SSE layer.
//
// Returns:
// - *redis.Client: Client Redis đã ping thành công.
func GetInstance(c *config.Configuration) (*redis.Client, error) {
	if c.Redis_Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         c.Redis_Address,
		Password:     c.Redis_Password,
		DB:           c.Redis_DB,
		PoolSize:     c.Redis_PoolSize,
		DialTimeout:  5 * time.Second, // Timeout khi kết nối
		ReadTimeout:  3 * time.Second, // Timeout khi đọc
		WriteTimeout: 3 * time.Second, // Timeout khi ghi
	})

	// Kiểm tra kết nối
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.GetAppLogger().Info("Successfully connected to Redis")
	return client, nil
}

// CloseInstance đóng kết nối Redis client.
func CloseInstance(client *redis.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		logger.GetAppLogger().WithError(err).Error("Failed to close Redis client")
		return err
	}
	logger.GetAppLogger().Info("Successfully disconnected from Redis")
	return nil
}
