package db

import (
	"context"
	"fmt"
	"time"

	"PromptFM/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient 是全局Redis客户端
// 可选功能：仅在配置了REDIS_HOST时建立，用于向进程外展示端发布提示词
var RedisClient *redis.Client

// ConnectRedis 初始化Redis连接
func ConnectRedis(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// PublishPrompt 把解析出的提示词发布到频道
// 纯瞬时广播，不落盘；没有订阅者时消息直接丢弃
func PublishPrompt(ctx context.Context, channel string, payload []byte) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Publish(ctx, channel, payload).Err()
}
