package database

import (
	"context"
	"event-link-gateway/config"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis 建立存放訪客 session 的 Redis 連線
func InitRedis(config *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,

		// 每個請求最多一次 HGETALL 或一次 pipeline，連線池不需要太大
		PoolSize:     20,
		MinIdleConns: 2,
		// 還原 session 在請求路徑上，Redis 慢時寧可視為未登入
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", rdb.Options().Addr, err)
	}

	return rdb, nil
}
