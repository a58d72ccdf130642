package testutil

import (
	"context"
	"event-link-gateway/config"
	"event-link-gateway/internal/database"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SetupRedisOnly 僅初始化 Redis，用於只依賴 Redis 的測試 (如 session cache)
func SetupRedisOnly() (*redis.Client, func(), error) {
	cfg := config.LoadTestConfig()
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %v", err)
	}
	log.Println("Test redis connected successfully")
	cleanup := func() {
		rdb.Close()
		log.Println("Test redis closed")
	}
	return rdb, cleanup, nil
}

// SetupDatabaseOnly 初始化測試 DB 並建立資料表
func SetupDatabaseOnly() (*pgxpool.Pool, func(), error) {
	cfg := config.LoadTestConfig()
	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize test database: %v", err)
	}
	if err := database.Migrate(context.Background(), pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to migrate test database: %v", err)
	}
	log.Println("Test database connected successfully")
	cleanup := func() {
		pool.Close()
		log.Println("Test database closed")
	}
	return pool, cleanup, nil
}
