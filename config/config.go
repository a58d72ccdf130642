package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Session 儲存後端
const (
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	API      APIConfig      `envPrefix:"API_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	LogLevel string         `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Addr         string   `env:"ADDR" envDefault:":8080"`
	Locale       string   `env:"LOCALE" envDefault:"en"`
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:4200"`
	SecureCookie bool     `env:"SECURE_COOKIE" envDefault:"false"`
	// 每個 IP 每分鐘可送出的登入/註冊次數
	AuthRatePerMinute int `env:"AUTH_RATE_PER_MINUTE" envDefault:"20"`
}

// APIConfig 上游 Event Link API
type APIConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8000"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type SessionConfig struct {
	Backend     string        `env:"BACKEND" envDefault:"redis"`
	TTL         time.Duration `env:"TTL" envDefault:"720h"`
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" envDefault:"30m"`
}

type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	DBName   string `env:"NAME" envDefault:"postgres"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}

var AppConfig *Config

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	AppConfig = cfg
	return AppConfig, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis, SessionBackendPostgres:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	return nil
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server: ServerConfig{
			Addr:              ":0",
			Locale:            "en",
			AuthRatePerMinute: 20,
		},
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 2 * time.Second,
		},
		Session: SessionConfig{
			Backend:     SessionBackendMemory,
			TTL:         time.Hour,
			IdleTimeout: time.Minute,
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
		LogLevel: "info",
	}
}
