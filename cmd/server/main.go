package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-link-gateway/config"
	"event-link-gateway/internal/api"
	"event-link-gateway/internal/database"
	"event-link-gateway/internal/handler"
	"event-link-gateway/internal/repository"
	"event-link-gateway/internal/visitor"
	"event-link-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		logger.L.Info("No .env file found; using system environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.L.Fatal("Failed to load config", zap.Error(err))
	}
	logger.SetLevel(cfg.LogLevel)
	log := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	persisters, cleanup := sessionBackend(ctx, cfg, log)
	defer cleanup()

	client := api.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
	registry := visitor.NewRegistry(client, persisters,
		visitor.WithIdleTimeout(cfg.Session.IdleTimeout),
		visitor.WithLocale(cfg.Server.Locale),
	)
	go registry.Run(ctx, sweepInterval)

	router := gin.New()
	router.Use(gin.Recovery())
	handler.NewHandler(registry, handler.Options{
		SecureCookie:      cfg.Server.SecureCookie,
		CookieMaxAge:      cfg.Session.TTL,
		AuthRatePerMinute: cfg.Server.AuthRatePerMinute,
	}).RegisterRoutes(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept-Language"},
		AllowCredentials: true,
	}).Handler(router)

	// 不設 WriteTimeout：/toasts 是長連線
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           corsHandler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", cfg.Server.Addr), zap.String("api", client.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received; shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	registry.Close()
	log.Info("Server stopped cleanly")
}

// sessionBackend 依設定建立 session 持久化層，回傳的 cleanup 關閉連線
func sessionBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (visitor.PersisterFactory, func()) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		return visitor.RedisPersisters(rdb, cfg.Session.TTL), func() { rdb.Close() }

	case config.SessionBackendPostgres:
		pool, err := database.InitDatabase(&cfg.Database)
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		go purgeStaleSessions(ctx, pool, cfg.Session.TTL, log)
		return visitor.PostgresPersisters(pool), pool.Close

	default:
		log.Warn("Using in-memory sessions; logins are lost on restart")
		return visitor.MemoryPersisters(), func() {}
	}
}

// purgeStaleSessions Postgres 沒有 TTL，定期刪除過期的 session
func purgeStaleSessions(ctx context.Context, pool *pgxpool.Pool, ttl time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repository.PurgeStale(ctx, pool, ttl)
			if err != nil {
				log.Warn("Purge stale sessions failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("Purged stale sessions", zap.Int64("count", n))
			}
		}
	}
}
