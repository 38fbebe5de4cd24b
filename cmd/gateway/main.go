package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harborwell/insurance-backend/internal/gateway"
	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/observability"
	"github.com/harborwell/insurance-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	ctx := context.Background()
	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "api-gateway",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdown != nil {
		defer shutdown(ctx)
	}

	// Redis
	log.Info("Connecting to redis from main...")
	rdb := redis.NewClient(&redis.Options{
		Addr:     utils.GetEnv("REDIS_ADDR", "localhost:6379", log),
		Password: utils.GetEnv("REDIS_PASSWORD", "", log),
		DB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, rate limiting degrades to pass-through", "error", err)
	}

	// Rate limiter
	rateLimit := utils.GetEnvAsInt("RATE_LIMIT_REQUESTS", 300, log)
	rateWindow := utils.GetEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute, log)
	limiter := gateway.NewRateLimiter(log, rdb, rateLimit, rateWindow)

	// Router
	log.Info("Setting up router from main...")
	router, err := gateway.NewRouter(gateway.RouterConfig{
		Log:         log,
		Upstreams:   gateway.UpstreamsFromEnv(log),
		RateLimiter: limiter,
	})
	if err != nil {
		log.Error("Gateway router init failed", "error", err)
		os.Exit(1)
	}

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
