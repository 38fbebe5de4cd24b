package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harborwell/insurance-backend/internal/db"
	"github.com/harborwell/insurance-backend/internal/handlers"
	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/middleware"
	"github.com/harborwell/insurance-backend/internal/observability"
	"github.com/harborwell/insurance-backend/internal/repos"
	"github.com/harborwell/insurance-backend/internal/server"
	"github.com/harborwell/insurance-backend/internal/services"
	"github.com/harborwell/insurance-backend/internal/types"
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
		ServiceName: "auth-service",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdown != nil {
		defer shutdown(ctx)
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log, "auth_db")
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrate(&types.User{}); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewAuthRouter(server.AuthRouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
	})

	port := utils.GetEnv("PORT", "8081", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
