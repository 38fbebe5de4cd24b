package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harborwell/insurance-backend/internal/db"
	"github.com/harborwell/insurance-backend/internal/handlers"
	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/middleware"
	"github.com/harborwell/insurance-backend/internal/observability"
	"github.com/harborwell/insurance-backend/internal/refcheck"
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
		ServiceName: "quote-service",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdown != nil {
		defer shutdown(ctx)
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	policyServiceURL := utils.GetEnv("POLICY_SERVICE_URL", "http://localhost:8083", log)
	convertTimeout := utils.GetEnvAsDuration("POLICY_CREATE_TIMEOUT", 10*time.Second, log)
	sweepInterval := utils.GetEnvAsDuration("QUOTE_SWEEP_INTERVAL", time.Hour, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log, "quote_db")
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrate(&types.Quote{}); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	quoteRepo := repos.NewQuoteRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	policyCreator := refcheck.NewHTTPPolicyCreator(log, policyServiceURL, convertTimeout)
	quoteService := services.NewQuoteService(thePG, log, quoteRepo, policyCreator)

	// Handlers
	log.Info("Setting up handlers from main...")
	quoteHandler := handlers.NewQuoteHandler(log, quoteService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewQuoteRouter(server.QuoteRouterConfig{
		QuoteHandler:   quoteHandler,
		AuthMiddleware: authMiddleware,
	})

	// Background expiry sweep runs for the life of the process.
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	quoteService.StartSweeper(runCtx, sweepInterval)

	port := utils.GetEnv("PORT", "8085", log)
	srv := &http.Server{Addr: ":" + port, Handler: router}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
