package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/harborwell/insurance-backend/internal/handlers"
	"github.com/harborwell/insurance-backend/internal/middleware"
	"github.com/harborwell/insurance-backend/internal/types"
	"github.com/harborwell/insurance-backend/internal/utils"
)

// Each microservice builds its own engine with the shared middleware
// stack and registers only its own route group. The gateway is the only
// process that fronts all of them.

func newEngine(serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			utils.GetEnv("CORS_ALLOW_ORIGIN", "http://localhost:3000", nil),
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)
	return router
}

type AuthRouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewAuthRouter(cfg AuthRouterConfig) *gin.Engine {
	router := newEngine("auth-service")

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
	}

	protected := router.Group("/api/v1/auth")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.GET("/me", cfg.AuthHandler.GetMe)

	return router
}

type CustomerRouterConfig struct {
	CustomerHandler *handlers.CustomerHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

func NewCustomerRouter(cfg CustomerRouterConfig) *gin.Engine {
	router := newEngine("customer-service")

	customers := router.Group("/api/v1/customers")
	customers.Use(cfg.AuthMiddleware.RequireAuth())
	{
		customers.POST("", cfg.CustomerHandler.CreateCustomer)
		customers.GET("", cfg.CustomerHandler.ListCustomers)
		customers.GET("/:id", cfg.CustomerHandler.GetCustomer)
		customers.PUT("/:id", cfg.CustomerHandler.UpdateCustomer)
		customers.DELETE("/:id", cfg.CustomerHandler.DeleteCustomer)
	}

	return router
}

type PolicyRouterConfig struct {
	PolicyHandler  *handlers.PolicyHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewPolicyRouter(cfg PolicyRouterConfig) *gin.Engine {
	router := newEngine("policy-service")

	policies := router.Group("/api/v1/policies")
	policies.Use(cfg.AuthMiddleware.RequireAuth())
	{
		policies.POST("", cfg.PolicyHandler.CreatePolicy)
		policies.GET("", cfg.PolicyHandler.ListPolicies)
		policies.GET("/:id", cfg.PolicyHandler.GetPolicy)
		policies.PUT("/:id", cfg.PolicyHandler.UpdatePolicy)
		policies.PUT("/:id/status", cfg.PolicyHandler.UpdateStatus)
		policies.GET("/:id/history", cfg.PolicyHandler.History)
		policies.DELETE("/:id",
			cfg.AuthMiddleware.RequireRoles(types.RoleAdmin),
			cfg.PolicyHandler.DeletePolicy)
	}

	return router
}

type ClaimRouterConfig struct {
	ClaimHandler   *handlers.ClaimHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewClaimRouter(cfg ClaimRouterConfig) *gin.Engine {
	router := newEngine("claims-service")

	claims := router.Group("/api/v1/claims")
	claims.Use(cfg.AuthMiddleware.RequireAuth())
	{
		claims.POST("", cfg.ClaimHandler.CreateClaim)
		claims.GET("", cfg.ClaimHandler.ListClaims)
		claims.GET("/:id", cfg.ClaimHandler.GetClaim)
		claims.PUT("/:id/status", cfg.ClaimHandler.UpdateStatus)
		claims.GET("/:id/history", cfg.ClaimHandler.History)
		claims.POST("/:id/approve",
			cfg.AuthMiddleware.RequireRoles(types.RoleAdjuster, types.RoleAdmin),
			cfg.ClaimHandler.Approve)
		claims.POST("/:id/deny",
			cfg.AuthMiddleware.RequireRoles(types.RoleAdjuster, types.RoleAdmin),
			cfg.ClaimHandler.Deny)
	}

	return router
}

type QuoteRouterConfig struct {
	QuoteHandler   *handlers.QuoteHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewQuoteRouter(cfg QuoteRouterConfig) *gin.Engine {
	router := newEngine("quote-service")

	quotes := router.Group("/api/v1/quotes")
	quotes.Use(cfg.AuthMiddleware.RequireAuth())
	{
		quotes.POST("", cfg.QuoteHandler.CreateQuote)
		quotes.POST("/calculate", cfg.QuoteHandler.CalculatePremium)
		quotes.GET("", cfg.QuoteHandler.ListQuotes)
		quotes.GET("/:id", cfg.QuoteHandler.GetQuote)
		quotes.POST("/:id/convert", cfg.QuoteHandler.Convert)
	}

	return router
}
