package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/harborwell/insurance-backend/internal/handlers"
	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/utils"
)

// Upstreams holds the base URLs of the backing services. The gateway
// does no auth itself; each service validates the bearer token it
// receives, so a compromised gateway cannot mint identities.
type Upstreams struct {
	Auth      string
	Customers string
	Policies  string
	Claims    string
	Quotes    string
}

func UpstreamsFromEnv(log *logger.Logger) Upstreams {
	return Upstreams{
		Auth:      utils.GetEnv("AUTH_SERVICE_URL", "http://localhost:8081", log),
		Customers: utils.GetEnv("CUSTOMER_SERVICE_URL", "http://localhost:8082", log),
		Policies:  utils.GetEnv("POLICY_SERVICE_URL", "http://localhost:8083", log),
		Claims:    utils.GetEnv("CLAIMS_SERVICE_URL", "http://localhost:8084", log),
		Quotes:    utils.GetEnv("QUOTE_SERVICE_URL", "http://localhost:8085", log),
	}
}

type RouterConfig struct {
	Log         *logger.Logger
	Upstreams   Upstreams
	RateLimiter *RateLimiter
}

func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("api-gateway"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			utils.GetEnv("CORS_ALLOW_ORIGIN", "http://localhost:3000", cfg.Log),
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	if cfg.RateLimiter != nil {
		router.Use(cfg.RateLimiter.Middleware())
	}

	router.GET("/healthcheck", handlers.HealthCheck)

	routes := []struct {
		prefix   string
		upstream string
	}{
		{"/api/v1/auth", cfg.Upstreams.Auth},
		{"/api/v1/customers", cfg.Upstreams.Customers},
		{"/api/v1/policies", cfg.Upstreams.Policies},
		{"/api/v1/claims", cfg.Upstreams.Claims},
		{"/api/v1/quotes", cfg.Upstreams.Quotes},
	}
	for _, r := range routes {
		proxy, err := newProxy(cfg.Log, r.upstream)
		if err != nil {
			return nil, err
		}
		router.Any(r.prefix, proxy)
		router.Any(r.prefix+"/*rest", proxy)
	}

	return router, nil
}

func newProxy(log *logger.Logger, upstream string) (gin.HandlerFunc, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, err
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("upstream unavailable", "upstream", target.Host, "path", r.URL.Path, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success":false,"message":"upstream service unavailable"}`))
	}
	return func(c *gin.Context) {
		proxy.ServeHTTP(c.Writer, c.Request)
	}, nil
}
