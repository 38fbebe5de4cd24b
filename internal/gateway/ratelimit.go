package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/harborwell/insurance-backend/internal/logger"
)

// RateLimiter applies a fixed-window counter per client IP backed by
// redis, so the limit holds across gateway replicas. When redis is
// unreachable requests pass through rather than failing closed.
type RateLimiter struct {
	log    *logger.Logger
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(log *logger.Logger, rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		log:    log.With("middleware", "RateLimiter"),
		rdb:    rdb,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), time.Now().Unix()/int64(rl.window.Seconds()))

		count, err := rl.rdb.Incr(ctx, key).Result()
		if err != nil {
			rl.log.Warn("rate limit check failed, allowing request", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.rdb.Expire(ctx, key, rl.window)
		}
		if count > int64(rl.limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
