package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/codeduel/codeduel-backend/pkg/logger"
	"github.com/codeduel/codeduel-backend/pkg/ratelimit"
)

// RateLimitConfig configures the Redis backed rate limit middleware.
type RateLimitConfig struct {
	Limiter *ratelimit.Limiter
	Limit   int                       // max requests per window
	Window  time.Duration             // window size
	KeyFunc func(*gin.Context) string // extracts the rate limit key
}

// DefaultKeyFunc uses the user id when authenticated, the client IP otherwise.
func DefaultKeyFunc(c *gin.Context) string {
	if userID, exists := c.Get("userId"); exists {
		return fmt.Sprintf("user:%v", userID)
	}
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// IPKeyFunc keys on the client IP only, for unauthenticated endpoints.
func IPKeyFunc(c *gin.Context) string {
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// RateLimit enforces a request budget per key. Redis failures are logged
// and the request is let through.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = DefaultKeyFunc
	}
	if config.Limit <= 0 {
		config.Limit = 60
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)

		allowed, info, err := config.Limiter.AllowN(c.Request.Context(), key, config.Limit, config.Window)
		if err != nil {
			logger.Warn("Rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(info.ResetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded",
				"retryAfter": retryAfter,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthRateLimit limits login and register attempts to 5 per minute per IP.
func AuthRateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Limiter: limiter,
		Limit:   5,
		Window:  time.Minute,
		KeyFunc: IPKeyFunc,
	})
}

// APIRateLimit limits general API traffic to 120 requests per minute.
func APIRateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Limiter: limiter,
		Limit:   120,
		Window:  time.Minute,
		KeyFunc: DefaultKeyFunc,
	})
}
