package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/siege-spider/spider-backend/pkg/ratelimit"
)

// RateLimitConfig holds rate limit configuration
type RateLimitConfig struct {
	Capacity   int64                     // Maximum number of requests
	RefillRate int64                     // Requests per second
	KeyFunc    func(*gin.Context) string // Function to extract rate limit key
	Limiter    *ratelimit.RateLimiter    // optional, built from Capacity/RefillRate when nil
}

// IPKeyFunc uses only IP address (for public endpoints)
func IPKeyFunc(c *gin.Context) string {
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	limiter := config.Limiter
	if limiter == nil {
		limiter = ratelimit.NewRateLimiter(config.Capacity, config.RefillRate)
	}

	if config.KeyFunc == nil {
		config.KeyFunc = IPKeyFunc
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)

		// Check if request is allowed
		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(config.Capacity, 10))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))
			c.Header("Retry-After", "1")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %d requests per second", config.RefillRate),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(config.Capacity, 10))

		c.Next()
	}
}

// IngestRateLimit 클라이언트 IP 별 매치 수집 제한
func IngestRateLimit(capacity, refillRate int64) gin.HandlerFunc {
	return RateLimitMiddleware(RateLimitConfig{
		Capacity:   capacity,
		RefillRate: refillRate,
		KeyFunc:    IPKeyFunc,
	})
}
