package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/recoverykit/errors"
	"github.com/kbukum/recoverykit/resilience"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate allowed per key.
	RequestsPerSecond float64
	// Burst is the number of requests a key may make at once.
	Burst int
	// KeyFunc extracts the rate limit key. Defaults to UserBasedKey.
	KeyFunc func(*gin.Context) string
	// Now is the clock used by the buckets. Defaults to time.Now.
	Now func() time.Time
}

// RateLimit rejects requests over the per-key budget with
// RATE_LIMIT_EXCEEDED and a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = UserBasedKey
	}
	limiter := resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{
		Rate:  cfg.RequestsPerSecond,
		Burst: cfg.Burst,
		Now:   cfg.Now,
	})

	return func(c *gin.Context) {
		ok, wait := limiter.Allow(cfg.KeyFunc(c))
		if !ok {
			seconds := int(math.Ceil(wait.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
			abort(c, errors.New(errors.KindRateLimitExceeded, "rate limit exceeded").
				WithDetail("retryAfterSeconds", seconds))
			return
		}
		c.Next()
	}
}

// UserBasedKey uses the authenticated user id, falling back to client IP.
func UserBasedKey(c *gin.Context) string {
	if uid, ok := c.Get(ContextUserID); ok {
		if s, ok := uid.(string); ok && s != "" {
			return s
		}
	}
	return c.ClientIP()
}
