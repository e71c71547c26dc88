package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vereinsportal/pkg/logger"
)

// Middleware returns a gin middleware enforcing the rate limiter. A nil
// limiter disables enforcement.
func Middleware(rl *RateLimiter) gin.HandlerFunc {
	appLogger := logger.GetDefault()

	return func(c *gin.Context) {
		if rl == nil || !rl.config.Enabled {
			c.Next()
			return
		}

		result, err := rl.Check(c.Request.Context(), c.ClientIP(), c.Request.URL.Path)
		if err != nil {
			// Fail open, but leave a trace.
			appLogger.WithError(err).Warn("rate limiter unavailable")
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			appLogger.LogRateLimitExceeded(c.Request.Context(), c.ClientIP(), c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate limit exceeded",
				"message": "Too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}
