package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cardio-risk-server/internal/domain"
)

// RateLimit applies a global token-bucket limit across all clients. The
// calculators are CPU-cheap, so a single shared bucket is enough; per-client
// fairness is left to upstream infrastructure.
func RateLimit(requestsPerSecond float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.NewAPIError(
				domain.ErrRateLimit,
				"Too many requests",
				"request rate limit exceeded, retry shortly",
				c.GetString("correlation_id"),
			))
			return
		}
		c.Next()
	}
}
