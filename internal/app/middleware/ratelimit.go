package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jestelle/slash-podcast/internal/infrastructure/ratelimit"
	"github.com/jestelle/slash-podcast/pkg/response"
)

// RateLimit enforces the global per-IP throttle.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return limitBy(limiter, "ip:")
}

// GenerationLimit throttles episode creation separately; generation is
// orders of magnitude more expensive than any other request.
func GenerationLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return limitBy(limiter, "gen:")
}

func limitBy(limiter ratelimit.Limiter, keyPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		info, err := limiter.Allow(c.Request.Context(), keyPrefix+c.ClientIP())
		if err == nil {
			setHeaders(c, info)
			if !info.Allowed {
				response.TooManyRequests(c, info.Reset)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func setHeaders(c *gin.Context, info ratelimit.RateLimitInfo) {
	c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	c.Writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.Reset.Unix(), 10))
	if !info.Allowed {
		reset := time.Until(info.Reset)
		if reset < 0 {
			reset = 0
		}
		c.Writer.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds())))
	}
}
