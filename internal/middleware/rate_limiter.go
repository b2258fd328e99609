package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/apierror"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RateLimiter allows limit requests per window per client IP, counted in
// store so every instance sharing a Redis store shares the budget.
// A store failure lets the request through.
func RateLimiter(store cache.Store, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()
		count, resetAt, err := store.Incr(c.Request.Context(), key, window)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter: store unavailable")
			c.Next()
			return
		}

		remaining := limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > int64(limit) {
			wait := int(time.Until(resetAt).Seconds()) + 1
			if wait < 1 {
				wait = 1
			}
			c.Header("Retry-After", strconv.Itoa(wait))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}
