package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"inventory_back_end/internal/cache"
)

const (
	// Fenêtre commune à toutes les limites
	RateLimitWindow = 1 * time.Minute

	// Max 30 recherches Elastic par minute et par IP
	SearchMaxRequests = 30
)

// RateLimit limite le nombre de requêtes par IP sur la fenêtre donnée.
// Sans Redis (rdb nil) ou si Redis ne répond pas, la requête passe.
func RateLimit(rdb *redis.Client, prefix string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || max <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := prefix + ":" + c.ClientIP()

		requests, err := cache.IncrementRateLimit(ctx, rdb, key, window)
		if err != nil {
			zap.S().Warnf("⚠️ Rate limit indisponible (%s): %v", key, err)
			c.Next()
			return
		}

		remaining := int64(max) - requests
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if requests > int64(max) {
			retryAfter := cache.RateLimitTTL(ctx, rdb, key)
			if retryAfter <= 0 {
				retryAfter = window
			}
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": int(retryAfter.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// APIRateLimit limite les requêtes générales de l'API.
func APIRateLimit(rdb *redis.Client, perMinute int) gin.HandlerFunc {
	return RateLimit(rdb, "api_requests", perMinute, RateLimitWindow)
}

// SearchRateLimit limite les recherches (anti-spam).
func SearchRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return RateLimit(rdb, "search_requests", SearchMaxRequests, RateLimitWindow)
}
