package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// --- Rate Limiting ---

// IncrementRateLimit incrémente le compteur de la fenêtre courante et retourne sa valeur.
func IncrementRateLimit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, error) {
	pipe := rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimitTTL retourne le temps restant avant la réouverture de la fenêtre.
func RateLimitTTL(ctx context.Context, rdb *redis.Client, key string) time.Duration {
	ttl, err := rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}
