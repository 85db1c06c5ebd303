package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"beaconcms.org/internal/obs"
)

// Redis shares fixed-window counters between instances. The first hit in a window
// creates the key with a TTL equal to the window.
type Redis struct {
	client redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

// RedisOption configures a Redis limiter.
type RedisOption func(*Redis)

// WithKeyPrefix namespaces counter keys, e.g. "ratelimit:contact".
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

func NewRedis(client redis.Cmdable, limit int, win time.Duration, opts ...RedisOption) *Redis {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if win <= 0 {
		win = DefaultWindow
	}
	r := &Redis{client: client, prefix: "ratelimit", limit: int64(limit), window: win}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Allow fails open: when Redis is unreachable the request is let through and the error logged.
func (r *Redis) Allow(ctx context.Context, key string) bool {
	full := r.key(key)
	n, err := r.client.Incr(ctx, full).Result()
	if err != nil {
		obs.Logger().Warn("rate limiter unavailable", zap.String("key", full), zap.Error(err))
		return true
	}
	if n == 1 {
		if err := r.client.PExpire(ctx, full, r.window).Err(); err != nil {
			obs.Logger().Warn("rate limiter expiry failed", zap.String("key", full), zap.Error(err))
		}
	}
	return n <= r.limit
}
