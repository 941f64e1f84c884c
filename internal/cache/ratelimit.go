package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

const rateKeyPrefix = "ratelimit:"

// RateLimiter counts requests per client key in Redis. Every request pushes
// the window's expiry forward, so a client has to stay quiet for a whole
// window to be let through again.
type RateLimiter struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
}

func (c *Client) RateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: c.rdb, max: int64(max), window: window}
}

// Allow counts one request for key and reports whether it is within the
// limit. Redis errors let the request through.
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	k := rateKeyPrefix + key

	pipe := l.rdb.Pipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("Rate limiter unavailable", "key", key, "error", err)
		return true
	}
	return incr.Val() <= l.max
}
