package redisad

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"hotel_booking/internal/adapters/observability"
)

// Limiter is a fixed-window request counter shared by every API instance.
type Limiter struct {
	c      *redis.Client
	max    int64
	window time.Duration
	prefix string
}

func New(addr, pass string, db int, max int, window time.Duration) *Limiter {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), max, window)
}

func NewWithClient(c *redis.Client, max int, window time.Duration) *Limiter {
	return &Limiter{c: c, max: int64(max), window: window, prefix: "ratelimit:"}
}

// Allow counts one request for key. The window starts with the first request
// and the counter expires with it.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	pipe := l.c.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		observability.ObserveRateLimit("redis", false, err)
		return false, err
	}
	allowed := incr.Val() <= l.max
	observability.ObserveRateLimit("redis", allowed, nil)
	return allowed, nil
}

func (l *Limiter) Ping(ctx context.Context) error {
	return l.c.Ping(ctx).Err()
}

func (l *Limiter) Close() error { return l.c.Close() }
