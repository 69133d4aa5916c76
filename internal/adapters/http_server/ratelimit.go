package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// RateLimit rejects clients over their limit with 429. Limiter failures let
// the request through.
func RateLimit(l domain.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), remoteIP(r))
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				writeJSON(w, r, http.StatusTooManyRequests, envelope{Message: "Too many requests, please try again later."})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MemoryLimiter is a per-key token bucket kept in process. It refills max
// tokens per window and lets up to max requests burst.
type MemoryLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = 1
	}
	return &MemoryLimiter{
		limit:     rate.Limit(float64(max) / window.Seconds()),
		burst:     max,
		idle:      window,
		clients:   make(map[string]*client),
		lastSweep: time.Now(),
	}
}

var _ domain.RateLimiter = (*MemoryLimiter)(nil)

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()
	m.mu.Lock()
	if now.Sub(m.lastSweep) > m.idle {
		for k, c := range m.clients {
			if now.Sub(c.seen) > m.idle {
				delete(m.clients, k)
			}
		}
		m.lastSweep = now
	}
	c, ok := m.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(m.limit, m.burst)}
		m.clients[key] = c
	}
	c.seen = now
	m.mu.Unlock()

	allowed := c.lim.AllowN(now, 1)
	observability.ObserveRateLimit("memory", allowed, nil)
	return allowed, nil
}
