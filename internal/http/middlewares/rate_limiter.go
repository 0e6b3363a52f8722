package middlewares

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const CodeRateLimited = "RATE_LIMITED"

// Counter counts hits per key in fixed windows. MemoryCounter serves one
// process; redisclient.Client shares counts between instances.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// RejectObserver is told about every rejected request (metrics).
type RejectObserver interface {
	ObserveRateLimited(route string)
}

type RateLimiter struct {
	counter  Counter
	limit    int64
	window   time.Duration
	observer RejectObserver
}

func NewRateLimiter(counter Counter, limit int, window time.Duration, observer RejectObserver) *RateLimiter {
	return &RateLimiter{
		counter:  counter,
		limit:    int64(limit),
		window:   window,
		observer: observer,
	}
}

// RateLimiterMiddleware enforces the limit for the key derived by keyFn.
// Counter failures let the request through.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		route := c.FullPath()
		count, resetAt, err := rl.counter.Incr(c.Request.Context(), "ratelimit:"+route+":"+key, rl.window)
		if err != nil {
			slog.Default().WarnContext(c.Request.Context(), "rate limiter unavailable", "err", err)
			c.Next()
			return
		}

		if count > rl.limit {
			retryAfter := int(math.Ceil(time.Until(resetAt).Seconds()))
			if retryAfter < 0 {
				retryAfter = 0
			}

			if rl.observer != nil {
				rl.observer.ObserveRateLimited(route)
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abort(c, http.StatusTooManyRequests, CodeRateLimited, "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// MemoryCounter keeps per-key windows in process.
type MemoryCounter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.clients[key]
	if !ok || now.After(b.windowEnd) {
		m.sweep(now)
		b = &clientBucket{windowEnd: now.Add(window)}
		m.clients[key] = b
	}

	b.count++
	return b.count, b.windowEnd, nil
}

// sweep drops expired windows; caller holds m.mu.
func (m *MemoryCounter) sweep(now time.Time) {
	for k, b := range m.clients {
		if now.After(b.windowEnd) {
			delete(m.clients, k)
		}
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
