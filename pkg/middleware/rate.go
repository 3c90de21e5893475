// Package middleware provides the HTTP middleware stack: authentication
// gates, per-IP rate limiting, request logging, panic recovery, and CORS.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/response"
)

// bucket tracks a sliding-window request count for one IP.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(max int, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

// Limiter enforces a per-IP request budget over a rolling window. Each
// Limiter owns its buckets, so the general API limit and the stricter
// auth-endpoint limit never share counters.
type Limiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewLimiter creates a limiter allowing max requests per window per IP and
// starts a background sweep that evicts expired buckets.
func NewLimiter(max int, window time.Duration) *Limiter {
	l := &Limiter{
		max:     max,
		window:  window,
		buckets: map[string]*bucket{},
	}
	go l.sweep()
	return l
}

// sweep evicts buckets whose window has expired. Runs every minute;
// prevents unbounded memory growth on long-running servers.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		for ip, b := range l.buckets {
			b.mu.Lock()
			expired := now.After(b.resetAt)
			b.mu.Unlock()
			if expired {
				delete(l.buckets, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *Limiter) bucket(ip string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[ip]; ok {
		return b
	}

	b := &bucket{resetAt: time.Now().Add(l.window)}
	l.buckets[ip] = b
	return b
}

// Allow reports whether one more request from ip fits the budget.
func (l *Limiter) Allow(ip string) bool {
	return l.bucket(ip).allow(l.max, l.window)
}

// Middleware rejects over-budget requests with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			ip = fwd
		}

		if !l.Allow(ip) {
			response.Error(w, http.StatusTooManyRequests, "Too many requests", "Rate limit exceeded, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit is a convenience wrapper: a fresh Limiter as a plain middleware.
// Example: middleware.RateLimit(100, 15*time.Minute)
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	return NewLimiter(max, window).Middleware
}
