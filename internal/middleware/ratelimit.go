// internal/middleware/ratelimit.go
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter enforces a fixed window per client IP: at most Limit requests
// per Window, counted from the first request of the window. All /api routes
// sit behind one shared instance.
type RateLimiter struct {
	mu      sync.Mutex
	Limit   int
	Window  time.Duration
	clients map[string]*windowCounter
	now     func() time.Time
}

type windowCounter struct {
	windowStart time.Time
	count       int
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		Limit:   limit,
		Window:  window,
		clients: make(map[string]*windowCounter),
		now:     time.Now,
	}
}

// SetClock overrides the time source for tests.
func (rl *RateLimiter) SetClock(now func() time.Time) {
	rl.now = now
}

// Allow records a request from ip and reports whether it is within the
// window budget.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	counter, ok := rl.clients[ip]
	if !ok || now.Sub(counter.windowStart) >= rl.Window {
		rl.clients[ip] = &windowCounter{windowStart: now, count: 1}
		return true
	}

	counter.count++
	return counter.count <= rl.Limit
}

// Middleware wraps a handler with the rate limit check.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			http.Error(w, "Too many requests from this IP, please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
