package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter caps requests per client IP over a fixed window. The router
// runs one limiter per budget: a tight one in front of the auth endpoints
// and a looser one in front of the LeetCode routes, since every fetch there
// burns shared public relay quota. RealIP runs earlier in the chain, so
// RemoteAddr holds the client address.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
}

type clientWindow struct {
	count   int
	startAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}

	go rl.sweep()
	return rl
}

// sweep drops windows that have fully expired so idle clients do not
// accumulate forever.
func (rl *RateLimiter) sweep() {
	for {
		time.Sleep(rl.window)
		cutoff := time.Now().Add(-rl.window)

		rl.mu.Lock()
		for ip, cw := range rl.clients {
			if cw.startAt.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow counts one request for the client and reports whether it is still
// inside the budget. The window is fixed: it opens on the first request and
// resets once it ages out.
func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, ok := rl.clients[ip]
	if !ok || now.Sub(cw.startAt) > rl.window {
		rl.clients[ip] = &clientWindow{count: 1, startAt: now}
		return true
	}

	cw.count++
	return cw.count <= rl.limit
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr, time.Now()) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
