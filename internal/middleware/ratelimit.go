package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter bounds how often one client may hit an endpoint, with a
// sliding window of request times per IP. It guards the
// credential-issuing routes: presigned asset uploads are the cheapest
// way to fill the bucket.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu   sync.Mutex
	seen map[string][]time.Time
	stop chan struct{}
}

// NewRateLimiter allows limit requests per window per client IP and
// starts a background sweep of idle clients.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:  limit,
		window: window,
		seen:   make(map[string][]time.Time),
		stop:   make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the background sweep goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweepOnce()
		case <-rl.stop:
			return
		}
	}
}

// sweepOnce drops clients with no request inside the current window.
func (rl *RateLimiter) sweepOnce() {
	cutoff := time.Now().Add(-rl.window)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, times := range rl.seen {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.seen, ip)
		}
	}
}

// allow records a request for ip and reports whether it stayed inside
// the limit.
func (rl *RateLimiter) allow(ip string) bool {
	now := time.Now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	live := rl.seen[ip][:0]
	for _, ts := range rl.seen[ip] {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	if len(live) >= rl.limit {
		rl.seen[ip] = live
		return false
	}
	rl.seen[ip] = append(live, now)
	return true
}

// Middleware rejects over-limit clients with 429 and the JSON error
// envelope the console expects.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip) {
			slog.Warn("rate limit exceeded", "remote", ip, "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the client address, preferring proxy headers: the
// leftmost X-Forwarded-For entry, then X-Real-IP, then RemoteAddr with
// the port stripped.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
