package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Second)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.allow("198.51.100.7") {
			t.Fatalf("request %d: denied inside the limit", i+1)
		}
	}
	if rl.allow("198.51.100.7") {
		t.Error("request over the limit was allowed")
	}

	// Each client IP has its own window.
	if !rl.allow("198.51.100.8") {
		t.Error("a different client was denied")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, 100*time.Millisecond)
	defer rl.Stop()

	rl.allow("198.51.100.7")
	rl.allow("198.51.100.7")
	if rl.allow("198.51.100.7") {
		t.Error("third request inside the window was allowed")
	}

	time.Sleep(150 * time.Millisecond)

	if !rl.allow("198.51.100.7") {
		t.Error("denied after the window slid past the old requests")
	}
}

func TestRateLimiterMiddlewareRejectsWithEnvelope(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))

	sign := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/assets/sign", nil)
		req.RemoteAddr = "198.51.100.7:40312"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	if rr := sign(); rr.Code != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", rr.Code)
	}

	rr := sign()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q, want application/json", ct)
	}
	if !strings.Contains(rr.Body.String(), "too many requests") {
		t.Errorf("body: got %q", rr.Body.String())
	}
}

func TestRateLimiterSweepDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(5, 50*time.Millisecond)
	defer rl.Stop()

	rl.allow("198.51.100.7")
	rl.allow("198.51.100.8")

	time.Sleep(100 * time.Millisecond)
	rl.allow("198.51.100.8") // fresh activity keeps this one alive

	rl.sweepOnce()

	rl.mu.Lock()
	_, idleKept := rl.seen["198.51.100.7"]
	_, freshKept := rl.seen["198.51.100.8"]
	rl.mu.Unlock()

	if idleKept {
		t.Error("idle client survived the sweep")
	}
	if !freshKept {
		t.Error("active client was swept")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.9", "", "10.0.0.1:1234", "203.0.113.9"},
		{"forwarded chain takes leftmost", "203.0.113.9, 10.0.0.2", "", "10.0.0.1:1234", "203.0.113.9"},
		{"real-ip fallback", "", "203.0.113.10", "10.0.0.1:1234", "203.0.113.10"},
		{"remote addr strips port", "", "", "203.0.113.11:5678", "203.0.113.11"},
		{"remote addr without port", "", "", "203.0.113.11", "203.0.113.11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
