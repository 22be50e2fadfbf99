package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FocuswithJustin/usjconv/internal/config"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter(60, 2)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	steps := []struct {
		advance time.Duration
		client  string
		ok      bool
	}{
		{0, "a", true},
		{0, "a", true},
		{0, "a", false},
		{0, "b", true},
		{time.Second, "a", true},
		{0, "a", false},
	}
	for i, step := range steps {
		clock = clock.Add(step.advance)
		ok, _, retry := rl.allow(step.client)
		if ok != step.ok {
			t.Fatalf("step %d: allow(%s) = %v, want %v", i, step.client, ok, step.ok)
		}
		if !ok && retry <= 0 {
			t.Errorf("step %d: retryAfter = %v", i, retry)
		}
	}

	clock = clock.Add(10 * time.Minute)
	rl.allow("c")
	if _, ok := rl.buckets["a"]; ok {
		t.Error("idle bucket was not swept")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	h := newTestServer(func(c *config.Config) {
		c.Server.RateLimit = 1
		c.Server.RateBurst = 1
	})

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/health", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}
	if got := first.Header().Get("X-RateLimit-Limit"); got != "1" {
		t.Errorf("X-RateLimit-Limit = %q", got)
	}

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/health", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"remote addr", "", "", "203.0.113.7:4321", "203.0.113.7"},
		{"forwarded", "198.51.100.1, 10.0.0.1", "", "10.0.0.2:1", "198.51.100.1"},
		{"bad forwarded", "nonsense", "198.51.100.2", "10.0.0.2:1", "198.51.100.2"},
		{"no port", "", "", "192.0.2.9", "192.0.2.9"},
		{"garbage", "", "", "pipe", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
