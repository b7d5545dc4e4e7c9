package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func testLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *clock) {
	t.Helper()
	rl := NewRateLimiter(limit, window)
	t.Cleanup(rl.Stop)
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl.now = c.now
	return rl, c
}

func TestRateLimiterTake(t *testing.T) {
	rl, _ := testLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if ok, _ := rl.take("1.2.3.4 /api/auth/login"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, _ := rl.take("1.2.3.4 /api/auth/login"); ok {
		t.Error("4th request should be throttled")
	}
	if ok, _ := rl.take("1.2.3.4 /api/contact"); !ok {
		t.Error("another path has its own budget")
	}
	if ok, _ := rl.take("5.6.7.8 /api/auth/login"); !ok {
		t.Error("another client has its own budget")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl, c := testLimiter(t, 2, time.Minute)

	rl.take("k")
	rl.take("k")

	c.t = c.t.Add(20 * time.Second)
	ok, wait := rl.take("k")
	if ok {
		t.Fatal("should be throttled inside the window")
	}
	if wait != 40*time.Second {
		t.Errorf("wait: got %v, want 40s", wait)
	}

	c.t = c.t.Add(40 * time.Second)
	if ok, _ := rl.take("k"); !ok {
		t.Error("should be allowed once the window ends")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, c := testLimiter(t, 2, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := send(); rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, rr.Code)
		}
	}

	c.t = c.t.Add(59*time.Second + 500*time.Millisecond)
	rr := send()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After: got %q, want %q", got, "1")
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl, c := testLimiter(t, 5, time.Minute)

	rl.take("old")
	c.t = c.t.Add(45 * time.Second)
	rl.take("fresh")
	c.t = c.t.Add(30 * time.Second)

	rl.cleanup()

	rl.mu.Lock()
	_, oldExists := rl.buckets["old"]
	_, freshExists := rl.buckets["fresh"]
	rl.mu.Unlock()

	if oldExists {
		t.Error("expired bucket should be dropped")
	}
	if !freshExists {
		t.Error("bucket inside its window should be kept")
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
		{"forwarded single", "10.0.0.1", "", "192.168.1.1:1234", "10.0.0.1"},
		{"forwarded chain", "10.0.0.1, 172.16.0.1", "", "192.168.1.1:1234", "10.0.0.1"},
		{"real ip", "", "10.0.0.2", "192.168.1.1:1234", "10.0.0.2"},
		{"remote addr", "", "", "192.168.1.1:1234", "192.168.1.1"},
		{"remote addr without port", "", "", "192.168.1.1", "192.168.1.1"},
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
