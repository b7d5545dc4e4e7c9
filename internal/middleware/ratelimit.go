// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// bucket counts the requests of one client on one path in the current
// fixed window.
type bucket struct {
	start time.Time
	count int
}

// RateLimiter throttles each client per path: at most limit requests in
// every fixed window. Logins and form submissions are counted separately
// so a busy contact form does not lock the admin out.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	stopCh  chan struct{}
}

// NewRateLimiter creates a limiter allowing limit requests per window and
// starts a goroutine that drops expired buckets.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// take counts one request for key. When the limit is reached it returns
// false and how long until the window resets.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.start) >= rl.window {
		b = &bucket{start: now}
		rl.buckets[key] = b
	}
	if b.count >= rl.limit {
		return false, b.start.Add(rl.window).Sub(now)
	}
	b.count++
	return true, 0
}

// cleanup drops buckets whose window has ended.
func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if now.Sub(b.start) >= rl.window {
			delete(rl.buckets, key)
		}
	}
}

// Middleware rejects throttled requests with a JSON 429 and a Retry-After
// in whole seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ok, wait := rl.take(ip + " " + r.URL.Path)
		if !ok {
			slog.Warn("request throttled", "ip", ip, "path", r.URL.Path)
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the leftmost X-Forwarded-For address, then X-Real-IP,
// then the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
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
