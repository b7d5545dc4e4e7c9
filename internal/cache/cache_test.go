// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"ventureclub/internal/models"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "list:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(context.Background(), host, port, "")
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	// Verify connection.
	ctx := context.Background()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestListCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	lc := NewListCache(client, 1*time.Minute)

	ctx := context.Background()

	// Miss.
	data, ok := lc.Get(ctx, models.CollectionEvents)
	if ok {
		t.Error("expected cache miss")
	}
	if data != nil {
		t.Error("expected nil data on miss")
	}

	body := []byte(`{"success":true,"items":[]}`)
	lc.Set(ctx, models.CollectionEvents, body)

	data, ok = lc.Get(ctx, models.CollectionEvents)
	if !ok {
		t.Error("expected cache hit")
	}
	if string(data) != string(body) {
		t.Errorf("data mismatch: got %q, want %q", data, body)
	}
}

func TestListCacheInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	lc := NewListCache(client, 1*time.Minute)

	ctx := context.Background()

	lc.Set(ctx, models.CollectionGallery, []byte("gallery"))
	lc.Set(ctx, models.CollectionBlogs, []byte("blogs"))

	lc.Invalidate(ctx, models.CollectionGallery)

	if _, ok := lc.Get(ctx, models.CollectionGallery); ok {
		t.Error("expected cache miss after invalidation")
	}
	if _, ok := lc.Get(ctx, models.CollectionBlogs); !ok {
		t.Error("invalidating one collection dropped another")
	}
}

func TestListCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	lc := NewListCache(client, 1*time.Minute)

	ctx := context.Background()

	for _, c := range models.Collections {
		lc.Set(ctx, c, []byte(c))
	}

	lc.InvalidateAll(ctx)

	for _, c := range models.Collections {
		if _, ok := lc.Get(ctx, c); ok {
			t.Errorf("expected miss for %q after InvalidateAll", c)
		}
	}
}

func TestKey(t *testing.T) {
	if got := Key(models.CollectionAnnouncements); got != "list:announcements" {
		t.Errorf("Key: got %q, want %q", got, "list:announcements")
	}
}

func TestNilListCache(t *testing.T) {
	var lc *ListCache
	ctx := context.Background()

	lc.Set(ctx, models.CollectionBlogs, []byte("x"))
	lc.Invalidate(ctx, models.CollectionBlogs)
	lc.InvalidateAll(ctx)
	if _, ok := lc.Get(ctx, models.CollectionBlogs); ok {
		t.Error("nil cache should always miss")
	}
}

func TestNewListCacheDefaultTTL(t *testing.T) {
	client := testValkeyClient(t)

	// TTL = 0 should use default.
	lc := NewListCache(client, 0)
	if lc.ttl != DefaultListTTL {
		t.Errorf("expected DefaultListTTL (%v), got %v", DefaultListTTL, lc.ttl)
	}
}
