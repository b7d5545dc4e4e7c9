// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Collections run against the in-memory backend; the Valkey-backed list
// cache test is skipped when Valkey is unavailable.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"ventureclub/internal/cache"
	"ventureclub/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testValkeyClient returns a Redis client on DB 15. Skips if Valkey is
// unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
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

// collectionsRouter mounts the collections API the way the server does.
func collectionsRouter(h *Collections) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/{collection}", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/reorder", h.Reorder)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

// testCollections returns a router over a fresh in-memory store.
func testCollections(t *testing.T, lists *cache.ListCache) (http.Handler, *store.MemoryCollections) {
	t.Helper()
	docs := store.NewMemoryCollections()
	t.Cleanup(func() { docs.Close() })
	return collectionsRouter(NewCollections(docs, lists, nil)), docs
}

// doJSON sends body as JSON and returns the recorded response.
func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// responseBody is the JSON envelope returned by every API endpoint.
type responseBody struct {
	Success bool             `json:"success"`
	Error   string           `json:"error"`
	ID      string           `json:"id"`
	Item    map[string]any   `json:"item"`
	Items   []map[string]any `json:"items"`
	Data    map[string]any   `json:"data"`

	Authenticated bool `json:"authenticated"`
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) responseBody {
	t.Helper()
	var body responseBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return body
}

// expectStatus fails the test when the response has an unexpected status.
func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) responseBody {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
	return decodeBody(t, rr)
}

// itemIDs returns the ids of listed items in order.
func itemIDs(items []map[string]any) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i], _ = item["id"].(string)
	}
	return ids
}
