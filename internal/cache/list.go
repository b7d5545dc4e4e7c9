// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// list.go provides a Valkey-backed cache of collection list responses.
// The public site reads every list on each page view, so the encoded
// response is kept in Valkey and dropped whenever the collection changes.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"ventureclub/internal/models"
)

const (
	// listKeyPrefix is the Valkey key prefix for cached lists.
	listKeyPrefix = "list:"

	// DefaultListTTL is how long an encoded list stays cached.
	DefaultListTTL = 5 * time.Minute
)

// ListCache manages collection list caching in Valkey. A nil *ListCache
// is valid and caches nothing.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache creates a new list cache backed by the given Valkey client.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl == 0 {
		ttl = DefaultListTTL
	}
	return &ListCache{client: client, ttl: ttl}
}

// Key returns the cache key of a collection list.
func Key(c models.Collection) string {
	return listKeyPrefix + string(c)
}

// Get retrieves the cached list body of a collection.
func (lc *ListCache) Get(ctx context.Context, c models.Collection) ([]byte, bool) {
	if lc == nil {
		return nil, false
	}
	val, err := lc.client.Get(ctx, Key(c)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("list cache get error", "collection", c, "error", err)
		return nil, false
	}
	slog.Debug("list cache hit", "collection", c)
	return val, true
}

// Set stores the encoded list of a collection with the configured TTL.
func (lc *ListCache) Set(ctx context.Context, c models.Collection, body []byte) {
	if lc == nil {
		return
	}
	if err := lc.client.Set(ctx, Key(c), body, lc.ttl).Err(); err != nil {
		slog.Warn("list cache set error", "collection", c, "error", err)
	}
}

// Invalidate removes the cached list of a collection.
func (lc *ListCache) Invalidate(ctx context.Context, c models.Collection) {
	if lc == nil {
		return
	}
	if err := lc.client.Del(ctx, Key(c)).Err(); err != nil {
		slog.Warn("list cache invalidate error", "collection", c, "error", err)
		return
	}
	slog.Debug("list cache invalidated", "collection", c)
}

// InvalidateAll removes every cached list by scanning for the prefix.
func (lc *ListCache) InvalidateAll(ctx context.Context) {
	if lc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := lc.client.Scan(ctx, cursor, listKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("list cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("list cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("list cache fully cleared", "deleted", deleted)
	}
}
