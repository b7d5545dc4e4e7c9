// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache_log.go records list cache invalidations in the database for
// audit and debugging purposes. Each entry captures which collection was
// invalidated, by which document, when, and why.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"ventureclub/internal/models"
)

// Cache invalidation actions.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionReorder = "reorder"
)

// CacheLogStore handles cache invalidation log operations.
type CacheLogStore struct {
	db *sql.DB
}

// NewCacheLogStore creates a new CacheLogStore.
func NewCacheLogStore(db *sql.DB) *CacheLogStore {
	return &CacheLogStore{db: db}
}

// Log records a cache invalidation event. A nil store discards the event,
// so backends without a SQL database can share the handler wiring.
func (s *CacheLogStore) Log(ctx context.Context, c models.Collection, documentID, action string) {
	if s == nil {
		return
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_invalidation_log (collection, document_id, action)
		VALUES ($1, $2, $3)
	`, c, documentID, action)
	if err != nil {
		// Best-effort; a failed audit entry never fails the request.
		slog.Warn("failed to log cache invalidation",
			"collection", c,
			"document_id", documentID,
			"action", action,
			"error", err,
		)
		return
	}
	slog.Debug("cache invalidation logged",
		"collection", c,
		"document_id", documentID,
		"action", action,
	)
}

// RecentEntries returns the most recent cache invalidation events,
// newest first.
func (s *CacheLogStore) RecentEntries(ctx context.Context, limit int) ([]models.CacheLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection, document_id, action, invalidated_at
		FROM cache_invalidation_log
		ORDER BY invalidated_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cache log: %w", err)
	}
	defer rows.Close()

	var entries []models.CacheLogEntry
	for rows.Next() {
		var e models.CacheLogEntry
		if err := rows.Scan(&e.ID, &e.Collection, &e.DocumentID, &e.Action, &e.InvalidatedAt); err != nil {
			return nil, fmt.Errorf("scan cache log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
