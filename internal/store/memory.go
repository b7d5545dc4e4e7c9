// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"ventureclub/internal/models"
	"ventureclub/internal/ordering"
)

// MemoryCollections keeps every collection in process memory. It follows
// the same ordering and migration rules as the database backends.
type MemoryCollections struct {
	mu       sync.Mutex
	docs     map[models.Collection]map[string]models.Document
	versions map[models.Collection]int
}

// NewMemoryCollections creates an empty in-memory store.
func NewMemoryCollections() *MemoryCollections {
	return &MemoryCollections{
		docs:     make(map[models.Collection]map[string]models.Document),
		versions: make(map[models.Collection]int),
	}
}

// snapshot returns copies of every document in c. Caller holds mu.
func (s *MemoryCollections) snapshot(c models.Collection) []models.Document {
	out := make([]models.Document, 0, len(s.docs[c]))
	for _, d := range s.docs[c] {
		out = append(out, d.Clone())
	}
	return out
}

func (s *MemoryCollections) bucket(c models.Collection) map[string]models.Document {
	b, ok := s.docs[c]
	if !ok {
		b = make(map[string]models.Document)
		s.docs[c] = b
	}
	return b
}

// List returns the documents of c in display order.
func (s *MemoryCollections) List(_ context.Context, c models.Collection) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ManualOrder() && s.versions[c] < ordering.SchemaVersion {
		s.migrateOrder(c)
	}
	docs := s.snapshot(c)
	ordering.Sort(c, docs)
	return docs, nil
}

// migrateOrder backfills order values and flips the schema marker. Caller
// holds mu.
func (s *MemoryCollections) migrateOrder(c models.Collection) {
	docs := s.snapshot(c)
	if ordering.NeedsBackfill(docs) {
		s.apply(c, ordering.Backfill(docs))
		slog.Info("collection order migrated", "collection", c, "documents", len(docs))
	}
	s.versions[c] = ordering.SchemaVersion
}

func (s *MemoryCollections) apply(c models.Collection, assignments []ordering.Assignment) {
	b := s.bucket(c)
	for _, a := range assignments {
		d := b[a.ID]
		o := a.Order
		d.Order = &o
		b[a.ID] = d
	}
}

// Get returns one document.
func (s *MemoryCollections) Get(_ context.Context, c models.Collection, id string) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[c][id]
	if !ok {
		return models.Document{}, ErrNotFound
	}
	return d.Clone(), nil
}

// Create inserts a document and returns its id.
func (s *MemoryCollections) Create(_ context.Context, c models.Collection, doc NewDocument) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(c)
	id := doc.ID
	if id == "" {
		id = newID()
	}
	if _, exists := b[id]; exists {
		return "", fmt.Errorf("create %s/%s: %w", c, id, ErrConflict)
	}

	ts := now()
	created, updated := ts, ts
	d := models.Document{
		ID:        id,
		Fields:    models.StripReserved(doc.Fields),
		Order:     doc.Order,
		CreatedAt: &created,
		UpdatedAt: &updated,
	}
	if d.Order == nil && c.ManualOrder() {
		next := ordering.Next(s.snapshot(c))
		d.Order = &next
	}
	b[id] = d.Clone()
	return id, nil
}

// Update merges p into an existing document.
func (s *MemoryCollections) Update(_ context.Context, c models.Collection, id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[c][id]
	if !ok {
		return ErrNotFound
	}
	d = d.Clone()
	if d.Fields == nil {
		d.Fields = models.Fields{}
	}
	for k, v := range models.StripReserved(p.Set) {
		d.Fields[k] = v
	}
	for _, k := range p.Unset {
		delete(d.Fields, k)
	}
	ts := now()
	d.UpdatedAt = &ts
	s.docs[c][id] = d
	return nil
}

// Delete removes a document. Remaining order values are not compacted.
func (s *MemoryCollections) Delete(_ context.Context, c models.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[c][id]; !ok {
		return ErrNotFound
	}
	delete(s.docs[c], id)
	return nil
}

// Reorder assigns order values from ids.
func (s *MemoryCollections) Reorder(_ context.Context, c models.Collection, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignments, err := ordering.Reorder(c, s.snapshot(c), ids)
	if err != nil {
		return fmt.Errorf("reorder %s: %w", c, err)
	}
	s.apply(c, assignments)
	return nil
}

// Count returns the number of documents in c.
func (s *MemoryCollections) Count(_ context.Context, c models.Collection) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[c]), nil
}

// Import writes docs as given.
func (s *MemoryCollections) Import(_ context.Context, c models.Collection, docs []models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(c)
	for _, d := range docs {
		if d.ID == "" {
			d.ID = newID()
		}
		d = d.Clone()
		if d.CreatedAt == nil {
			ts := now()
			d.CreatedAt = &ts
		}
		d.Fields = models.StripReserved(d.Fields)
		b[d.ID] = d
	}
	if needsOrderMigration(c, docs) {
		s.versions[c] = 0
	}
	return nil
}

// Close is a no-op.
func (s *MemoryCollections) Close() error { return nil }
