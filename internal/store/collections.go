// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists the five content collections. Collections is the
// contract shared by every backend; the PostgreSQL backend is the default,
// Firestore matches the hosted document database, and the in-memory
// backend serves tests and local development.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ventureclub/internal/models"
	"ventureclub/internal/ordering"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a create names an id that is taken.
	ErrConflict = errors.New("document already exists")
)

// NewDocument describes a document to create. An empty ID lets the
// backend assign one. A nil Order appends manually ordered collections.
type NewDocument struct {
	ID     string
	Fields models.Fields
	Order  *int
}

// Patch is a merge update: Set keys are written, Unset keys are removed,
// every other attribute is left untouched.
type Patch struct {
	Set   models.Fields
	Unset []string
}

// Collections is the document persistence contract.
//
// List returns a collection in display order. For manually ordered
// collections it first runs the guarded order migration: a collection
// whose schema marker predates ordering has every document ranked by
// creation time, and the marker is flipped in the same transaction.
//
// Reorder assigns order values from a full id sequence as one
// all-or-nothing write.
type Collections interface {
	List(ctx context.Context, c models.Collection) ([]models.Document, error)
	Get(ctx context.Context, c models.Collection, id string) (models.Document, error)
	Create(ctx context.Context, c models.Collection, doc NewDocument) (string, error)
	Update(ctx context.Context, c models.Collection, id string, p Patch) error
	Delete(ctx context.Context, c models.Collection, id string) error
	Reorder(ctx context.Context, c models.Collection, ids []string) error
	Count(ctx context.Context, c models.Collection) (int, error)

	// Import writes documents as given, keeping their ids, timestamps and
	// order values. Importing a manually ordered document without an order
	// marks the collection for migration on its next read.
	Import(ctx context.Context, c models.Collection, docs []models.Document) error

	Close() error
}

// newID returns a server-assigned document identifier.
func newID() string {
	return uuid.NewString()
}

// now returns the current time truncated to microseconds, the precision
// every backend can store.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// needsOrderMigration reports whether an import leaves a manually ordered
// collection with documents that lack an order value.
func needsOrderMigration(c models.Collection, docs []models.Document) bool {
	return c.ManualOrder() && ordering.NeedsBackfill(docs)
}
