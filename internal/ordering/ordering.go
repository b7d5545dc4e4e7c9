// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ordering implements the manual ordering rules shared by every
// document backend: how lists are sorted, how legacy documents without an
// order value are backfilled, where new documents are appended, and how a
// submitted sequence becomes order assignments.
//
// Order values are only required to be distinct and increasing along the
// list. Deletes leave gaps, and every rule here tolerates them.
package ordering

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"ventureclub/internal/models"
)

// SchemaVersion is the collection schema version at which every document
// is guaranteed to carry an order value.
const SchemaVersion = 1

var (
	// ErrDuplicateID is returned when a reorder lists the same document twice.
	ErrDuplicateID = errors.New("duplicate id in reorder")
	// ErrUnknownID is returned when a reorder names a document that does not exist.
	ErrUnknownID = errors.New("unknown id in reorder")
	// ErrEmptyID is returned when a reorder entry has no id.
	ErrEmptyID = errors.New("missing id in reorder")
)

// Assignment sets the order value of one document.
type Assignment struct {
	ID    string
	Order int
}

// Sort orders docs in place for listing. Manually ordered collections sort
// by order ascending, documents without an order last by creation time.
// Other collections list documents without an order first, newest first,
// followed by manually ordered documents.
func Sort(c models.Collection, docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return less(c, docs[i], docs[j])
	})
}

func less(c models.Collection, a, b models.Document) bool {
	switch {
	case a.Order != nil && b.Order != nil:
		if *a.Order != *b.Order {
			return *a.Order < *b.Order
		}
	case a.Order != nil:
		return c.ManualOrder()
	case b.Order != nil:
		return !c.ManualOrder()
	}
	if c.ManualOrder() {
		return createdBefore(a, b)
	}
	return createdBefore(b, a)
}

// createdBefore compares creation times, breaking ties by id so the result
// is deterministic.
func createdBefore(a, b models.Document) bool {
	ta, tb := created(a), created(b)
	if !ta.Equal(tb) {
		return ta.Before(tb)
	}
	return a.ID < b.ID
}

func created(d models.Document) time.Time {
	if d.CreatedAt == nil {
		return time.Time{}
	}
	return *d.CreatedAt
}

// NeedsBackfill reports whether any document lacks an order value. One
// such document marks the whole collection as unmigrated.
func NeedsBackfill(docs []models.Document) bool {
	for _, d := range docs {
		if d.Order == nil {
			return true
		}
	}
	return false
}

// Backfill assigns every document its rank by ascending creation time.
func Backfill(docs []models.Document) []Assignment {
	sorted := make([]models.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return createdBefore(sorted[i], sorted[j])
	})

	out := make([]Assignment, len(sorted))
	for i, d := range sorted {
		out[i] = Assignment{ID: d.ID, Order: i}
	}
	return out
}

// Next returns the order value for a document appended to the end of the
// collection: one past the largest existing value, or 0. When values are
// dense this equals the collection size.
func Next(docs []models.Document) int {
	next := 0
	for _, d := range docs {
		if d.Order != nil && *d.Order >= next {
			next = *d.Order + 1
		}
	}
	return next
}

// Reorder turns a submitted id sequence into assignments for the whole
// collection. Submitted ids take their index; documents missing from the
// submission (created concurrently by another session) keep their
// relative order after them, so values stay dense.
func Reorder(c models.Collection, current []models.Document, ids []string) ([]Assignment, error) {
	known := make(map[string]bool, len(current))
	for _, d := range current {
		known[d.ID] = true
	}

	seen := make(map[string]bool, len(ids))
	out := make([]Assignment, 0, len(current))
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("%w at position %d", ErrEmptyID, i)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		if !known[id] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownID, id)
		}
		seen[id] = true
		out = append(out, Assignment{ID: id, Order: i})
	}

	rest := make([]models.Document, 0, len(current)-len(ids))
	for _, d := range current {
		if !seen[d.ID] {
			rest = append(rest, d)
		}
	}
	Sort(c, rest)
	for _, d := range rest {
		out = append(out, Assignment{ID: d.ID, Order: len(out)})
	}
	return out, nil
}

// Apply writes assignments into docs by id.
func Apply(docs []models.Document, assignments []Assignment) {
	byID := make(map[string]int, len(assignments))
	for _, a := range assignments {
		byID[a.ID] = a.Order
	}
	for i := range docs {
		if o, ok := byID[docs[i].ID]; ok {
			docs[i].Order = &o
		}
	}
}

// IDs returns the ids of docs in sequence.
func IDs(docs []models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
