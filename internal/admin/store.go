// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package admin holds the admin panel's in-memory view of the five
// collections and keeps it in step with the server. Store is the only
// writer of that view; every change goes through its methods.
//
// Reorders are applied optimistically. Each tentative state gets a
// per-collection version; a failed reorder rolls back by re-fetching only
// if no newer tentative state exists, and a refresh that could overwrite
// an unconfirmed state is discarded and repeated once the collection
// settles.
package admin

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"ventureclub/internal/models"
)

// Remote is the server API used by the store. *client.Client satisfies it.
type Remote interface {
	FetchCollection(ctx context.Context, c models.Collection) ([]models.Document, bool)
	AddItem(ctx context.Context, c models.Collection, fields models.Fields) (string, bool)
	UpdateItem(ctx context.Context, c models.Collection, id string, fields models.Fields) bool
	DeleteItem(ctx context.Context, c models.Collection, id string) bool
	ReorderItems(ctx context.Context, c models.Collection, docs []models.Document) bool
}

// Confirmer asks the person at the keyboard to approve a destructive action.
type Confirmer interface {
	Confirm(msg string) bool
}

// Alerter presents a blocking message.
type Alerter interface {
	Alert(msg string)
}

// OpKind names a mutating operation.
type OpKind string

const (
	OpAdd     OpKind = "add"
	OpUpdate  OpKind = "update"
	OpDelete  OpKind = "delete"
	OpReorder OpKind = "reorder"
)

// Direction moves an item one position.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

type op struct {
	collection models.Collection
	kind       OpKind
}

// collectionState is the view of one collection. version counts tentative
// states; confirmed is the newest version the server accepted.
type collectionState struct {
	docs      []models.Document
	loaded    bool
	version   uint64
	confirmed uint64
	reorders  int  // reorders awaiting the server
	stale     bool // a refresh was discarded and must be repeated
}

// Store is the admin panel's snapshot of all collections.
type Store struct {
	remote  Remote
	confirm Confirmer
	alert   Alerter

	mu      sync.Mutex
	cols    map[models.Collection]*collectionState
	pending map[op]int
}

// New creates an empty store. A nil confirmer declines every delete; a nil
// alerter logs alerts instead.
func New(remote Remote, confirm Confirmer, alert Alerter) *Store {
	s := &Store{
		remote:  remote,
		confirm: confirm,
		alert:   alert,
		cols:    make(map[models.Collection]*collectionState, len(models.Collections)),
		pending: make(map[op]int),
	}
	for _, c := range models.Collections {
		s.cols[c] = &collectionState{docs: []models.Document{}}
	}
	return s
}

// state returns the view of c. Caller holds mu.
func (s *Store) state(c models.Collection) *collectionState {
	st, ok := s.cols[c]
	if !ok {
		st = &collectionState{docs: []models.Document{}}
		s.cols[c] = st
	}
	return st
}

// Items returns a copy of the current sequence of c.
func (s *Store) Items(c models.Collection) []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDocs(s.state(c).docs)
}

// Snapshot returns a copy of every collection.
func (s *Store) Snapshot() map[models.Collection][]models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.Collection][]models.Document, len(s.cols))
	for c, st := range s.cols {
		out[c] = cloneDocs(st.docs)
	}
	return out
}

// Loaded reports whether c has been fetched successfully at least once.
func (s *Store) Loaded(c models.Collection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(c).loaded
}

// Version returns the newest tentative and the newest confirmed version
// of c's order.
func (s *Store) Version(c models.Collection) (tentative, confirmed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(c)
	return st.version, st.confirmed
}

// Stale reports whether c holds data a discarded refresh would have
// replaced.
func (s *Store) Stale(c models.Collection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(c).stale
}

// Loading reports whether any mutating operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) > 0
}

// Pending reports whether an operation of kind on c is in flight.
func (s *Store) Pending(c models.Collection, kind OpKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[op{c, kind}] > 0
}

// begin records an in-flight operation and returns its completion func.
func (s *Store) begin(c models.Collection, kind OpKind) func() {
	key := op{c, kind}
	s.mu.Lock()
	s.pending[key]++
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pending[key]--; s.pending[key] <= 0 {
			delete(s.pending, key)
		}
	}
}

// fetchResult is one collection's outcome during FetchAll.
type fetchResult struct {
	docs    []models.Document
	ok      bool
	started uint64
}

// FetchAll fetches the five collections concurrently and installs the
// results together. A collection whose fetch fails keeps its previous
// state. It reports whether every fetch succeeded.
func (s *Store) FetchAll(ctx context.Context) bool {
	results := make(map[models.Collection]*fetchResult, len(models.Collections))

	s.mu.Lock()
	for _, c := range models.Collections {
		results[c] = &fetchResult{started: s.state(c).version}
	}
	s.mu.Unlock()

	var g errgroup.Group
	for _, c := range models.Collections {
		res := results[c]
		g.Go(func() error {
			res.docs, res.ok = s.remote.FetchCollection(ctx, c)
			return nil
		})
	}
	g.Wait()

	all := true
	var again []models.Collection
	s.mu.Lock()
	for _, c := range models.Collections {
		res := results[c]
		if !res.ok {
			slog.Warn("collection fetch failed, keeping previous state", "collection", c)
			all = false
			continue
		}
		if _, retry := s.install(c, res.docs, res.started); retry {
			again = append(again, c)
		}
	}
	s.mu.Unlock()

	for _, c := range again {
		if !s.refresh(ctx, c) {
			all = false
		}
	}
	return all
}

// refresh re-fetches one collection. A fetch discarded because a reorder
// settled while it was on the wire is repeated; one discarded behind an
// unconfirmed reorder is left to that reorder.
func (s *Store) refresh(ctx context.Context, c models.Collection) bool {
	for {
		s.mu.Lock()
		started := s.state(c).version
		s.mu.Unlock()

		docs, ok := s.remote.FetchCollection(ctx, c)
		if !ok {
			slog.Warn("collection refresh failed", "collection", c)
			return false
		}

		s.mu.Lock()
		installed, retry := s.install(c, docs, started)
		s.mu.Unlock()
		if !retry {
			return installed
		}
		slog.Debug("repeating refresh after settled reorder", "collection", c)
	}
}

// install replaces c with docs fetched when its version was started. The
// result is discarded when a newer tentative state appeared meanwhile or
// a reorder is still unconfirmed. retry reports a discard with no reorder
// left in flight, which the caller must repeat itself. Caller holds mu.
func (s *Store) install(c models.Collection, docs []models.Document, started uint64) (installed, retry bool) {
	st := s.state(c)
	if st.version != started || st.reorders > 0 {
		slog.Debug("discarding refresh behind tentative order",
			"collection", c,
			"started", started,
			"version", st.version,
		)
		st.stale = true
		return false, st.reorders == 0
	}
	st.docs = cloneDocs(docs)
	st.loaded = true
	st.stale = false
	return true, false
}

// AddItem validates and creates a record, then re-fetches the collection
// to pick up the server-assigned id, timestamp and order.
func (s *Store) AddItem(ctx context.Context, c models.Collection, fields models.Fields) bool {
	if err := models.Validate(c, fields, false); err != nil {
		s.notify("Cannot add item: " + err.Error())
		return false
	}

	done := s.begin(c, OpAdd)
	defer done()

	id, ok := s.remote.AddItem(ctx, c, fields)
	if !ok {
		return false
	}
	slog.Debug("item added", "collection", c, "id", id)
	s.refresh(ctx, c)
	return true
}

// UpdateItem validates and merges a partial record, then re-fetches the
// collection.
func (s *Store) UpdateItem(ctx context.Context, c models.Collection, id string, fields models.Fields) bool {
	if err := models.Validate(c, fields, true); err != nil {
		s.notify("Cannot update item: " + err.Error())
		return false
	}

	done := s.begin(c, OpUpdate)
	defer done()

	if !s.remote.UpdateItem(ctx, c, id, fields) {
		return false
	}
	s.refresh(ctx, c)
	return true
}

// DeleteItem asks for confirmation, deletes the record and re-fetches the
// collection. Declining returns false without contacting the server.
func (s *Store) DeleteItem(ctx context.Context, c models.Collection, id string) bool {
	if s.confirm == nil || !s.confirm.Confirm("Are you sure you want to delete this item? This cannot be undone.") {
		return false
	}

	done := s.begin(c, OpDelete)
	defer done()

	if !s.remote.DeleteItem(ctx, c, id) {
		return false
	}
	s.refresh(ctx, c)
	return true
}

// ReorderItems shows seq immediately, then submits it. On failure the
// collection is re-fetched unless a newer reorder superseded this one;
// success leaves the optimistic state in place.
func (s *Store) ReorderItems(ctx context.Context, c models.Collection, seq []models.Document) bool {
	tentative := cloneDocs(seq)
	for i := range tentative {
		pos := i
		tentative[i].Order = &pos
	}

	s.mu.Lock()
	st := s.state(c)
	st.version++
	version := st.version
	st.docs = tentative
	st.reorders++
	s.mu.Unlock()

	done := s.begin(c, OpReorder)
	ok := s.remote.ReorderItems(ctx, c, cloneDocs(tentative))
	done()

	s.mu.Lock()
	st.reorders--
	switch {
	case ok && version > st.confirmed:
		st.confirmed = version
	case ok:
		// Confirmed after a newer reorder; the server may hold either.
		st.stale = true
	}
	// A newer reorder carries the full sequence, so only the newest failure
	// rolls back.
	superseded := st.version != version
	if !ok && !superseded {
		st.stale = true
	}
	refetch := st.stale && st.reorders == 0
	s.mu.Unlock()

	if !ok {
		slog.Warn("reorder failed", "collection", c, "version", version, "superseded", superseded)
	}
	if refetch {
		s.refresh(ctx, c)
	}
	return ok
}

// MoveItem swaps the item with its neighbour in direction dir and submits
// the new order. Moving past either end is a no-op that returns false.
func (s *Store) MoveItem(ctx context.Context, c models.Collection, id string, dir Direction) bool {
	seq := s.Items(c)
	from := -1
	for i, d := range seq {
		if d.ID == id {
			from = i
			break
		}
	}
	to := from + int(dir)
	if from < 0 || to < 0 || to >= len(seq) {
		return false
	}
	seq[from], seq[to] = seq[to], seq[from]
	return s.ReorderItems(ctx, c, seq)
}

func (s *Store) notify(msg string) {
	if s.alert == nil {
		slog.Warn("alert", "message", msg)
		return
	}
	s.alert.Alert(msg)
}

func cloneDocs(docs []models.Document) []models.Document {
	out := make([]models.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}
