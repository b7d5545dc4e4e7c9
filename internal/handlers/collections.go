// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ventureclub/internal/cache"
	"ventureclub/internal/gallery"
	"ventureclub/internal/markdown"
	"ventureclub/internal/models"
	"ventureclub/internal/ordering"
	"ventureclub/internal/slug"
	"ventureclub/internal/store"
)

// Collections serves the REST surface of the five content collections.
type Collections struct {
	docs     store.Collections
	lists    *cache.ListCache
	cacheLog *store.CacheLogStore
}

// NewCollections creates the collections handler group. lists and
// cacheLog may be nil when Valkey or PostgreSQL are not in use.
func NewCollections(docs store.Collections, lists *cache.ListCache, cacheLog *store.CacheLogStore) *Collections {
	return &Collections{
		docs:     docs,
		lists:    lists,
		cacheLog: cacheLog,
	}
}

// collection resolves the {collection} URL parameter. It writes a 404 and
// returns false for names outside the five collections.
func collection(w http.ResponseWriter, r *http.Request) (models.Collection, bool) {
	c, err := models.ParseCollection(chi.URLParam(r, "collection"))
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return "", false
	}
	return c, true
}

// List returns {success, items} in display order. Responses are served
// from the list cache when present.
func (h *Collections) List(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if body, hit := h.lists.Get(ctx, c); hit {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Write(body)
		return
	}

	docs, err := h.docs.List(ctx, c)
	if err != nil {
		h.fail(w, err, "list", c)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}

	body, err := json.Marshal(map[string]any{"success": true, "items": docs})
	if err != nil {
		h.fail(w, err, "encode list", c)
		return
	}
	h.lists.Set(ctx, c, body)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Write(body)
}

// Get returns {success, item} for a single document as stored.
func (h *Collections) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}
	doc, err := h.docs.Get(r.Context(), c, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "get", c)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"item": doc})
}

// Create adds a document and responds 201 {success, id}. The body is a
// partial record with an optional explicit id and order.
func (h *Collections) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}

	var raw map[string]any
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	nd := store.NewDocument{Fields: models.StripReserved(models.Fields(raw))}
	if v, ok := raw[models.KeyID]; ok && v != nil {
		id, isString := v.(string)
		if !isString {
			writeError(w, "id: must be a string", http.StatusBadRequest)
			return
		}
		nd.ID = id
	}
	if v, ok := raw[models.KeyOrder]; ok && v != nil {
		n, err := models.IntValue(v)
		if err != nil || n < 0 {
			writeError(w, "order: must be a non-negative integer", http.StatusBadRequest)
			return
		}
		nd.Order = &n
	}

	if err := prepareFields(c, nd.Fields, false); err != nil {
		h.fail(w, err, "create", c)
		return
	}

	ctx := r.Context()
	id, err := h.docs.Create(ctx, c, nd)
	if err != nil {
		h.fail(w, err, "create", c)
		return
	}
	h.invalidate(ctx, c, id, store.ActionCreate)

	slog.Info("document created", "collection", c, "id", id)
	writeOK(w, http.StatusCreated, map[string]any{"id": id})
}

// Update merges a partial record into a document. Keys set to null are
// removed; saving a gallery carousel drops the legacy single-image keys.
func (h *Collections) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var raw map[string]any
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	set := models.StripReserved(models.Fields(raw))
	var unset []string
	for k, v := range set {
		if v == nil {
			unset = append(unset, k)
			delete(set, k)
		}
	}
	if err := prepareFields(c, set, true); err != nil {
		h.fail(w, err, "update", c)
		return
	}
	if c == models.CollectionGallery {
		unset = append(unset, gallery.LegacyKeys(set)...)
	}

	ctx := r.Context()
	if err := h.docs.Update(ctx, c, id, store.Patch{Set: set, Unset: unset}); err != nil {
		h.fail(w, err, "update", c)
		return
	}
	h.invalidate(ctx, c, id, store.ActionUpdate)

	writeOK(w, http.StatusOK, nil)
}

// Delete removes a document. Order values of the remaining documents are
// left as they are.
func (h *Collections) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	ctx := r.Context()
	if err := h.docs.Delete(ctx, c, id); err != nil {
		h.fail(w, err, "delete", c)
		return
	}
	h.invalidate(ctx, c, id, store.ActionDelete)

	slog.Info("document deleted", "collection", c, "id", id)
	writeOK(w, http.StatusOK, nil)
}

// reorderRequest is the body of POST /api/{collection}/reorder. Items are
// full records; only their ids and positions matter.
type reorderRequest struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

// Reorder writes order = index for every submitted document in one batch.
func (h *Collections) Reorder(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Items == nil {
		writeError(w, "items is required", http.StatusBadRequest)
		return
	}
	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ID
	}

	ctx := r.Context()
	if err := h.docs.Reorder(ctx, c, ids); err != nil {
		h.fail(w, err, "reorder", c)
		return
	}
	h.invalidate(ctx, c, "", store.ActionReorder)

	slog.Info("collection reordered", "collection", c, "count", len(ids))
	writeOK(w, http.StatusOK, nil)
}

// Cache log page sizes.
const (
	defaultCacheLogLimit = 20
	maxCacheLogLimit     = 200
)

// CacheLog returns {success, entries} with the newest list cache
// invalidations. ?limit= sets the count, capped at maxCacheLogLimit.
func (h *Collections) CacheLog(w http.ResponseWriter, r *http.Request) {
	if h.cacheLog == nil {
		writeError(w, "cache log is not available", http.StatusServiceUnavailable)
		return
	}

	limit := defaultCacheLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxCacheLogLimit)
	}

	entries, err := h.cacheLog.RecentEntries(r.Context(), limit)
	if err != nil {
		slog.Error("cache log query failed", "error", err)
		writeError(w, "failed to read cache log", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.CacheLogEntry{}
	}
	writeOK(w, http.StatusOK, map[string]any{"entries": entries})
}

// invalidate drops the cached list of c and records why.
func (h *Collections) invalidate(ctx context.Context, c models.Collection, id, action string) {
	h.lists.Invalidate(ctx, c)
	h.cacheLog.Log(ctx, c, id, action)
}

// fail maps a store or validation error to a JSON response.
func (h *Collections) fail(w http.ResponseWriter, err error, op string, c models.Collection) {
	var invalid *models.ValidationError
	switch {
	case errors.As(err, &invalid):
		writeError(w, invalid.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, "document not found", http.StatusNotFound)
	case errors.Is(err, ordering.ErrUnknownID):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ordering.ErrDuplicateID), errors.Is(err, ordering.ErrEmptyID):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrConflict):
		writeError(w, "document already exists", http.StatusConflict)
	default:
		slog.Error(op+" failed", "collection", c, "error", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
	}
}

// prepareFields derives server-side attributes and validates the result.
// Sluggable records get a slug from their title when none is supplied, and
// blogs written in Markdown keep the source in "markdown" and the rendered
// HTML in "content".
func prepareFields(c models.Collection, f models.Fields, partial bool) error {
	if c.Sluggable() && !partial {
		if s, _ := f["slug"].(string); s == "" {
			if title, _ := f["title"].(string); title != "" {
				f["slug"] = slug.Generate(title)
			}
		}
	}

	if c == models.CollectionBlogs && f["contentFormat"] == markdown.FormatMarkdown {
		if src, isString := f["content"].(string); isString {
			html, err := markdown.ToHTML(src)
			if err != nil {
				return err
			}
			f["markdown"] = src
			f["content"] = html
		}
	}

	return models.Validate(c, f, partial)
}
