// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package client talks to the collections API over HTTP. Every failure
// (network error, non-2xx status, malformed body) is logged and reduced to
// a false, empty or "" result; nothing is returned as an error. Requests
// are never retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"ventureclub/internal/gallery"
	"ventureclub/internal/models"
)

// Alerter presents a blocking message to the person at the keyboard.
type Alerter interface {
	Alert(msg string)
}

// Client issues CRUD, reorder and upload requests against one API server.
// The admin session cookie is kept in the client's cookie jar.
type Client struct {
	baseURL string
	http    *http.Client
	alerter Alerter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its cookie jar is
// used for the session when set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAlerter sets where upload failures are presented.
func WithAlerter(a Alerter) Option {
	return func(c *Client) { c.alerter = a }
}

// New creates a client for the server at baseURL, e.g.
// "https://ventureclub.example".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	return c, nil
}

// envelope is the JSON response shape shared by every endpoint.
type envelope struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	ID      string                 `json:"id"`
	Item    json.RawMessage        `json:"item"`
	Items   []models.Document      `json:"items"`
	Data    *UploadResult          `json:"data"`
	Entries []models.CacheLogEntry `json:"entries"`

	Authenticated bool `json:"authenticated"`
}

// UploadResult is the media host metadata returned by an upload.
type UploadResult struct {
	SecureURL        string `json:"secure_url"`
	PublicID         string `json:"public_id"`
	ResourceType     string `json:"resource_type"`
	Format           string `json:"format"`
	Bytes            int64  `json:"bytes"`
	Width            int    `json:"width,omitempty"`
	Height           int    `json:"height,omitempty"`
	ThumbnailURL     string `json:"thumbnail_url,omitempty"`
	OriginalFilename string `json:"original_filename"`
}

// requestError describes a failed call for diagnostics.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	if e.msg == "" {
		return fmt.Sprintf("server returned %d", e.status)
	}
	return fmt.Sprintf("server returned %d: %s", e.status, e.msg)
}

// do sends a request and returns the raw 2xx body. Non-2xx responses
// become a *requestError carrying the server's message.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The server's message is best-effort; proxies answer with HTML.
		var env envelope
		if err := json.Unmarshal(respBody, &env); err != nil {
			slog.Debug("error response is not JSON", "status", resp.StatusCode, "error", err)
		}
		return nil, &requestError{status: resp.StatusCode, msg: env.Error}
	}
	return respBody, nil
}

// doJSON sends payload as JSON (nil sends no body) and decodes the envelope.
func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (*envelope, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	respBody, err := c.do(ctx, method, path, contentType, body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("server reported failure: %s", env.Error)
	}
	return &env, nil
}

func collectionPath(c models.Collection, rest ...string) string {
	parts := []string{"/api", url.PathEscape(string(c))}
	for _, p := range rest {
		parts = append(parts, url.PathEscape(p))
	}
	return strings.Join(parts, "/")
}

// Login opens an admin session with the shared password.
func (c *Client) Login(ctx context.Context, password string) bool {
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", map[string]string{"password": password}); err != nil {
		slog.Warn("login failed", "error", err)
		return false
	}
	return true
}

// Logout closes the admin session.
func (c *Client) Logout(ctx context.Context) bool {
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil); err != nil {
		slog.Warn("logout failed", "error", err)
		return false
	}
	return true
}

// Authenticated reports whether the client holds an admin session.
func (c *Client) Authenticated(ctx context.Context) bool {
	env, err := c.doJSON(ctx, http.MethodGet, "/api/auth/session", nil)
	if err != nil {
		slog.Warn("session check failed", "error", err)
		return false
	}
	return env.Authenticated
}

// FetchCollection lists a collection in display order. Legacy gallery
// records are upgraded to the current shape. On failure it returns an
// empty sequence and false.
func (c *Client) FetchCollection(ctx context.Context, coll models.Collection) ([]models.Document, bool) {
	respBody, err := c.do(ctx, http.MethodGet, collectionPath(coll), "", nil)
	if err != nil {
		slog.Warn("fetch collection failed", "collection", coll, "error", err)
		return []models.Document{}, false
	}

	docs, err := decodeItems(respBody)
	if err != nil {
		slog.Warn("fetch collection failed", "collection", coll, "error", err)
		return []models.Document{}, false
	}
	if coll == models.CollectionGallery {
		docs = gallery.MigrateAll(docs)
	}
	return docs, true
}

// decodeItems accepts either {success, items} or a bare JSON array.
func decodeItems(body []byte) ([]models.Document, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []models.Document
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		if docs == nil {
			docs = []models.Document{}
		}
		return docs, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("server reported failure: %s", env.Error)
	}
	if env.Items == nil {
		return []models.Document{}, nil
	}
	return env.Items, nil
}

// FetchItem reads one document. Legacy gallery records are upgraded.
func (c *Client) FetchItem(ctx context.Context, coll models.Collection, id string) (models.Document, bool) {
	env, err := c.doJSON(ctx, http.MethodGet, collectionPath(coll, id), nil)
	if err == nil && len(env.Item) == 0 {
		err = fmt.Errorf("response has no item")
	}
	if err != nil {
		slog.Warn("fetch item failed", "collection", coll, "id", id, "error", err)
		return models.Document{}, false
	}

	var doc models.Document
	if err := json.Unmarshal(env.Item, &doc); err != nil {
		slog.Warn("fetch item failed", "collection", coll, "id", id, "error", err)
		return models.Document{}, false
	}
	if coll == models.CollectionGallery {
		doc = gallery.Migrate(doc)
	}
	return doc, true
}

// AddItem creates a document from a partial record. It returns the
// server-assigned id and whether the server accepted the record.
func (c *Client) AddItem(ctx context.Context, coll models.Collection, fields models.Fields) (string, bool) {
	env, err := c.doJSON(ctx, http.MethodPost, collectionPath(coll), fields)
	if err != nil {
		slog.Warn("add item failed", "collection", coll, "error", err)
		return "", false
	}
	return env.ID, true
}

// UpdateItem merges a partial record into a document. Only supplied
// fields change; a nil value removes the field.
func (c *Client) UpdateItem(ctx context.Context, coll models.Collection, id string, fields models.Fields) bool {
	if _, err := c.doJSON(ctx, http.MethodPatch, collectionPath(coll, id), fields); err != nil {
		slog.Warn("update item failed", "collection", coll, "id", id, "error", err)
		return false
	}
	return true
}

// DeleteItem removes a document. There is no undo.
func (c *Client) DeleteItem(ctx context.Context, coll models.Collection, id string) bool {
	if _, err := c.doJSON(ctx, http.MethodDelete, collectionPath(coll, id), nil); err != nil {
		slog.Warn("delete item failed", "collection", coll, "id", id, "error", err)
		return false
	}
	return true
}

// ReorderItems submits the entire reordered sequence. The server gives
// each document the order of its index.
func (c *Client) ReorderItems(ctx context.Context, coll models.Collection, docs []models.Document) bool {
	if docs == nil {
		docs = []models.Document{}
	}
	payload := map[string]any{"items": docs}
	if _, err := c.doJSON(ctx, http.MethodPost, collectionPath(coll, "reorder"), payload); err != nil {
		slog.Warn("reorder failed", "collection", coll, "count", len(docs), "error", err)
		return false
	}
	return true
}

// UploadAsset sends a file to the media host and returns its public URL.
// On failure it alerts with the underlying message and returns "".
func (c *Client) UploadAsset(ctx context.Context, filename string, r io.Reader) string {
	res, ok := c.Upload(ctx, filename, r)
	if !ok {
		return ""
	}
	return res.SecureURL
}

// Upload is UploadAsset returning the full metadata.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, bool) {
	res, err := c.upload(ctx, filename, r)
	if err != nil {
		slog.Error("upload failed", "filename", filename, "error", err)
		c.alert("Upload failed: " + err.Error())
		return nil, false
	}
	return res, true
}

func (c *Client) upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, "/api/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if !env.Success || env.Data == nil || env.Data.SecureURL == "" {
		return nil, fmt.Errorf("server returned no url")
	}
	return env.Data, nil
}

// CacheLog returns up to limit of the newest list cache invalidations.
// It reports false when the server keeps no log or the call fails.
func (c *Client) CacheLog(ctx context.Context, limit int) ([]models.CacheLogEntry, bool) {
	env, err := c.doJSON(ctx, http.MethodGet, "/api/cache-log?limit="+strconv.Itoa(limit), nil)
	if err != nil {
		slog.Debug("cache log unavailable", "error", err)
		return nil, false
	}
	if env.Entries == nil {
		return []models.CacheLogEntry{}, true
	}
	return env.Entries, true
}

// DeleteAsset removes an uploaded file by the URL UploadAsset returned.
func (c *Client) DeleteAsset(ctx context.Context, fileURL string) bool {
	if _, err := c.doJSON(ctx, http.MethodDelete, "/api/upload", map[string]string{"url": fileURL}); err != nil {
		slog.Warn("delete asset failed", "url", fileURL, "error", err)
		return false
	}
	return true
}

func (c *Client) alert(msg string) {
	if c.alerter != nil {
		c.alerter.Alert(msg)
	}
}
