// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"ventureclub/internal/imaging"
	"ventureclub/internal/storage"
)

const (
	// maxUploadSize is the maximum allowed file upload size (100 MB).
	maxUploadSize = 100 << 20

	// maxUploadMemory is how much of a multipart body is buffered in
	// memory before spilling to temporary files.
	maxUploadMemory = 32 << 20

	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80
)

// allowedMediaTypes defines MIME types accepted for upload.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

// thumbableTypes are image types that support thumbnail generation.
// GIF is excluded to preserve animation.
var thumbableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ObjectStore is the media host. *storage.Client satisfies it.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	ExtractKey(rawURL string) (string, bool)
}

// Upload accepts media files for records and stores them on the media host.
type Upload struct {
	objects ObjectStore
}

// NewUpload creates the upload handler. objects may be nil when the media
// host is not configured; uploads then fail with 503.
func NewUpload(objects ObjectStore) *Upload {
	return &Upload{objects: objects}
}

// Upload handles POST /api/upload with a multipart "file" field and
// responds {success, data} with the public URL and file metadata.
func (u *Upload) Upload(w http.ResponseWriter, r *http.Request) {
	if u.objects == nil {
		writeError(w, "media storage is not configured", http.StatusServiceUnavailable)
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, "file too large, maximum size is 100 MB", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "no file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, "file too large, maximum size is 100 MB", http.StatusRequestEntityTooLarge)
		return
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	contentType := detectContentType(fileBytes, header.Header.Get("Content-Type"))
	if !allowedMediaTypes[contentType] {
		writeError(w, fmt.Sprintf("file type %q is not allowed", contentType), http.StatusBadRequest)
		return
	}

	resourceType := "video"
	if strings.HasPrefix(contentType, "image/") {
		resourceType = "image"
	}

	now := time.Now().UTC()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !sameFormat(ext, contentType) {
		ext = extensionFromType(contentType)
	}
	key := storage.ObjectKey(resourceType, ext, now)

	ctx := r.Context()
	if err := u.objects.Upload(ctx, key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, "failed to upload file", http.StatusBadGateway)
		return
	}

	data := map[string]any{
		"secure_url":        u.objects.FileURL(key),
		"public_id":         key,
		"resource_type":     resourceType,
		"format":            strings.TrimPrefix(ext, "."),
		"bytes":             len(fileBytes),
		"original_filename": header.Filename,
		"created_at":        now.Format(time.RFC3339),
	}

	if resourceType == "image" {
		if width, height, err := imaging.Dimensions(fileBytes); err == nil {
			data["width"] = width
			data["height"] = height
		} else {
			slog.Warn("image dimensions unavailable", "error", err, "key", key)
		}
	}

	// Generate and upload thumbnail for supported image types.
	if thumbableTypes[contentType] {
		thumbData, err := imaging.Thumbnail(fileBytes, thumbMaxWidth, thumbQuality)
		if err != nil {
			slog.Warn("thumbnail generation failed", "error", err, "key", key)
		} else if thumbData != nil {
			tk := strings.TrimSuffix(key, ext) + "_thumb.jpg"
			if err := u.objects.Upload(ctx, tk, "image/jpeg", bytes.NewReader(thumbData), int64(len(thumbData))); err != nil {
				slog.Warn("thumbnail upload failed", "error", err, "key", tk)
			} else {
				data["thumbnail_url"] = u.objects.FileURL(tk)
			}
		}
	}

	slog.Info("media uploaded", "key", key, "type", contentType, "bytes", len(fileBytes))
	writeOK(w, http.StatusCreated, map[string]any{"data": data})
}

// Remove handles DELETE /api/upload {url}. The object and its thumbnail,
// if any, are deleted from the media host. Records that still reference
// the URL are left as they are.
func (u *Upload) Remove(w http.ResponseWriter, r *http.Request) {
	if u.objects == nil {
		writeError(w, "media storage is not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	key, ok := u.objects.ExtractKey(req.URL)
	if !ok || key == "" {
		writeError(w, "url does not belong to the media host", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := u.objects.Delete(ctx, key); err != nil {
		slog.Error("s3 delete failed", "error", err, "key", key)
		writeError(w, "failed to delete file", http.StatusBadGateway)
		return
	}
	if ext := filepath.Ext(key); thumbableExt(ext) {
		tk := strings.TrimSuffix(key, ext) + "_thumb.jpg"
		if err := u.objects.Delete(ctx, tk); err != nil {
			slog.Warn("thumbnail delete failed", "error", err, "key", tk)
		}
	}

	slog.Info("media deleted", "key", key)
	writeOK(w, http.StatusOK, nil)
}

// thumbableExt reports whether uploads with ext may have a thumbnail.
func thumbableExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

// detectContentType sniffs the file. Browsers label QuickTime and some
// WebM files more precisely than the sniffer, so the declared type is used
// when sniffing is inconclusive.
func detectContentType(data []byte, declared string) string {
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i != -1 {
		sniffed = sniffed[:i]
	}
	if sniffed == "application/octet-stream" && declared != "" {
		return strings.ToLower(strings.TrimSpace(declared))
	}
	return sniffed
}

// sameFormat reports whether ext is a usual extension for contentType.
func sameFormat(ext, contentType string) bool {
	switch contentType {
	case "image/jpeg":
		return ext == ".jpg" || ext == ".jpeg"
	default:
		return ext == extensionFromType(contentType)
	}
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	default:
		return ""
	}
}
