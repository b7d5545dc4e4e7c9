// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports the first invalid attribute of a record.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Validate checks record attributes for a collection. With partial set,
// only the supplied attributes are checked (PATCH semantics); otherwise
// required attributes must be present too.
func Validate(c Collection, f Fields, partial bool) error {
	var required []string
	switch c {
	case CollectionBlogs:
		required = []string{"title", "content"}
	case CollectionMembers:
		required = []string{"name", "role", "imageUrl"}
	case CollectionEvents:
		required = []string{"title", "description"}
	case CollectionGallery:
		required = nil
	case CollectionAnnouncements:
		required = []string{"message"}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}

	for _, key := range required {
		v, ok := f[key]
		if !ok {
			if partial {
				continue
			}
			return invalid(key, "is required")
		}
		s, isString := v.(string)
		if !isString {
			return invalid(key, "must be a string")
		}
		if strings.TrimSpace(s) == "" {
			return invalid(key, "is required")
		}
	}

	for _, key := range []string{"imageUrl", "videoUrl", "profileUrl", "registrationLink", "slug", "date"} {
		if v, ok := f[key]; ok && v != nil {
			if _, isString := v.(string); !isString {
				return invalid(key, "must be a string")
			}
		}
	}
	for _, key := range []string{"dateTBA", "completed"} {
		if v, ok := f[key]; ok && v != nil {
			if _, isBool := v.(bool); !isBool {
				return invalid(key, "must be a boolean")
			}
		}
	}

	switch c {
	case CollectionEvents, CollectionAnnouncements:
		if err := validateDate(f, partial); err != nil {
			return err
		}
	case CollectionGallery:
		if err := validateGallery(f, partial); err != nil {
			return err
		}
	}
	return nil
}

// validateDate requires an ISO date unless the record is flagged "to be
// announced".
func validateDate(f Fields, partial bool) error {
	tba, _ := f["dateTBA"].(bool)
	date, _ := f["date"].(string)
	if date == "" {
		if tba || partial {
			return nil
		}
		return invalid("date", "is required unless dateTBA is set")
	}
	if _, err := time.Parse("2006-01-02", date); err == nil {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, date); err == nil {
		return nil
	}
	return invalid("date", "must be an ISO date (YYYY-MM-DD)")
}

// validateGallery requires a non-empty carousel on new records. Writes
// always use the current shape; the legacy single-image keys are rejected.
func validateGallery(f Fields, partial bool) error {
	if _, ok := f[GalleryKeyImageURL]; ok {
		return invalid(GalleryKeyImageURL, "is no longer supported, use images")
	}
	raw, ok := f[GalleryKeyImages]
	if !ok {
		if partial {
			return nil
		}
		return invalid(GalleryKeyImages, "at least one image is required")
	}
	var images []any
	switch list := raw.(type) {
	case []any:
		images = list
	case []map[string]any:
		for _, m := range list {
			images = append(images, m)
		}
	default:
		return invalid(GalleryKeyImages, "must be a list")
	}
	if len(images) == 0 {
		return invalid(GalleryKeyImages, "at least one image is required")
	}
	for i, item := range images {
		m, isMap := item.(map[string]any)
		if !isMap {
			return invalid(fmt.Sprintf("images[%d]", i), "must be an object")
		}
		url, _ := m["url"].(string)
		if strings.TrimSpace(url) == "" {
			return invalid(fmt.Sprintf("images[%d].url", i), "is required")
		}
		if c, ok := m["caption"]; ok && c != nil {
			if _, isString := c.(string); !isString {
				return invalid(fmt.Sprintf("images[%d].caption", i), "must be a string")
			}
		}
	}
	return nil
}
