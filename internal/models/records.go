// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Blog is a blog post. Content is HTML; when ContentFormat is "markdown"
// the source is kept in Markdown and Content holds the rendered HTML.
type Blog struct {
	ID            string     `json:"id,omitempty"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	Slug          string     `json:"slug,omitempty"`
	ContentFormat string     `json:"contentFormat,omitempty"`
	Markdown      string     `json:"markdown,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// Member is a team member shown on the members page.
type Member struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	ProfileURL string `json:"profileUrl,omitempty"`
	ImageURL   string `json:"imageUrl"`
}

// Event is a past or upcoming event. When DateTBA is set the Date is ignored.
type Event struct {
	ID               string `json:"id,omitempty"`
	Title            string `json:"title"`
	Date             string `json:"date,omitempty"`
	DateTBA          bool   `json:"dateTBA,omitempty"`
	Description      string `json:"description"`
	ImageURL         string `json:"imageUrl,omitempty"`
	VideoURL         string `json:"videoUrl,omitempty"`
	RegistrationLink string `json:"registrationLink,omitempty"`
	Completed        bool   `json:"completed,omitempty"`
	Slug             string `json:"slug,omitempty"`
}

// EffectiveDate returns the event date, or "" when the date is to be announced.
func (e Event) EffectiveDate() string {
	if e.DateTBA {
		return ""
	}
	return e.Date
}

// Announcement is a short message shown in the site banner.
type Announcement struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
	Date    string `json:"date,omitempty"`
	DateTBA bool   `json:"dateTBA,omitempty"`
}

// EffectiveDate returns the announcement date, or "" when it is to be announced.
func (a Announcement) EffectiveDate() string {
	if a.DateTBA {
		return ""
	}
	return a.Date
}

// Decode converts a document into a typed record.
func Decode[T any](doc Document) (T, error) {
	var out T
	data, err := json.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return out, nil
}

// ToFields converts a typed record into document attributes. Reserved
// keys are removed.
func ToFields(v any) (Fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return StripReserved(f), nil
}

// CacheLogEntry is one recorded invalidation of a collection's list cache.
type CacheLogEntry struct {
	ID            int64      `json:"id"`
	Collection    Collection `json:"collection"`
	DocumentID    string     `json:"documentId"`
	Action        string     `json:"action"`
	InvalidatedAt time.Time  `json:"invalidatedAt"`
}
