// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Reserved document keys managed by the server. Clients never set them
// through Fields.
const (
	KeyID        = "id"
	KeyOrder     = "order"
	KeyCreatedAt = "createdAt"
	KeyUpdatedAt = "updatedAt"
)

// Fields holds the record attributes of a document as decoded from JSON.
type Fields map[string]any

// Document is a single record in a collection. On the wire it is a flat
// JSON object: the record attributes plus id, order, createdAt, updatedAt.
type Document struct {
	ID        string
	Fields    Fields
	Order     *int
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{ID: d.ID, Fields: cloneFields(d.Fields)}
	if d.Order != nil {
		o := *d.Order
		out.Order = &o
	}
	if d.CreatedAt != nil {
		t := *d.CreatedAt
		out.CreatedAt = &t
	}
	if d.UpdatedAt != nil {
		t := *d.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// String returns a string attribute, or "" if it is absent or not a string.
func (d Document) String(key string) string {
	s, _ := d.Fields[key].(string)
	return s
}

// Bool returns a boolean attribute, or false if absent.
func (d Document) Bool(key string) bool {
	b, _ := d.Fields[key].(bool)
	return b
}

// Has reports whether the attribute is present, even when null.
func (d Document) Has(key string) bool {
	_, ok := d.Fields[key]
	return ok
}

// MarshalJSON flattens the document into a single JSON object.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+4)
	for k, v := range d.Fields {
		out[k] = v
	}
	out[KeyID] = d.ID
	if d.Order != nil {
		out[KeyOrder] = *d.Order
	}
	if d.CreatedAt != nil {
		out[KeyCreatedAt] = d.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if d.UpdatedAt != nil {
		out[KeyUpdatedAt] = d.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits a flat JSON object into reserved keys and Fields.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	doc, err := DocumentFromMap(raw)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// DocumentFromMap builds a Document from a decoded JSON object. Reserved
// keys are lifted out of the attribute map.
func DocumentFromMap(raw map[string]any) (Document, error) {
	var d Document
	d.Fields = make(Fields, len(raw))
	for k, v := range raw {
		switch k {
		case KeyID:
			s, ok := v.(string)
			if !ok && v != nil {
				return Document{}, fmt.Errorf("document id: expected string, got %T", v)
			}
			d.ID = s
		case KeyOrder:
			if v == nil {
				continue
			}
			n, err := toInt(v)
			if err != nil {
				return Document{}, fmt.Errorf("document order: %w", err)
			}
			d.Order = &n
		case KeyCreatedAt, KeyUpdatedAt:
			t, err := toTime(v)
			if err != nil {
				return Document{}, fmt.Errorf("document %s: %w", k, err)
			}
			if k == KeyCreatedAt {
				d.CreatedAt = t
			} else {
				d.UpdatedAt = t
			}
		default:
			d.Fields[k] = v
		}
	}
	return d, nil
}

// StripReserved returns a copy of f without the server-managed keys.
func StripReserved(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		switch k {
		case KeyID, KeyOrder, KeyCreatedAt, KeyUpdatedAt:
			continue
		}
		out[k] = v
	}
	return out
}

// IntValue converts a JSON number into an int. Used for explicit order
// values supplied by clients.
func IntValue(v any) (int, error) {
	return toInt(v)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, err
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func toTime(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &t, nil
	case string:
		if t == "" {
			return nil, nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("expected timestamp, got %T", v)
	}
}

func cloneFields(f Fields) Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}
