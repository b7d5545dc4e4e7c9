// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the content records managed by the admin panel:
// blogs, members, events, gallery items and announcements. Records travel
// as generic Documents; typed views are decoded on demand.
package models

import (
	"errors"
	"fmt"
)

// Collection names one of the five content collections. The name doubles
// as the REST path segment and the document-store collection name.
type Collection string

const (
	CollectionBlogs         Collection = "blogs"
	CollectionMembers       Collection = "members"
	CollectionEvents        Collection = "events"
	CollectionGallery       Collection = "gallery"
	CollectionAnnouncements Collection = "announcements"
)

// Collections lists every collection in display order.
var Collections = []Collection{
	CollectionBlogs,
	CollectionMembers,
	CollectionEvents,
	CollectionGallery,
	CollectionAnnouncements,
}

// ErrUnknownCollection is returned when a name matches no collection.
var ErrUnknownCollection = errors.New("unknown collection")

// ParseCollection converts a path segment into a Collection.
func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return c, nil
}

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// ManualOrder reports whether the collection is ordered solely by its
// persisted order field. Only the gallery is; the other collections list
// unordered records newest first ahead of manually ordered ones.
func (c Collection) ManualOrder() bool {
	return c == CollectionGallery
}

// Sluggable reports whether records in the collection carry a slug derived
// from their title.
func (c Collection) Sluggable() bool {
	return c == CollectionBlogs || c == CollectionEvents
}

func (c Collection) String() string {
	return string(c)
}
