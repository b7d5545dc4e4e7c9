// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gallery upgrades gallery documents stored in the legacy
// single-image shape to the current carousel shape. The upgrade happens at
// read time only; stored documents keep their shape until an admin saves
// them again.
package gallery

import (
	"ventureclub/internal/models"
)

// Classify returns the typed view of a gallery document. A document that
// carries a legacy imageUrl and no images list is V1; anything else is V2.
// This is the only place the shape is inferred from field presence.
func Classify(doc models.Document) models.GalleryRecord {
	if doc.Has(models.GalleryKeyImageURL) && !doc.Has(models.GalleryKeyImages) {
		return models.GalleryItemV1{
			ID:       doc.ID,
			ImageURL: doc.String(models.GalleryKeyImageURL),
			Caption:  doc.String(models.GalleryKeyCaption),
		}
	}
	v2 := models.GalleryItemV2{
		ID:          doc.ID,
		Title:       doc.String(models.GalleryKeyTitle),
		MainCaption: doc.String(models.GalleryKeyMainCaption),
	}
	if list, ok := doc.Fields[models.GalleryKeyImages].([]any); ok {
		for _, item := range list {
			m, _ := item.(map[string]any)
			url, _ := m["url"].(string)
			caption, _ := m["caption"].(string)
			v2.Images = append(v2.Images, models.GalleryImage{URL: url, Caption: caption})
		}
	}
	return v2
}

// Upgrade converts a V1 item into the equivalent V2 item: the single image
// becomes a one-slide carousel and its caption becomes the title and main
// caption.
func Upgrade(v1 models.GalleryItemV1) models.GalleryItemV2 {
	return models.GalleryItemV2{
		ID:          v1.ID,
		Title:       v1.Caption,
		Images:      []models.GalleryImage{{URL: v1.ImageURL, Caption: v1.Caption}},
		MainCaption: v1.Caption,
	}
}

// Migrate returns doc in the current shape. Attributes other than the
// legacy imageUrl/caption pair are preserved. Documents already in the
// current shape are returned unchanged, so Migrate is idempotent.
func Migrate(doc models.Document) models.Document {
	v1, ok := Classify(doc).(models.GalleryItemV1)
	if !ok {
		return doc
	}
	v2 := Upgrade(v1)

	out := doc.Clone()
	delete(out.Fields, models.GalleryKeyImageURL)
	delete(out.Fields, models.GalleryKeyCaption)

	image := map[string]any{"url": v2.Images[0].URL}
	if v2.Images[0].Caption != "" {
		image["caption"] = v2.Images[0].Caption
	}
	out.Fields[models.GalleryKeyImages] = []any{image}
	if v2.Title != "" {
		out.Fields[models.GalleryKeyTitle] = v2.Title
	}
	if v2.MainCaption != "" {
		out.Fields[models.GalleryKeyMainCaption] = v2.MainCaption
	}
	return out
}

// MigrateAll applies Migrate to every document.
func MigrateAll(docs []models.Document) []models.Document {
	out := make([]models.Document, len(docs))
	for i, d := range docs {
		out[i] = Migrate(d)
	}
	return out
}

// LegacyKeys lists the attributes a save in the current shape must remove
// from storage so a document never holds both shapes at once.
func LegacyKeys(f models.Fields) []string {
	if _, ok := f[models.GalleryKeyImages]; !ok {
		return nil
	}
	return []string{models.GalleryKeyImageURL, models.GalleryKeyCaption}
}
