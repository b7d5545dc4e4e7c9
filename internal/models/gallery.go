// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Gallery attribute keys. The V1 keys only exist on records stored before
// gallery items became carousels.
const (
	GalleryKeyImages      = "images"
	GalleryKeyTitle       = "title"
	GalleryKeyMainCaption = "mainCaption"
	GalleryKeyImageURL    = "imageUrl"
	GalleryKeyCaption     = "caption"
)

// GalleryImage is one slide of a gallery carousel.
type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// GalleryRecord is a gallery item in one of its schema versions.
type GalleryRecord interface {
	GallerySchema() int
}

// GalleryItemV1 is the superseded single-image gallery item.
type GalleryItemV1 struct {
	ID       string `json:"id,omitempty"`
	ImageURL string `json:"imageUrl"`
	Caption  string `json:"caption,omitempty"`
}

// GallerySchema implements GalleryRecord.
func (GalleryItemV1) GallerySchema() int { return 1 }

// GalleryItemV2 is the current multi-image gallery item.
type GalleryItemV2 struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"title,omitempty"`
	Images      []GalleryImage `json:"images"`
	MainCaption string         `json:"mainCaption,omitempty"`
}

// GallerySchema implements GalleryRecord.
func (GalleryItemV2) GallerySchema() int { return 2 }

// Cover returns the first image, or the zero value for an empty carousel.
func (g GalleryItemV2) Cover() GalleryImage {
	if len(g.Images) == 0 {
		return GalleryImage{}
	}
	return g.Images[0]
}
