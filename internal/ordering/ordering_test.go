// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ordering

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"ventureclub/internal/models"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func doc(id string, order *int, dayOffset int) models.Document {
	created := base.AddDate(0, 0, dayOffset)
	return models.Document{ID: id, Order: order, CreatedAt: &created, Fields: models.Fields{}}
}

func ptr(n int) *int { return &n }

func TestSortGallery(t *testing.T) {
	docs := []models.Document{
		doc("c", ptr(2), 0),
		doc("legacy", nil, 0),
		doc("a", ptr(0), 5),
		doc("b", ptr(1), 1),
	}
	Sort(models.CollectionGallery, docs)
	if got, want := IDs(docs), []string{"a", "b", "c", "legacy"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Sort(gallery) = %v, want %v", got, want)
	}
}

func TestSortGalleryToleratesGaps(t *testing.T) {
	docs := []models.Document{doc("x", ptr(7), 0), doc("y", ptr(0), 0), doc("z", ptr(3), 0)}
	Sort(models.CollectionGallery, docs)
	if got, want := IDs(docs), []string{"y", "z", "x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Sort = %v, want %v", got, want)
	}
}

func TestSortOtherCollections(t *testing.T) {
	docs := []models.Document{
		doc("ordered-1", ptr(1), 0),
		doc("old", nil, 1),
		doc("ordered-0", ptr(0), 9),
		doc("new", nil, 3),
	}
	Sort(models.CollectionBlogs, docs)
	want := []string{"new", "old", "ordered-0", "ordered-1"}
	if got := IDs(docs); !reflect.DeepEqual(got, want) {
		t.Errorf("Sort(blogs) = %v, want %v", got, want)
	}
}

func TestNeedsBackfill(t *testing.T) {
	if NeedsBackfill(nil) {
		t.Error("empty collection should not need a backfill")
	}
	if NeedsBackfill([]models.Document{doc("a", ptr(0), 0)}) {
		t.Error("fully ordered collection should not need a backfill")
	}
	if !NeedsBackfill([]models.Document{doc("a", ptr(0), 0), doc("b", nil, 0)}) {
		t.Error("one missing order should trigger a backfill")
	}
}

func TestBackfillIsDeterministic(t *testing.T) {
	docs := []models.Document{
		doc("late", nil, 4),
		doc("tie-b", nil, 1),
		doc("early", ptr(9), 0),
		doc("tie-a", nil, 1),
	}
	want := []Assignment{
		{ID: "early", Order: 0},
		{ID: "tie-a", Order: 1},
		{ID: "tie-b", Order: 2},
		{ID: "late", Order: 3},
	}
	first := Backfill(docs)
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("Backfill = %+v, want %+v", first, want)
	}

	reversed := []models.Document{docs[3], docs[2], docs[1], docs[0]}
	if second := Backfill(reversed); !reflect.DeepEqual(second, first) {
		t.Errorf("Backfill depends on input order: %+v vs %+v", second, first)
	}
	if docs[0].ID != "late" {
		t.Error("Backfill must not reorder its input")
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		docs []models.Document
		want int
	}{
		{"empty", nil, 0},
		{"dense", []models.Document{doc("a", ptr(0), 0), doc("b", ptr(1), 0)}, 2},
		{"gap after delete", []models.Document{doc("a", ptr(0), 0), doc("c", ptr(2), 0)}, 3},
		{"unordered ignored", []models.Document{doc("a", nil, 0)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.docs); got != tt.want {
				t.Errorf("Next() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReorder(t *testing.T) {
	current := []models.Document{doc("a", ptr(0), 0), doc("b", ptr(1), 0), doc("c", ptr(2), 0)}

	got, err := Reorder(models.CollectionGallery, current, []string{"c", "a", "b"})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	want := []Assignment{{"c", 0}, {"a", 1}, {"b", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reorder = %+v, want %+v", got, want)
	}
}

func TestReorderKeepsUnsubmittedDocuments(t *testing.T) {
	current := []models.Document{
		doc("a", ptr(0), 0),
		doc("b", ptr(1), 0),
		doc("added-elsewhere", ptr(2), 0),
	}
	got, err := Reorder(models.CollectionGallery, current, []string{"b", "a"})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	want := []Assignment{{"b", 0}, {"a", 1}, {"added-elsewhere", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reorder = %+v, want %+v", got, want)
	}
}

func TestReorderRejectsBadInput(t *testing.T) {
	current := []models.Document{doc("a", ptr(0), 0), doc("b", ptr(1), 0)}
	tests := []struct {
		name string
		ids  []string
		want error
	}{
		{"duplicate", []string{"a", "a"}, ErrDuplicateID},
		{"unknown", []string{"a", "zzz"}, ErrUnknownID},
		{"empty", []string{"a", ""}, ErrEmptyID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reorder(models.CollectionGallery, current, tt.ids)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	docs := []models.Document{doc("a", nil, 0), doc("b", ptr(5), 0)}
	Apply(docs, []Assignment{{"a", 1}, {"b", 0}})
	if *docs[0].Order != 1 || *docs[1].Order != 0 {
		t.Errorf("Apply: a=%d b=%d", *docs[0].Order, *docs[1].Order)
	}
}
