// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"ventureclub/internal/admin"
	"ventureclub/internal/models"
)

const summaryWidth = 48

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, docs []models.Document) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tID\tSUMMARY\tCREATED")
	for _, d := range docs {
		order := "-"
		if d.Order != nil {
			order = fmt.Sprint(*d.Order)
		}
		created := "-"
		if d.CreatedAt != nil {
			created = d.CreatedAt.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", order, d.ID, summary(d), created)
	}
	return tw.Flush()
}

// summary picks the attribute that names the item.
func summary(d models.Document) string {
	s := ""
	for _, key := range []string{"title", "name", "message", "mainCaption"} {
		if s = d.String(key); s != "" {
			break
		}
	}
	if s == "" {
		if images, ok := d.Fields[models.GalleryKeyImages].([]any); ok && len(images) > 0 {
			if m, ok := images[0].(map[string]any); ok {
				s, _ = m["url"].(string)
			}
		}
	}
	if r := []rune(s); len(r) > summaryWidth {
		s = string(r[:summaryWidth-1]) + "…"
	}
	return s
}

func printCounts(w io.Writer, s *admin.Store) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tITEMS")
	for _, c := range models.Collections {
		count := "unavailable"
		if s.Loaded(c) {
			count = fmt.Sprint(len(s.Items(c)))
		}
		fmt.Fprintf(tw, "%s\t%s\n", c, count)
	}
	return tw.Flush()
}

// printCacheLog writes invalidations newest first.
func printCacheLog(w io.Writer, entries []models.CacheLogEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "cache invalidations: none")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INVALIDATED\tCOLLECTION\tACTION\tDOCUMENT")
	for _, e := range entries {
		doc := e.DocumentID
		if doc == "" {
			doc = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.InvalidatedAt.Local().Format(time.DateTime), e.Collection, e.Action, doc)
	}
	return tw.Flush()
}
