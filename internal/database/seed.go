package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"ventureclub/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

// Importer is the part of a document backend the seeder needs.
type Importer interface {
	Count(ctx context.Context, c models.Collection) (int, error)
	Import(ctx context.Context, c models.Collection, docs []models.Document) error
}

// SeedData decodes the embedded development data, keyed by collection.
func SeedData() (map[models.Collection][]models.Document, error) {
	var raw map[string][]map[string]any
	if err := yaml.Unmarshal(seedYAML, &raw); err != nil {
		return nil, fmt.Errorf("seed decode: %w", err)
	}

	out := make(map[models.Collection][]models.Document, len(raw))
	for name, records := range raw {
		c, err := models.ParseCollection(name)
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		for i, rec := range records {
			doc, err := models.DocumentFromMap(rec)
			if err != nil {
				return nil, fmt.Errorf("seed %s[%d]: %w", c, i, err)
			}
			out[c] = append(out[c], doc)
		}
	}
	return out, nil
}

// Seed populates empty collections with development data. Collections
// that already hold documents are left alone, so it is safe to call on
// every start. The gallery sample includes a legacy single-image record
// without an order value.
func Seed(ctx context.Context, dst Importer) error {
	data, err := SeedData()
	if err != nil {
		return err
	}

	for _, c := range models.Collections {
		docs := data[c]
		if len(docs) == 0 {
			continue
		}
		n, err := dst.Count(ctx, c)
		if err != nil {
			return fmt.Errorf("seed count %s: %w", c, err)
		}
		if n > 0 {
			slog.Debug("collection already seeded, skipping", "collection", c)
			continue
		}
		if err := dst.Import(ctx, c, docs); err != nil {
			return fmt.Errorf("seed import %s: %w", c, err)
		}
		slog.Info("collection seeded", "collection", c, "documents", len(docs))
	}
	return nil
}
