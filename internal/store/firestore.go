// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ventureclub/internal/models"
	"ventureclub/internal/ordering"
)

// schemaCollection holds one marker document per content collection with
// its order schema version.
const schemaCollection = "_schema"

const fieldOrderVersion = "orderVersion"

// FirestoreCollections stores each collection as a Firestore collection.
// Document fields are the record attributes plus order, createdAt and
// updatedAt.
type FirestoreCollections struct {
	client *firestore.Client
}

// NewFirestoreCollections connects to Firestore. credentialsFile may be
// empty to use application default credentials or the emulator.
func NewFirestoreCollections(ctx context.Context, projectID, credentialsFile string) (*FirestoreCollections, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore connect: %w", err)
	}
	slog.Info("firestore connected", "project", projectID)
	return &FirestoreCollections{client: client}, nil
}

func (s *FirestoreCollections) col(c models.Collection) *firestore.CollectionRef {
	return s.client.Collection(string(c))
}

func (s *FirestoreCollections) marker(c models.Collection) *firestore.DocumentRef {
	return s.client.Collection(schemaCollection).Doc(string(c))
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (models.Document, error) {
	raw := snap.Data()
	raw[models.KeyID] = snap.Ref.ID
	d, err := models.DocumentFromMap(raw)
	if err != nil {
		return models.Document{}, fmt.Errorf("decode document %s: %w", snap.Ref.ID, err)
	}
	return d, nil
}

func decodeSnapshots(snaps []*firestore.DocumentSnapshot) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(snaps))
	for _, snap := range snaps {
		d, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// encodeDocument builds the stored field map of d.
func encodeDocument(d models.Document) map[string]any {
	data := make(map[string]any, len(d.Fields)+3)
	for k, v := range models.StripReserved(d.Fields) {
		data[k] = v
	}
	if d.Order != nil {
		data[models.KeyOrder] = *d.Order
	}
	if d.CreatedAt != nil {
		data[models.KeyCreatedAt] = *d.CreatedAt
	}
	if d.UpdatedAt != nil {
		data[models.KeyUpdatedAt] = *d.UpdatedAt
	}
	return data
}

func markerVersion(snap *firestore.DocumentSnapshot, err error) (int, error) {
	if status.Code(err) == codes.NotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, _ := snap.Data()[fieldOrderVersion].(int64)
	return int(v), nil
}

// List returns the documents of c in display order.
func (s *FirestoreCollections) List(ctx context.Context, c models.Collection) ([]models.Document, error) {
	if c.ManualOrder() {
		if err := s.migrateOrder(ctx, c); err != nil {
			return nil, err
		}
	}
	snaps, err := s.col(c).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs, err := decodeSnapshots(snaps)
	if err != nil {
		return nil, err
	}
	ordering.Sort(c, docs)
	return docs, nil
}

// migrateOrder backfills order values inside a transaction that reads and
// flips the collection's schema marker. Firestore retries the transaction
// when a concurrent reader commits first, and the retry sees the flipped
// marker.
func (s *FirestoreCollections) migrateOrder(ctx context.Context, c models.Collection) error {
	version, err := markerVersion(s.marker(c).Get(ctx))
	if err != nil {
		return fmt.Errorf("read collection schema: %w", err)
	}
	if version >= ordering.SchemaVersion {
		return nil
	}

	backfilled := 0
	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		backfilled = 0
		version, err := markerVersion(tx.Get(s.marker(c)))
		if err != nil {
			return fmt.Errorf("read collection schema: %w", err)
		}
		if version >= ordering.SchemaVersion {
			return nil
		}
		snaps, err := tx.Documents(s.col(c)).GetAll()
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		docs, err := decodeSnapshots(snaps)
		if err != nil {
			return err
		}
		if ordering.NeedsBackfill(docs) {
			for _, a := range ordering.Backfill(docs) {
				if err := tx.Update(s.col(c).Doc(a.ID), []firestore.Update{
					{Path: models.KeyOrder, Value: a.Order},
				}); err != nil {
					return err
				}
			}
			backfilled = len(docs)
		}
		return tx.Set(s.marker(c), map[string]any{fieldOrderVersion: ordering.SchemaVersion})
	})
	if err != nil {
		return fmt.Errorf("migrate order: %w", err)
	}
	if backfilled > 0 {
		slog.Info("collection order migrated", "collection", c, "documents", backfilled)
	}
	return nil
}

// Get returns one document.
func (s *FirestoreCollections) Get(ctx context.Context, c models.Collection, id string) (models.Document, error) {
	snap, err := s.col(c).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return decodeSnapshot(snap)
}

// Create inserts a document and returns its id. Manually ordered
// collections compute the append position inside a transaction.
func (s *FirestoreCollections) Create(ctx context.Context, c models.Collection, doc NewDocument) (string, error) {
	ref := s.col(c).NewDoc()
	if doc.ID != "" {
		ref = s.col(c).Doc(doc.ID)
	}
	ts := now()
	d := models.Document{
		ID:        ref.ID,
		Fields:    doc.Fields,
		Order:     doc.Order,
		CreatedAt: &ts,
		UpdatedAt: &ts,
	}

	var err error
	if d.Order == nil && c.ManualOrder() {
		err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			snaps, err := tx.Documents(s.col(c)).GetAll()
			if err != nil {
				return err
			}
			docs, err := decodeSnapshots(snaps)
			if err != nil {
				return err
			}
			next := ordering.Next(docs)
			d.Order = &next
			return tx.Create(ref, encodeDocument(d))
		})
	} else {
		_, err = ref.Create(ctx, encodeDocument(d))
	}
	if status.Code(err) == codes.AlreadyExists {
		return "", fmt.Errorf("create %s/%s: %w", c, ref.ID, ErrConflict)
	}
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	return ref.ID, nil
}

// Update merges p into an existing document. Field paths are built from
// single keys so dotted attribute names are not split.
func (s *FirestoreCollections) Update(ctx context.Context, c models.Collection, id string, p Patch) error {
	updates := []firestore.Update{
		{Path: models.KeyUpdatedAt, Value: now()},
	}
	for k, v := range models.StripReserved(p.Set) {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	for _, k := range p.Unset {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: firestore.Delete})
	}

	_, err := s.col(c).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// Delete removes a document. Remaining order values are not compacted.
func (s *FirestoreCollections) Delete(ctx context.Context, c models.Collection, id string) error {
	_, err := s.col(c).Doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Reorder assigns order values from ids in one transaction.
func (s *FirestoreCollections) Reorder(ctx context.Context, c models.Collection, ids []string) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.Documents(s.col(c)).GetAll()
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		docs, err := decodeSnapshots(snaps)
		if err != nil {
			return err
		}
		assignments, err := ordering.Reorder(c, docs, ids)
		if err != nil {
			return err
		}
		for _, a := range assignments {
			if err := tx.Update(s.col(c).Doc(a.ID), []firestore.Update{
				{Path: models.KeyOrder, Value: a.Order},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reorder %s: %w", c, err)
	}
	return nil
}

// Count returns the number of documents in c.
func (s *FirestoreCollections) Count(ctx context.Context, c models.Collection) (int, error) {
	snaps, err := s.col(c).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return len(snaps), nil
}

// Import writes docs as given in one transaction.
func (s *FirestoreCollections) Import(ctx context.Context, c models.Collection, docs []models.Document) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, d := range docs {
			ref := s.col(c).NewDoc()
			if d.ID != "" {
				ref = s.col(c).Doc(d.ID)
			}
			if d.CreatedAt == nil {
				ts := now()
				d.CreatedAt = &ts
			}
			if err := tx.Set(ref, encodeDocument(d)); err != nil {
				return err
			}
		}
		if needsOrderMigration(c, docs) {
			return tx.Set(s.marker(c), map[string]any{fieldOrderVersion: 0})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import documents: %w", err)
	}
	return nil
}

// Close releases the Firestore client.
func (s *FirestoreCollections) Close() error {
	return s.client.Close()
}

