// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"ventureclub/internal/models"
	"ventureclub/internal/ordering"
)

// PostgresCollections stores documents as JSONB rows in the documents
// table. Per-collection operations that read the whole collection before
// writing lock the collection's row in collection_schema.
type PostgresCollections struct {
	db *sql.DB
}

// NewPostgresCollections creates a PostgresCollections over db.
func NewPostgresCollections(db *sql.DB) *PostgresCollections {
	return &PostgresCollections{db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const documentColumns = `id, data, sort_order, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (models.Document, error) {
	var (
		d       models.Document
		data    []byte
		order   sql.NullInt64
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&d.ID, &data, &order, &created, &updated); err != nil {
		return models.Document{}, err
	}
	if err := json.Unmarshal(data, &d.Fields); err != nil {
		return models.Document{}, fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	if d.Fields == nil {
		d.Fields = models.Fields{}
	}
	if order.Valid {
		o := int(order.Int64)
		d.Order = &o
	}
	created, updated = created.UTC(), updated.UTC()
	d.CreatedAt, d.UpdatedAt = &created, &updated
	return d, nil
}

func listDocuments(ctx context.Context, q queryer, c models.Collection) ([]models.Document, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE collection = $1
		ORDER BY created_at, id
	`, c)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// lockCollection takes the per-collection row lock and returns the
// collection's order schema version.
func lockCollection(ctx context.Context, tx *sql.Tx, c models.Collection) (int, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO collection_schema (collection) VALUES ($1)
		ON CONFLICT (collection) DO NOTHING
	`, c); err != nil {
		return 0, fmt.Errorf("ensure collection schema: %w", err)
	}
	var version int
	err := tx.QueryRowContext(ctx, `
		SELECT order_version FROM collection_schema
		WHERE collection = $1
		FOR UPDATE
	`, c).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("lock collection: %w", err)
	}
	return version, nil
}

func assignOrders(ctx context.Context, tx *sql.Tx, c models.Collection, assignments []ordering.Assignment) error {
	stmt, err := tx.PrepareContext(ctx, `
		UPDATE documents SET sort_order = $3
		WHERE collection = $1 AND id = $2
	`)
	if err != nil {
		return fmt.Errorf("prepare order update: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, c, a.ID, a.Order); err != nil {
			return fmt.Errorf("update order of %s: %w", a.ID, err)
		}
	}
	return nil
}

// List returns the documents of c in display order.
func (s *PostgresCollections) List(ctx context.Context, c models.Collection) ([]models.Document, error) {
	if c.ManualOrder() {
		if err := s.migrateOrder(ctx, c); err != nil {
			return nil, err
		}
	}
	docs, err := listDocuments(ctx, s.db, c)
	if err != nil {
		return nil, err
	}
	ordering.Sort(c, docs)
	return docs, nil
}

// migrateOrder runs the order backfill at most once per collection. The
// unlocked version read skips the transaction once a collection is
// migrated; the locked re-read makes concurrent readers wait for the one
// that performs the backfill.
func (s *PostgresCollections) migrateOrder(ctx context.Context, c models.Collection) error {
	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT order_version FROM collection_schema WHERE collection = $1`, c,
	).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read collection schema: %w", err)
	}
	if version >= ordering.SchemaVersion {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	version, err = lockCollection(ctx, tx, c)
	if err != nil {
		return err
	}
	if version >= ordering.SchemaVersion {
		return tx.Commit()
	}

	docs, err := listDocuments(ctx, tx, c)
	if err != nil {
		return err
	}
	backfilled := ordering.NeedsBackfill(docs)
	if backfilled {
		if err := assignOrders(ctx, tx, c, ordering.Backfill(docs)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE collection_schema SET order_version = $2 WHERE collection = $1`,
		c, ordering.SchemaVersion,
	); err != nil {
		return fmt.Errorf("flip collection schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	if backfilled {
		slog.Info("collection order migrated", "collection", c, "documents", len(docs))
	}
	return nil
}

// Get returns one document.
func (s *PostgresCollections) Get(ctx context.Context, c models.Collection, id string) (models.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE collection = $1 AND id = $2
	`, c, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// Create inserts a document and returns its id.
func (s *PostgresCollections) Create(ctx context.Context, c models.Collection, doc NewDocument) (string, error) {
	id := doc.ID
	if id == "" {
		id = newID()
	}
	data, err := json.Marshal(models.StripReserved(doc.Fields))
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	var order sql.NullInt64
	if doc.Order != nil {
		order = sql.NullInt64{Int64: int64(*doc.Order), Valid: true}
	} else if c.ManualOrder() {
		if _, err := lockCollection(ctx, tx, c); err != nil {
			return "", err
		}
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(sort_order) + 1, 0)
			FROM documents WHERE collection = $1
		`, c).Scan(&order.Int64); err != nil {
			return "", fmt.Errorf("next order: %w", err)
		}
		order.Valid = true
	}

	ts := now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $5)
	`, c, id, string(data), order, ts)
	if isUniqueViolation(err) {
		return "", fmt.Errorf("create %s/%s: %w", c, id, ErrConflict)
	}
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit create: %w", err)
	}
	return id, nil
}

// Update merges p into an existing document with the jsonb || and -
// operators.
func (s *PostgresCollections) Update(ctx context.Context, c models.Collection, id string, p Patch) error {
	set := models.StripReserved(p.Set)
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	unset := p.Unset
	if unset == nil {
		unset = []string{}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET data = (data || $3::jsonb) - $4::text[], updated_at = $5
		WHERE collection = $1 AND id = $2
	`, c, id, string(data), unset, now())
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes a document. Remaining order values are not compacted.
func (s *PostgresCollections) Delete(ctx context.Context, c models.Collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, c, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return expectOneRow(res)
}

// Reorder assigns order values from ids in a single transaction.
func (s *PostgresCollections) Reorder(ctx context.Context, c models.Collection, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	if _, err := lockCollection(ctx, tx, c); err != nil {
		return err
	}
	docs, err := listDocuments(ctx, tx, c)
	if err != nil {
		return err
	}
	assignments, err := ordering.Reorder(c, docs, ids)
	if err != nil {
		return fmt.Errorf("reorder %s: %w", c, err)
	}
	if err := assignOrders(ctx, tx, c, assignments); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// Count returns the number of documents in c.
func (s *PostgresCollections) Count(ctx context.Context, c models.Collection) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = $1`, c,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Import upserts docs as given.
func (s *PostgresCollections) Import(ctx context.Context, c models.Collection, docs []models.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, d := range docs {
		id := d.ID
		if id == "" {
			id = newID()
		}
		data, err := json.Marshal(models.StripReserved(d.Fields))
		if err != nil {
			return fmt.Errorf("encode document %s: %w", id, err)
		}
		created := now()
		if d.CreatedAt != nil {
			created = *d.CreatedAt
		}
		updated := created
		if d.UpdatedAt != nil {
			updated = *d.UpdatedAt
		}
		var order sql.NullInt64
		if d.Order != nil {
			order = sql.NullInt64{Int64: int64(*d.Order), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (collection, id, data, sort_order, created_at, updated_at)
			VALUES ($1, $2, $3::jsonb, $4, $5, $6)
			ON CONFLICT (collection, id) DO UPDATE
			SET data = EXCLUDED.data, sort_order = EXCLUDED.sort_order,
			    created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at
		`, c, id, string(data), order, created, updated); err != nil {
			return fmt.Errorf("import document %s: %w", id, err)
		}
	}

	if needsOrderMigration(c, docs) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collection_schema (collection, order_version) VALUES ($1, 0)
			ON CONFLICT (collection) DO UPDATE SET order_version = 0
		`, c); err != nil {
			return fmt.Errorf("reset collection schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Close is a no-op; the caller owns the *sql.DB.
func (s *PostgresCollections) Close() error { return nil }

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
