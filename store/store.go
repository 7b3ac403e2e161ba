// Package store persists rendered feed documents in SQLite so the server can
// serve them without re-fetching sources.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no document matches.
var ErrNotFound = errors.New("document not found")

// Document is one rendered feed in one format.
type Document struct {
	Name        string
	Format      string
	ContentType string
	Body        string
	// ETag is a strong validator of Body, computed by Put when empty.
	ETag      string
	Items     int
	UpdatedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	name         TEXT NOT NULL,
	format       TEXT NOT NULL,
	content_type TEXT NOT NULL,
	body         TEXT NOT NULL,
	etag         TEXT NOT NULL,
	items        INTEGER NOT NULL DEFAULT 0,
	updated_at   INTEGER NOT NULL,
	PRIMARY KEY (name, format)
);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents (name, updated_at);
`

// Store is a SQLite-backed document store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ETag returns the strong entity tag of body.
func ETag(body string) string {
	sum := sha256.Sum256([]byte(body))
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// Put inserts or replaces the document stored under (Name, Format).
func (s *Store) Put(ctx context.Context, doc Document) error {
	if doc.Name == "" || doc.Format == "" {
		return errors.New("put: name and format are required")
	}
	if doc.ETag == "" {
		doc.ETag = ETag(doc.Body)
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (name, format, content_type, body, etag, items, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, format) DO UPDATE SET
			content_type = excluded.content_type,
			body         = excluded.body,
			etag         = excluded.etag,
			items        = excluded.items,
			updated_at   = excluded.updated_at`,
		doc.Name, doc.Format, doc.ContentType, doc.Body, doc.ETag, doc.Items, doc.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", doc.Name, doc.Format, err)
	}
	return nil
}

const selectColumns = `SELECT name, format, content_type, body, etag, items, updated_at FROM documents`

func scanDocument(row interface{ Scan(...any) error }) (Document, error) {
	var (
		doc     Document
		updated int64
	)
	if err := row.Scan(&doc.Name, &doc.Format, &doc.ContentType, &doc.Body, &doc.ETag, &doc.Items, &updated); err != nil {
		return Document{}, err
	}
	doc.UpdatedAt = time.UnixMilli(updated)
	return doc, nil
}

// Get returns the document stored under name and format.
func (s *Store) Get(ctx context.Context, name, format string) (Document, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE name = ? AND format = ?`, name, format)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", name, format, err)
	}
	return doc, nil
}

// CurrentETag returns the entity tag of the document stored under name and
// format without reading its body.
func (s *Store) CurrentETag(ctx context.Context, name, format string) (string, error) {
	var etag string
	err := s.db.QueryRowContext(ctx,
		`SELECT etag FROM documents WHERE name = ? AND format = ?`, name, format).Scan(&etag)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("etag %s/%s: %w", name, format, err)
	}
	return etag, nil
}

// Latest returns the most recently updated document of name in any format.
func (s *Store) Latest(ctx context.Context, name string) (Document, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE name = ? ORDER BY updated_at DESC, format LIMIT 1`, name)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("latest %s: %w", name, err)
	}
	return doc, nil
}

// List returns every stored document ordered by name and format, without bodies.
func (s *Store) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, format, content_type, '', etag, items, updated_at FROM documents ORDER BY name, format`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete removes every format of name and reports how many documents went.
func (s *Store) Delete(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", name, err)
	}
	return res.RowsAffected()
}
