// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vectorstore keeps named collections of embedded text chunks in a
// SQLite database and answers nearest-neighbour queries by cosine similarity.
// Embeddings are stored as little-endian float32 BLOBs and ranked in Go; a
// collection is bound to the Embedder that produced its vectors.
package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Store manages the vector store SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and creates the schema if it
// does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			id TEXT NOT NULL,
			document TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			url TEXT,
			embedding BLOB,
			PRIMARY KEY (collection_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection_id, seq)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// DeleteCollection removes the named collection and its documents. It
// returns an error wrapping types.ErrNotFound when no such collection exists.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM collections WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("collection %q: %w", name, types.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up collection %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection_id = ?`, id); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return tx.Commit()
}

// CreateCollection creates an empty collection bound to embedder. Creating a
// name that already exists is an error.
func (s *Store) CreateCollection(ctx context.Context, name string, embedder llm.Embedder) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("creating collection %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading collection id: %w", err)
	}
	return &Collection{Name: name, id: id, store: s, embedder: embedder}, nil
}

// GetCollection returns an existing collection bound to embedder, or an error
// wrapping types.ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, name string, embedder llm.Embedder) (*Collection, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM collections WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %q: %w", name, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up collection %q: %w", name, err)
	}
	return &Collection{Name: name, id: id, store: s, embedder: embedder}, nil
}

// ListCollections returns the document count of every collection, keyed by name.
func (s *Store) ListCollections(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.name, COUNT(d.id) FROM collections c
		 LEFT JOIN documents d ON d.collection_id = c.id
		 GROUP BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}
