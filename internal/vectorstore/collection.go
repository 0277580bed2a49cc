// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vectorstore

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Collection is a handle to one named collection. Once the collection is
// deleted or recreated under the same name, every operation on an older
// handle fails with types.ErrNotFound.
type Collection struct {
	Name     string
	id       int64
	store    *Store
	embedder llm.Embedder
}

// Result is one query hit.
type Result struct {
	ID       string              `json:"id"`
	Document string              `json:"document"`
	Metadata types.ChunkMetadata `json:"metadata"`
	Score    float64             `json:"score"`
}

// Add embeds documents and inserts them with their ids and metadata in a
// single transaction. All three slices must have the same length.
func (c *Collection) Add(ctx context.Context, ids, documents []string, metadatas []types.ChunkMetadata) error {
	if len(ids) != len(documents) || len(documents) != len(metadatas) {
		return fmt.Errorf("adding to %q: %d ids, %d documents, %d metadatas", c.Name, len(ids), len(documents), len(metadatas))
	}
	if len(documents) == 0 {
		return nil
	}
	if c.embedder == nil {
		return fmt.Errorf("collection %q has no embedding function", c.Name)
	}

	if err := c.live(ctx); err != nil {
		return err
	}

	vectors, err := c.embedder.Embed(ctx, documents)
	if err != nil {
		return fmt.Errorf("embedding documents: %w", err)
	}
	if len(vectors) != len(documents) {
		return fmt.Errorf("%w: embedder returned %d vectors for %d documents", types.ErrUpstream, len(vectors), len(documents))
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM documents WHERE collection_id = ?`, c.id,
	).Scan(&next); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (collection_id, seq, id, document, title, authors, url, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range documents {
		m := metadatas[i]
		_, err := stmt.ExecContext(ctx,
			c.id, next+i, ids[i], documents[i], m.Title, m.Authors, m.URL, encodeEmbedding(vectors[i]))
		if err != nil {
			return fmt.Errorf("inserting document %s: %w", ids[i], err)
		}
	}

	return tx.Commit()
}

// Count returns the number of documents in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	if err := c.live(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := c.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection_id = ?`, c.id,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Query embeds text and returns up to k documents ranked by cosine
// similarity, highest first. Ties keep insertion order.
func (c *Collection) Query(ctx context.Context, text string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}
	if c.embedder == nil {
		return nil, fmt.Errorf("collection %q has no embedding function", c.Name)
	}
	if err := c.live(ctx); err != nil {
		return nil, err
	}

	rows, err := c.store.db.QueryContext(ctx,
		`SELECT id, document, title, authors, url, embedding FROM documents
		 WHERE collection_id = ? ORDER BY seq`, c.id)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		Result
		vec []float32
	}
	var candidates []candidate
	for rows.Next() {
		var cand candidate
		var title, authors, url *string
		var blob []byte
		if err := rows.Scan(&cand.ID, &cand.Document, &title, &authors, &url, &blob); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		cand.Metadata = types.ChunkMetadata{Title: deref(title), Authors: deref(authors), URL: deref(url)}
		vec, err := decodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", cand.ID, err)
		}
		cand.vec = vec
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	qv, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for one query", types.ErrUpstream, len(qv))
	}

	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		score, err := cosineSimilarity(qv[0], cand.vec)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", cand.ID, err)
		}
		cand.Score = score
		results = append(results, cand.Result)
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// live reports types.ErrNotFound when the row this handle was bound to no
// longer exists.
func (c *Collection) live(ctx context.Context) error {
	var one int
	err := c.store.db.QueryRowContext(ctx,
		`SELECT 1 FROM collections WHERE id = ?`, c.id,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("collection %q: %w", c.Name, types.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up collection %q: %w", c.Name, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// encodeEmbedding packs vec as little-endian IEEE 754 float32 values.
func encodeEmbedding(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func decodeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

// cosineSimilarity returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
