// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index rebuilds a named vector collection from paper chunks.
package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/vectorstore"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultCollection is the collection name used when none is given.
const DefaultCollection = "papers"

// Builder replaces collections in Store with freshly embedded documents.
type Builder struct {
	Store    *vectorstore.Store
	Embedder llm.Embedder
	Logger   *zap.Logger
}

// New creates a Builder. A nil logger discards output.
func New(store *vectorstore.Store, embedder llm.Embedder, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{Store: store, Embedder: embedder, Logger: logger}
}

// Build deletes any collection called name, creates it again bound to the
// builder's embedder, and inserts documents with ids "0".."n-1" in one
// batch. It returns a nil collection and nil error when documents is empty.
func (b *Builder) Build(ctx context.Context, documents []string, metadatas []types.ChunkMetadata, name string) (*vectorstore.Collection, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	if len(documents) != len(metadatas) {
		return nil, fmt.Errorf("building index: %d documents but %d metadatas", len(documents), len(metadatas))
	}
	if name == "" {
		name = DefaultCollection
	}

	if err := b.Store.DeleteCollection(ctx, name); err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("resetting collection %q: %w", name, err)
	}

	col, err := b.Store.CreateCollection(ctx, name, b.Embedder)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(documents))
	for i := range documents {
		ids[i] = strconv.Itoa(i)
	}
	if err := col.Add(ctx, ids, documents, metadatas); err != nil {
		return nil, fmt.Errorf("populating collection %q: %w", name, err)
	}

	b.Logger.Info("built index", zap.String("collection", name), zap.Int("documents", len(documents)))
	return col, nil
}

// Documents flattens the chunks of papers into parallel document and
// metadata slices, paper by paper in chunk order.
func Documents(papers []types.ProcessedPaper) ([]string, []types.ChunkMetadata) {
	var docs []string
	var metas []types.ChunkMetadata
	for _, p := range papers {
		m := types.MetadataFor(p.Paper)
		for _, c := range p.Chunks {
			docs = append(docs, c)
			metas = append(metas, m)
		}
	}
	return docs, metas
}
