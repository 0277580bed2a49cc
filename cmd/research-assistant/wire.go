// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/convert"
	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/internal/index"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/materialize"
	"github.com/pdiddy/research-assistant/internal/pipeline"
	"github.com/pdiddy/research-assistant/internal/plan"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/internal/vectorstore"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// deps holds the long-lived collaborators shared by the research, ask, and
// serve commands. Close releases the store.
type deps struct {
	client   *http.Client
	gen      llm.Generator
	embedder llm.Embedder
	store    *vectorstore.Store
}

func newDeps(ctx context.Context, c types.Config) (*deps, error) {
	client := httputil.NewClient(c.HTTP)

	gen, err := llm.NewGenerator(ctx, c.Model, client)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	embedder, err := llm.NewEmbedder(ctx, c.Model, client)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	store, err := vectorstore.Open(c.Index.DBPath)
	if err != nil {
		return nil, err
	}
	return &deps{client: client, gen: gen, embedder: embedder, store: store}, nil
}

func (d *deps) Close() error { return d.store.Close() }

// newPipeline assembles the full research workflow from c.
func (d *deps) newPipeline(c types.Config) (*pipeline.Pipeline, error) {
	extractor, err := convert.New(c.Materialize.Extractor)
	if err != nil {
		return nil, err
	}
	planner, err := plan.New(c.Plan.Strategy, d.gen, logger.Named("plan"))
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{
		Fetcher:      search.NewSearcher(d.client, c),
		Materializer: materialize.New(d.client, extractor, c, logger.Named("materialize")),
		Planner:      planner,
		Indexer:      index.New(d.store, d.embedder, logger.Named("index")),
		Collection:   c.Index.Collection,
		Logger:       logger.Named("pipeline"),
	}, nil
}

// overrideString copies a flag into dst when the user set it explicitly, so
// config and environment values survive otherwise.
func overrideString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}
