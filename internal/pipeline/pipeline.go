// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one research request end to end:
//
//	fetch -> {end | process} -> {end | plan} -> build_rag -> end
//
// A single State value is threaded through the stages. Each stage only adds
// fields; none revisits an earlier one.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/index"
	"github.com/pdiddy/research-assistant/internal/plan"
	"github.com/pdiddy/research-assistant/internal/vectorstore"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Stage names a pipeline step.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageProcess  Stage = "process"
	StagePlan     Stage = "plan"
	StageBuildRAG Stage = "build_rag"
)

// HaltReason records why a run ended before producing a collection.
type HaltReason string

const (
	HaltNoPapers          HaltReason = "no_papers"
	HaltNoProcessedPapers HaltReason = "no_processed_papers"
	HaltNoChunks          HaltReason = "no_chunks"
)

// Fetcher finds candidate papers for a query.
type Fetcher interface {
	Search(ctx context.Context, query, source string) ([]types.Paper, error)
}

// Materializer turns paper records into chunked full text, dropping failures.
type Materializer interface {
	Materialize(ctx context.Context, papers []types.Paper) []types.ProcessedPaper
}

// Indexer replaces a named collection with the given documents.
type Indexer interface {
	Build(ctx context.Context, documents []string, metadatas []types.ChunkMetadata, name string) (*vectorstore.Collection, error)
}

// State accumulates the output of every stage.
type State struct {
	Query  string
	Source string

	Papers          []types.Paper
	ProcessedPapers []types.ProcessedPaper
	ReadingPlan     []types.ProcessedPaper
	Collection      *vectorstore.Collection

	// Trail lists the stages visited, in order.
	Trail []Stage

	// Halt is set when the run ended early.
	Halt HaltReason
}

// Chunks returns the number of chunks across all processed papers.
func (s *State) Chunks() int {
	n := 0
	for _, p := range s.ProcessedPapers {
		n += len(p.Chunks)
	}
	return n
}

// Pipeline wires the stages together.
type Pipeline struct {
	Fetcher      Fetcher
	Materializer Materializer
	Planner      plan.Strategy
	Indexer      Indexer
	Collection   string
	Logger       *zap.Logger
}

// Run executes the pipeline for query against source. Search and index
// failures abort the run and are returned. A run that ends without a
// collection returns the partial State and an error wrapping
// types.ErrNoResults.
func (p *Pipeline) Run(ctx context.Context, query, source string) (*State, error) {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("query", query), zap.String("source", source))

	st := &State{Query: query, Source: source}

	// fetch
	st.Trail = append(st.Trail, StageFetch)
	log.Info("fetching papers")
	papers, err := p.Fetcher.Search(ctx, query, source)
	if err != nil {
		return st, fmt.Errorf("fetching papers: %w", err)
	}
	st.Papers = papers
	if len(papers) == 0 {
		return p.halt(log, st, HaltNoPapers)
	}
	log.Info("found papers", zap.Int("count", len(papers)))

	// process
	st.Trail = append(st.Trail, StageProcess)
	st.ProcessedPapers = p.Materializer.Materialize(ctx, papers)
	if len(st.ProcessedPapers) == 0 {
		return p.halt(log, st, HaltNoProcessedPapers)
	}
	log.Info("processed papers",
		zap.Int("count", len(st.ProcessedPapers)),
		zap.Int("chunks", st.Chunks()))

	// plan
	st.Trail = append(st.Trail, StagePlan)
	log.Info("creating reading plan", zap.String("strategy", p.Planner.Name()))
	st.ReadingPlan, err = p.Planner.Rank(ctx, st.ProcessedPapers)
	if err != nil {
		return st, fmt.Errorf("planning: %w", err)
	}

	// build_rag
	st.Trail = append(st.Trail, StageBuildRAG)
	docs, metas := index.Documents(st.ProcessedPapers)
	st.Collection, err = p.Indexer.Build(ctx, docs, metas, p.Collection)
	if err != nil {
		return st, fmt.Errorf("building index: %w", err)
	}
	if st.Collection == nil {
		return p.halt(log, st, HaltNoChunks)
	}
	log.Info("built index", zap.Int("chunks", len(docs)))

	return st, nil
}

func (p *Pipeline) halt(log *zap.Logger, st *State, reason HaltReason) (*State, error) {
	st.Halt = reason
	log.Warn("ending workflow early",
		zap.String("reason", string(reason)),
		zap.Any("trail", st.Trail))
	return st, fmt.Errorf("%w: %s", types.ErrNoResults, reason)
}
