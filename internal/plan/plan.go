// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan orders processed papers into a reading plan. Two strategies
// are available and chosen by name: a heuristic that ranks by extracted
// insights, and a model strategy that asks the generator for an order.
package plan

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/insight"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Strategy turns processed papers into a reading plan. The result is always
// a permutation of the input.
type Strategy interface {
	Name() string
	Rank(ctx context.Context, papers []types.ProcessedPaper) ([]types.ProcessedPaper, error)
}

// New returns the strategy registered under name.
func New(name types.Strategy, gen llm.Generator, logger *zap.Logger) (Strategy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch name {
	case types.StrategyModel, "":
		return &Model{Generator: gen, Logger: logger}, nil
	case types.StrategyHeuristic:
		return &Heuristic{Generator: gen, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown plan strategy %q: use model or heuristic", name)
	}
}

// SortByInsight orders papers by most contributions first, then fewest gaps,
// then title. Papers without an insight count as having empty lists. The
// input slice is not modified.
func SortByInsight(papers []types.ProcessedPaper) []types.ProcessedPaper {
	out := slices.Clone(papers)
	slices.SortStableFunc(out, func(a, b types.ProcessedPaper) int {
		ac, ag := insightCounts(a.Insight)
		bc, bg := insightCounts(b.Insight)
		if c := cmp.Compare(bc, ac); c != 0 {
			return c
		}
		if c := cmp.Compare(ag, bg); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return out
}

func insightCounts(in *types.Insight) (contributions, gaps int) {
	if in == nil {
		return 0, 0
	}
	return len(in.Contributions), len(in.Gaps)
}

// Heuristic summarizes each paper, extracts its insights, attaches them, and
// sorts with SortByInsight. Any model or parse failure aborts the ranking.
type Heuristic struct {
	Generator llm.Generator
	Logger    *zap.Logger
}

// Name returns "heuristic".
func (h *Heuristic) Name() string { return string(types.StrategyHeuristic) }

// Rank implements Strategy.
func (h *Heuristic) Rank(ctx context.Context, papers []types.ProcessedPaper) ([]types.ProcessedPaper, error) {
	if h.Generator == nil {
		return nil, fmt.Errorf("heuristic planner requires a generator")
	}

	attached := make([]types.ProcessedPaper, 0, len(papers))
	for _, p := range papers {
		summary, err := insight.Summarize(ctx, h.Generator, p.Paper)
		if err != nil {
			return nil, err
		}
		rec, err := insight.Extract(ctx, h.Generator, summary)
		if err != nil {
			return nil, err
		}
		ins := rec.Insight
		p.Insight = &ins
		attached = append(attached, p)

		h.logger().Debug("extracted insights",
			zap.String("title", p.Title),
			zap.Int("contributions", len(ins.Contributions)),
			zap.Int("gaps", len(ins.Gaps)))
	}
	return SortByInsight(attached), nil
}

func (h *Heuristic) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
