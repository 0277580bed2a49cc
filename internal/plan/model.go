// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// numberedLine matches "1. Title" lines in the model reply.
var numberedLine = regexp.MustCompile(`(?m)^\d+\.\s*(.*)`)

var planPromptTmpl = template.Must(template.New("plan").Parse(`You are an academic advisor. Based on the following research paper titles and summaries, create a logical reading plan for a student new to the topic.

Order the papers starting with foundational or survey papers, then move to more specific applications or advanced topics.

Return ONLY a numbered list of the paper titles in the new, logical order. Do not add any commentary or explanation.

Here are the papers:
{{.Papers}}
`))

// Model asks the generator for a numbered list of titles and reorders the
// papers to match. It never fails: on any error the original order is kept
// and a warning is logged.
type Model struct {
	Generator llm.Generator
	Logger    *zap.Logger
}

// Name returns "model".
func (m *Model) Name() string { return string(types.StrategyModel) }

// Rank implements Strategy. The returned error is always nil.
func (m *Model) Rank(ctx context.Context, papers []types.ProcessedPaper) ([]types.ProcessedPaper, error) {
	log := m.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if len(papers) == 0 {
		return nil, nil
	}
	if m.Generator == nil {
		log.Warn("model planner has no generator, keeping original order")
		return slices.Clone(papers), nil
	}

	prompt, err := renderPlanPrompt(papers)
	if err != nil {
		log.Warn("rendering plan prompt failed, keeping original order", zap.Error(err))
		return slices.Clone(papers), nil
	}

	reply, err := m.Generator.Generate(ctx, prompt)
	if err != nil {
		log.Warn("model planning failed, keeping original order", zap.Error(err))
		return slices.Clone(papers), nil
	}

	titles := ParseNumberedTitles(reply)
	if len(titles) == 0 {
		log.Warn("model reply had no numbered list, keeping original order",
			zap.Int("reply_len", len(reply)))
		return slices.Clone(papers), nil
	}

	return Reorder(papers, titles), nil
}

// ParseNumberedTitles returns the text after "N." on every numbered line.
func ParseNumberedTitles(reply string) []string {
	var titles []string
	for _, m := range numberedLine.FindAllStringSubmatch(reply, -1) {
		if t := strings.TrimSpace(m[1]); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// Reorder places papers in the order titles names them, then appends papers
// no title matched in their original order. A title matches exactly first,
// then by normalized form. Each paper is placed at most once, so the result
// is a permutation of papers.
func Reorder(papers []types.ProcessedPaper, titles []string) []types.ProcessedPaper {
	used := make([]bool, len(papers))
	normalized := make([]string, len(papers))
	for i, p := range papers {
		normalized[i] = search.NormalizeTitle(p.Title)
	}

	find := func(title string) int {
		for i, p := range papers {
			if !used[i] && p.Title == title {
				return i
			}
		}
		norm := search.NormalizeTitle(title)
		if norm == "" {
			return -1
		}
		for i := range papers {
			if !used[i] && normalized[i] == norm {
				return i
			}
		}
		return -1
	}

	out := make([]types.ProcessedPaper, 0, len(papers))
	for _, t := range titles {
		if i := find(t); i >= 0 {
			used[i] = true
			out = append(out, papers[i])
		}
	}
	for i, p := range papers {
		if !used[i] {
			out = append(out, p)
		}
	}
	return out
}

func renderPlanPrompt(papers []types.ProcessedPaper) (string, error) {
	blocks := make([]string, 0, len(papers))
	for _, p := range papers {
		title := p.Title
		if title == "" {
			title = "Untitled"
		}
		blocks = append(blocks, fmt.Sprintf("Title: %s\nSummary: %s", title, p.Summary))
	}

	var buf bytes.Buffer
	if err := planPromptTmpl.Execute(&buf, struct{ Papers string }{strings.Join(blocks, "\n\n---\n\n")}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
