// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package insight asks the model for structured summaries of papers and for
// the contributions, gaps, and comparisons each summary implies. Replies are
// free text; the first JSON object in the reply is taken as the answer.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Summarize asks gen for a JSON summary of p. Title, URL, and authors the
// model leaves out are filled from p.
func Summarize(ctx context.Context, gen llm.Generator, p types.Paper) (types.Summary, error) {
	prompt, err := renderSummaryPrompt(p)
	if err != nil {
		return types.Summary{}, fmt.Errorf("rendering summary prompt: %w", err)
	}

	reply, err := gen.Generate(ctx, prompt)
	if err != nil {
		return types.Summary{}, fmt.Errorf("summarizing %q: %w", p.Title, err)
	}

	var raw summaryReply
	if err := DecodeFirstObject(reply, &raw); err != nil {
		return types.Summary{}, fmt.Errorf("summarizing %q: %w", p.Title, err)
	}

	s := types.Summary{
		Title:        raw.Title,
		URL:          raw.URL,
		Authors:      raw.Authors,
		Introduction: raw.Introduction,
		Methods:      raw.Methods,
		Conclusion:   raw.Conclusion,
	}
	if s.Title == "" {
		s.Title = p.Title
	}
	if s.URL == "" {
		s.URL = p.URL
	}
	if s.Authors == nil {
		s.Authors = p.Authors
	}
	return s, nil
}

// SummarizeAll maps Summarize over papers, stopping at the first failure.
func SummarizeAll(ctx context.Context, gen llm.Generator, papers []types.Paper) ([]types.Summary, error) {
	out := make([]types.Summary, 0, len(papers))
	for _, p := range papers {
		s, err := Summarize(ctx, gen, p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Extract asks gen for the contributions, gaps, and comparisons of s.
// A reply without a JSON object yields an error wrapping types.ErrParse.
func Extract(ctx context.Context, gen llm.Generator, s types.Summary) (types.InsightRecord, error) {
	prompt, err := renderInsightPrompt(s)
	if err != nil {
		return types.InsightRecord{}, fmt.Errorf("rendering insight prompt: %w", err)
	}

	reply, err := gen.Generate(ctx, prompt)
	if err != nil {
		return types.InsightRecord{}, fmt.Errorf("extracting insights for %q: %w", s.Title, err)
	}

	var ins types.Insight
	if err := DecodeFirstObject(reply, &ins); err != nil {
		return types.InsightRecord{}, fmt.Errorf("extracting insights for %q: %w", s.Title, err)
	}
	return types.InsightRecord{Summary: s, Insight: ins}, nil
}

// ExtractBatch maps Extract over summaries in order. The first failure
// aborts the batch.
func ExtractBatch(ctx context.Context, gen llm.Generator, summaries []types.Summary) ([]types.InsightRecord, error) {
	out := make([]types.InsightRecord, 0, len(summaries))
	for _, s := range summaries {
		rec, err := Extract(ctx, gen, s)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DecodeFirstObject decodes the first JSON object found in text into v.
// Prose or code fences around the object are ignored; anything after the
// object's closing brace is not read.
func DecodeFirstObject(text string, v any) error {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return fmt.Errorf("%w: reply contains no JSON object", types.ErrParse)
	}
	dec := json.NewDecoder(strings.NewReader(text[start:]))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding JSON object: %w", types.ErrParse, err)
	}
	return nil
}

// summaryReply accepts authors as either a list or a comma-separated string.
type summaryReply struct {
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Authors      authorList `json:"authors"`
	Introduction string     `json:"introduction"`
	Methods      string     `json:"methods"`
	Conclusion   string     `json:"conclusion"`
}

type authorList []string

func (a *authorList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var out []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	*a = out
	return nil
}
