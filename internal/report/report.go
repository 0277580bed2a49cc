// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a reading plan as YAML, JSON, or a text table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Format names an output encoding.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat accepts yaml, yml, json, or table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "table", "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q: use yaml, json, or table", s)
	}
}

// FormatForPath infers the format from a file extension, defaulting to YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Plan is the exported form of a research run.
type Plan struct {
	Query       string    `json:"query" yaml:"query"`
	Source      string    `json:"source" yaml:"source"`
	Strategy    string    `json:"strategy" yaml:"strategy"`
	Collection  string    `json:"collection,omitempty" yaml:"collection,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Papers      []Entry   `json:"papers" yaml:"papers"`
}

// Entry is one paper in reading order.
type Entry struct {
	Rank            int `json:"rank" yaml:"rank"`
	types.PlanEntry `yaml:",inline"`
	Chunks          int            `json:"chunks" yaml:"chunks"`
	Insight         *types.Insight `json:"insight,omitempty" yaml:"insight,omitempty"`
}

// NewPlan builds a Plan from an ordered list of processed papers.
func NewPlan(query, source, strategy, collection string, plan []types.ProcessedPaper, now time.Time) Plan {
	entries := types.PlanEntries(plan)
	out := Plan{
		Query:       query,
		Source:      source,
		Strategy:    strategy,
		Collection:  collection,
		GeneratedAt: now.UTC(),
		Papers:      make([]Entry, len(plan)),
	}
	for i, p := range plan {
		out.Papers[i] = Entry{
			Rank:      i + 1,
			PlanEntry: entries[i],
			Chunks:    len(p.Chunks),
			Insight:   p.Insight,
		}
	}
	return out
}

// Write renders p to w in format f.
func Write(w io.Writer, p Plan, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	case FormatTable:
		writeTable(w, p)
		return nil
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// WriteFile renders p to path, creating parent directories as needed.
func WriteFile(path string, p Plan, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(file, p, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeTable(w io.Writer, p Plan) {
	if len(p.Papers) == 0 {
		fmt.Fprintln(w, "No papers in reading plan.")
		return
	}

	fmt.Fprintf(w, "Reading plan for %q (%s, %s)\n\n", p.Query, p.Source, p.Strategy)
	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-6s  %s\n", "Step", "Title", "Authors", "Chunks", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, e := range p.Papers {
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-6d  %s\n",
			e.Rank, truncate(e.Title, 60), truncate(authors(e.Authors), 20), e.Chunks, e.URL)
	}
	fmt.Fprintf(w, "\n%d papers\n", len(p.Papers))
}

func authors(list []string) string {
	switch len(list) {
	case 0:
		return ""
	case 1:
		return list[0]
	default:
		return list[0] + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
