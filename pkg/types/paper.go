// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// ProcessedPaper is a Paper whose full text was downloaded, extracted, and
// split into ordered chunks. Insight is attached by the heuristic planner
// and is nil otherwise.
type ProcessedPaper struct {
	Paper `yaml:",inline"`

	// Chunks holds the split full text in document order.
	Chunks []string `json:"chunks,omitempty" yaml:"chunks,omitempty"`

	// Insight carries the model-extracted contributions, gaps, and comparisons.
	Insight *Insight `json:"insight,omitempty" yaml:"insight,omitempty"`
}

// ChunkMetadata is stored alongside every indexed chunk.
type ChunkMetadata struct {
	Title   string `json:"title" yaml:"title"`
	Authors string `json:"authors" yaml:"authors"`
	URL     string `json:"url" yaml:"url"`
}

// MetadataFor returns the index metadata for chunks of p. Authors are
// joined with ", ".
func MetadataFor(p Paper) ChunkMetadata {
	return ChunkMetadata{
		Title:   p.Title,
		Authors: strings.Join(p.Authors, ", "),
		URL:     p.URL,
	}
}

// PlanEntry is the outward view of a reading-plan item. Chunks are omitted.
type PlanEntry struct {
	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors" yaml:"authors"`
	Summary string   `json:"summary" yaml:"summary"`
	URL     string   `json:"url" yaml:"url"`
}

// PlanEntries projects a reading plan onto its outward view.
func PlanEntries(plan []ProcessedPaper) []PlanEntry {
	entries := make([]PlanEntry, 0, len(plan))
	for _, p := range plan {
		entries = append(entries, PlanEntry{
			Title:   p.Title,
			Authors: p.Authors,
			Summary: p.Summary,
			URL:     p.URL,
		})
	}
	return entries
}
