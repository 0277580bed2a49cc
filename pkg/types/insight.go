// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Summary is a structured summary of one paper produced by the model.
// Title, URL, and Authors are backfilled from the Paper when the model
// omits them.
type Summary struct {
	Title        string   `json:"title" yaml:"title"`
	URL          string   `json:"url" yaml:"url"`
	Authors      []string `json:"authors" yaml:"authors"`
	Introduction string   `json:"introduction" yaml:"introduction"`
	Methods      string   `json:"methods" yaml:"methods"`
	Conclusion   string   `json:"conclusion" yaml:"conclusion"`
}

// Insight holds the three lists the model extracts from a Summary.
type Insight struct {
	// Contributions lists what the paper adds to the field.
	Contributions []string `json:"contributions" yaml:"contributions"`

	// Gaps lists limitations or open problems the paper leaves.
	Gaps []string `json:"gaps" yaml:"gaps"`

	// Comparisons lists relationships to prior work.
	Comparisons []string `json:"comparisons" yaml:"comparisons"`
}

// InsightRecord is a Summary enriched with its Insight.
type InsightRecord struct {
	Summary `yaml:",inline"`
	Insight `yaml:",inline"`
}
