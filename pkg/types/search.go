// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-assistant pipeline:
// paper records produced by search, processed papers produced by the
// materializer, summaries and insights produced by the model, and the
// configuration consumed by every stage.
package types

// Paper is a bibliographic record returned by a search backend. The record
// is immutable once produced; later stages wrap it rather than edit it.
type Paper struct {
	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// URL locates the paper. For arXiv this is the abstract page
	// (e.g. "http://arxiv.org/abs/2301.07041v1").
	URL string `json:"url" yaml:"url"`

	// Source identifies which backend found this record (e.g. "arxiv", "semantic_scholar").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}
