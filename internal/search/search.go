// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries a bibliographic API and returns paper records.
// One source is queried per call; only the first page of results is read.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Source names accepted by NewBackend.
const (
	SourceArxiv           = "arxiv"
	SourceSemanticScholar = "semantic_scholar"
)

// Backend searches a single bibliographic API. Each backend (arXiv, Semantic
// Scholar) implements this interface.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error)
}

// ParseSource maps a user-supplied source name onto a canonical one.
// Unknown names are rejected.
func ParseSource(source string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", "arxiv":
		return SourceArxiv, nil
	case "semantic_scholar", "semanticscholar", "s2":
		return SourceSemanticScholar, nil
	default:
		return "", fmt.Errorf("unknown source %q: use arxiv or semantic_scholar", source)
	}
}

// Searcher resolves a source name to a backend and runs the query.
type Searcher struct {
	Client *http.Client
	HTTP   types.HTTPConfig
	Config types.SearchConfig

	// ArxivBaseURL overrides the arXiv endpoint when set.
	ArxivBaseURL string
}

// NewSearcher builds a Searcher from the runtime configuration.
func NewSearcher(client *http.Client, cfg types.Config) *Searcher {
	return &Searcher{Client: client, HTTP: cfg.HTTP, Config: cfg.Search}
}

// Backend returns the backend serving source.
func (s *Searcher) Backend(source string) (Backend, error) {
	name, err := ParseSource(source)
	if err != nil {
		return nil, err
	}
	switch name {
	case SourceSemanticScholar:
		return &SemanticScholarBackend{
			Client:     s.Client,
			APIKey:     s.Config.SemanticScholarAPIKey,
			UserAgent:  s.HTTP.UserAgent,
			MaxRetries: s.HTTP.MaxRetries,
		}, nil
	default:
		return &ArxivBackend{
			Client:     s.Client,
			UserAgent:  s.HTTP.UserAgent,
			MaxRetries: s.HTTP.MaxRetries,
			BaseURL:    s.ArxivBaseURL,
		}, nil
	}
}

// Search queries source for query and returns the records in the order the
// backend ranked them. Any transport, status, or decoding failure is
// reported as types.ErrUpstream.
func (s *Searcher) Search(ctx context.Context, query, source string) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty: provide a research topic")
	}
	b, err := s.Backend(source)
	if err != nil {
		return nil, err
	}
	maxResults := s.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	return b.Search(ctx, query, maxResults)
}

// NormalizeTitle returns a lowercased, punctuation-stripped version of the
// title with runs of whitespace collapsed.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FormatTable writes papers as a human-readable table to w.
func FormatTable(papers []types.Paper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %s\n", "Rank", "Title", "Authors", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, p := range papers {
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %s\n",
			i+1, truncate(p.Title, 60), formatAuthors(p.Authors), p.URL)
	}

	fmt.Fprintf(w, "\n%d results\n", len(papers))
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(papers []types.Paper, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(papers)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
