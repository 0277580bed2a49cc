package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func testSearcher(client *http.Client) *Searcher {
	cfg := types.DefaultConfig()
	cfg.HTTP.UserAgent = "test/0.1"
	return NewSearcher(client, cfg)
}

// --- Source parsing ---

func TestParseSource(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"arxiv", SourceArxiv, false},
		{"ArXiv", SourceArxiv, false},
		{"", SourceArxiv, false},
		{"semantic_scholar", SourceSemanticScholar, false},
		{"semanticscholar", SourceSemanticScholar, false},
		{"s2", SourceSemanticScholar, false},
		{"pubmed", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSource(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSource(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSource(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	s := testSearcher(http.DefaultClient)
	_, err := s.Search(context.Background(), "   ", "arxiv")
	assert.Error(t, err)
}

func TestSearchUnknownSource(t *testing.T) {
	s := testSearcher(http.DefaultClient)
	_, err := s.Search(context.Background(), "attention", "pubmed")
	assert.ErrorContains(t, err, "unknown source")
}

// --- arXiv backend ---

const sampleArxivSearchXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All
      You Need</title>
    <summary>  We propose the Transformer.  </summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1810.04805v2</id>
    <title>BERT: Pre-training of Deep Bidirectional Transformers</title>
    <summary>We introduce BERT.</summary>
    <author><name>Jacob Devlin</name></author>
  </entry>
</feed>`

func TestArxivBackendSearch(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sampleArxivSearchXML)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	papers, err := testSearcher(ts.Client()).Search(context.Background(), "attention mechanisms", "arxiv")
	require.NoError(t, err)
	require.Len(t, papers, 2)

	q := capturedReq.URL.Query()
	assert.Equal(t, "all:attention mechanisms", q.Get("search_query"))
	assert.Equal(t, "0", q.Get("start"))
	assert.Equal(t, "5", q.Get("max_results"))
	assert.Equal(t, "test/0.1", capturedReq.Header.Get("User-Agent"))

	p := papers[0]
	assert.Equal(t, "Attention Is All You Need", p.Title)
	assert.Equal(t, "We propose the Transformer.", p.Summary)
	assert.Equal(t, "http://arxiv.org/abs/1706.03762v7", p.URL)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, p.Authors)
	assert.Equal(t, SourceArxiv, p.Source)
	assert.Equal(t, "BERT: Pre-training of Deep Bidirectional Transformers", papers[1].Title)
}

func TestArxivBackendEmptyFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<feed xmlns="http://www.w3.org/2005/Atom"></feed>`)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	papers, err := testSearcher(ts.Client()).Search(context.Background(), "nothing", "arxiv")
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestSearcherArxivBaseURL(t *testing.T) {
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, sampleArxivSearchXML)
	}))
	defer ts.Close()

	s := testSearcher(ts.Client())
	s.ArxivBaseURL = ts.URL + "/api/query"
	papers, err := s.Search(context.Background(), "transformers", "arxiv")
	require.NoError(t, err)
	assert.Len(t, papers, 2)
	assert.Equal(t, "/api/query", path)
}

func TestArxivBackendUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}},
		{"malformed xml", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "<feed><entry>")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			old := arxivAPIBase
			arxivAPIBase = ts.URL
			defer func() { arxivAPIBase = old }()

			_, err := testSearcher(ts.Client()).Search(context.Background(), "attention", "arxiv")
			if !errors.Is(err, types.ErrUpstream) {
				t.Errorf("err = %v, want ErrUpstream", err)
			}
		})
	}
}

func TestArxivBackendTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	_, err := testSearcher(http.DefaultClient).Search(context.Background(), "attention", "arxiv")
	assert.ErrorIs(t, err, types.ErrUpstream)
}

func TestBuildArxivQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single term", "transformers", "all:transformers"},
		{"multiple terms", "attention  mechanisms", "all:attention+mechanisms"},
		{"escaped", "c++ graphs", "all:c%2B%2B+graphs"},
		{"empty", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildArxivQuery(tt.query); got != tt.want {
				t.Errorf("buildArxivQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

// --- Output formatting ---

func TestFormatTable(t *testing.T) {
	papers := []types.Paper{
		{Title: "Paper A", Authors: []string{"Smith"}, URL: "http://arxiv.org/abs/1"},
		{Title: "Paper B", Authors: []string{"Jones", "Doe"}, URL: "http://arxiv.org/abs/2"},
	}

	var buf bytes.Buffer
	FormatTable(papers, &buf)
	s := buf.String()

	assert.Contains(t, s, "Paper A")
	assert.Contains(t, s, "Jones et al.")
	assert.Contains(t, s, "2 results")
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	if !strings.Contains(buf.String(), "No results") {
		t.Error("empty output should say 'No results'")
	}
}

func TestFormatJSON(t *testing.T) {
	papers := []types.Paper{{Title: "Paper A", URL: "u", Source: "arxiv"}}

	var buf bytes.Buffer
	require.NoError(t, FormatJSON(papers, &buf))

	var parsed []types.Paper
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "Paper A", parsed[0].Title)
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Attention Is All You Need", "attention is all you need"},
		{"attention is all you need!", "attention is all you need"},
		{"  BERT:  Pre-training  ", "bert pretraining"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeTitle(tt.input); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
