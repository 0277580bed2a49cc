// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search a bibliographic source for candidate papers",
	Long: `Search queries arXiv or Semantic Scholar for papers matching a topic and
prints title, authors, and URL for each hit in relevance order. Nothing is
downloaded.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text research topic (or pass it as arguments)")
	searchCmd.Flags().String("source", "", "arxiv or semantic_scholar (default from config)")
	searchCmd.Flags().Int("max-results", 0, "number of results to request (default from config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := queryFrom(cmd, args)
	if query == "" {
		return fmt.Errorf("provide a query with --query or as arguments")
	}

	c := cfg
	overrideString(cmd, "source", &c.Search.Source)
	overrideInt(cmd, "max-results", &c.Search.MaxResults)

	s := search.NewSearcher(httputil.NewClient(c.HTTP), c)
	papers, err := s.Search(cmd.Context(), query, c.Search.Source)
	if err != nil {
		return err
	}
	logger.Debug("search complete", zap.String("source", c.Search.Source), zap.Int("results", len(papers)))

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(papers, os.Stdout)
	}
	search.FormatTable(papers, os.Stdout)
	return nil
}

// queryFrom returns --query, or the positional arguments joined by spaces.
func queryFrom(cmd *cobra.Command, args []string) string {
	q, _ := cmd.Flags().GetString("query")
	if strings.TrimSpace(q) == "" {
		q = strings.Join(args, " ")
	}
	return strings.TrimSpace(q)
}
