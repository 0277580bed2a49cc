// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/qa"
	"github.com/pdiddy/research-assistant/internal/report"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Run the full workflow: search, download, plan, and index",
	Long: `Research searches for papers on a topic, downloads and chunks each PDF,
ranks the papers into a reading plan, and indexes every chunk into the local
vector store under the configured collection name. The collection replaces any
previous one with the same name.

The reading plan is printed as a table, or written to --output as YAML or JSON.
With --interactive, questions are read from stdin and answered from the new
collection until an empty line or EOF.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("query", "", "free-text research topic (or pass it as arguments)")
	researchCmd.Flags().String("source", "", "arxiv or semantic_scholar (default from config)")
	researchCmd.Flags().Int("max-results", 0, "number of papers to fetch (default from config)")
	researchCmd.Flags().String("strategy", "", "reading-plan strategy: model or heuristic (default from config)")
	researchCmd.Flags().String("collection", "", "collection name (default from config)")
	researchCmd.Flags().String("output", "", "write the reading plan to this file (.yaml or .json)")
	researchCmd.Flags().String("format", "", "output format: yaml, json, or table (default table, or by --output extension)")
	researchCmd.Flags().BoolP("interactive", "i", false, "answer questions from stdin after indexing")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := queryFrom(cmd, args)
	if query == "" {
		return fmt.Errorf("provide a query with --query or as arguments")
	}

	c := cfg
	overrideString(cmd, "source", &c.Search.Source)
	overrideInt(cmd, "max-results", &c.Search.MaxResults)
	overrideString(cmd, "collection", &c.Index.Collection)
	if cmd.Flags().Changed("strategy") {
		s, _ := cmd.Flags().GetString("strategy")
		c.Plan.Strategy = types.Strategy(s)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if output != "" && formatFlag == "" {
		format = report.FormatForPath(output)
	}

	ctx := cmd.Context()
	d, err := newDeps(ctx, c)
	if err != nil {
		return err
	}
	defer d.Close()

	p, err := d.newPipeline(c)
	if err != nil {
		return err
	}

	st, err := p.Run(ctx, query, c.Search.Source)
	if err != nil {
		if errors.Is(err, types.ErrNoResults) {
			fmt.Fprintf(os.Stderr, "No reading plan produced (%s).\n", st.Halt)
		}
		return err
	}

	plan := report.NewPlan(query, st.Source, p.Planner.Name(), c.Index.Collection, st.ReadingPlan, time.Now())
	if output != "" {
		if err := report.WriteFile(output, plan, format); err != nil {
			return err
		}
		logger.Info("wrote reading plan", zap.String("path", output), zap.Int("papers", len(plan.Papers)))
	} else if err := report.Write(os.Stdout, plan, format); err != nil {
		return err
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		return askLoop(ctx, st.Collection, d.gen, c.QA.K, os.Stdin, os.Stdout)
	}
	return nil
}

// askLoop answers one question per input line until a blank line or EOF.
func askLoop(ctx context.Context, r qa.Retriever, gen llm.Generator, k int, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nQuestion (blank to quit): ")
		if !sc.Scan() {
			return sc.Err()
		}
		q := strings.TrimSpace(sc.Text())
		if q == "" {
			return nil
		}
		answer, err := qa.Answer(ctx, r, gen, q, k)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, answer)
	}
}
