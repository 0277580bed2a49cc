// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/qa"
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Answer a question from an indexed collection",
	Long: `Ask retrieves the chunks most similar to the question from a collection
built by "research" and asks the model to answer using only those chunks. When
nothing is retrieved the model is not called.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("collection", "", "collection name (default from config)")
	askCmd.Flags().Int("k", 0, "number of chunks to retrieve (default from config)")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}

	c := cfg
	overrideString(cmd, "collection", &c.Index.Collection)
	overrideInt(cmd, "k", &c.QA.K)

	ctx := cmd.Context()
	d, err := newDeps(ctx, c)
	if err != nil {
		return err
	}
	defer d.Close()

	col, err := d.store.GetCollection(ctx, c.Index.Collection, d.embedder)
	if err != nil {
		return fmt.Errorf("collection %q: %w", c.Index.Collection, err)
	}

	answer, err := qa.Answer(ctx, col, d.gen, question, c.QA.K)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, answer)
	return nil
}
