// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/vectorstore"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List or delete indexed collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections and their chunk counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := vectorstore.Open(cfg.Index.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		counts, err := store.ListCollections(cmd.Context())
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			fmt.Fprintln(os.Stdout, "No collections.")
			return nil
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(os.Stdout, "%-30s  %d chunks\n", name, counts[name])
		}
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a collection and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := vectorstore.Open(cfg.Index.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteCollection(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("collection %q: %w", args[0], err)
		}
		fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	collectionsCmd.AddCommand(collectionsListCmd, collectionsDeleteCmd)
	rootCmd.AddCommand(collectionsCmd)
}
