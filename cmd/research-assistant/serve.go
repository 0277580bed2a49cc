// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/server"
	"github.com/pdiddy/research-assistant/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the research workflow over HTTP",
	Long: `Serve exposes POST /start-research and POST /ask-question, plus /healthz
and Prometheus /metrics. Sessions live in memory and are lost on restart.
Interrupt to shut down gracefully.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	c := cfg
	overrideString(cmd, "addr", &c.Server.Addr)

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

	srv := server.New(p, d.gen, session.NewStore(), c.QA.K, logger.Named("server"))
	return srv.Run(ctx, c.Server.Addr)
}
