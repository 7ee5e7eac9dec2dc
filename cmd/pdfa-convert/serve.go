// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfa-convert/internal/pdfa"
	"github.com/pdiddy/pdfa-convert/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the converter over HTTP",
	Long: `Serve starts an HTTP service:

  GET  /health              liveness check
  POST /api/v1/convert      PDF body in, PDF/A body out
                            (query: version, part, conformance, filename)
  POST /api/v1/inspect      PDF body in, JSON report out

When an API token is configured (server.api_token or .secrets/pdfa-api-token)
the /api routes require "Authorization: Bearer <token>".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conv, err := pdfa.New(cfg.Conversion, logger)
		if err != nil {
			return err
		}
		if cfg.Server.APIToken == "" {
			logger.Warn("no API token configured, /api routes are open")
		}
		srv := server.New(cfg.Server, conv, cfg.Conversion.Options, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
