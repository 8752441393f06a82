package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helio/keyword-mapper/internal/config"
	"github.com/helio/keyword-mapper/internal/logger"
	"github.com/helio/keyword-mapper/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the streaming HTTP server",
	Long:  `Start an HTTP server that runs market-map searches and streams progress over Server-Sent Events.`,
	RunE:  runServe,
}

var (
	servePort  int
	serveDebug bool
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from PORT env var, else 8080)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	log, err := logger.New(true, serveDebug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p, cleanup, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	return server.New(p, cfg.Port, log).Start()
}
