// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-radar/internal/history"
	"github.com/pdiddy/topic-radar/internal/research"
	"github.com/pdiddy/topic-radar/internal/search"
	"github.com/pdiddy/topic-radar/internal/server"
	"github.com/pdiddy/topic-radar/internal/summary"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the topic-radar web API",
	Long: `Serve starts the HTTP server exposing the history REST API and the SSE
research stream at /api/stream?topic=... . A .env file in the working
directory is loaded before configuration is read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Optional; a missing .env is not an error.
		_ = godotenv.Load()

		cfg, err := loadAppConfig()
		if err != nil {
			return err
		}

		if host, _ := cmd.Flags().GetString("host"); host != "" {
			cfg.Server.Host = host
		}
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}

		debug, _ := cmd.Flags().GetBool("debug")
		var logger *zap.Logger
		if debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer logger.Sync()

		store, err := history.NewStore(cfg.History)
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		defer store.Close()

		searchClient, summaryClient := newClients(cfg)

		researcher := research.New(
			search.NewOrchestrator(searchClient, cfg.Search),
			summary.New(summaryClient, cfg.Summary),
			store,
			cfg.Search.MaxResults,
			logger,
		)

		srv := server.NewServer(researcher, store, &cfg.Server, logger)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-stop:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen address (default from config)")
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
	serveCmd.Flags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
}
