package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/corpsite/internal/cache"
	"github.com/jonathan/corpsite/internal/config"
	"github.com/jonathan/corpsite/internal/jobs"
	"github.com/jonathan/corpsite/internal/logging"
	"github.com/jonathan/corpsite/internal/metrics"
	"github.com/jonathan/corpsite/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port       int
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the site server",
		Long:  `Start an HTTP server that serves the localized pages, the jobs API, the sitemap and metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			logger, err := logging.NewLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			store, err := cache.New(cfg.CacheURL)
			if err != nil {
				return fmt.Errorf("failed to connect to cache: %w", err)
			}
			defer store.Close()
			checkCache(cmd.Context(), store, logger)

			reg := metrics.NewRegistry()
			client := jobs.NewClient(jobs.ClientConfig{
				URL:        cfg.JobsAPIURL,
				Revalidate: cfg.Revalidate(),
				Timeout:    cfg.JobsTimeout.Std(),
				Cache:      store,
				Logger:     logger,
				Metrics:    reg,
				Production: cfg.Production,
			})
			if cfg.JobsAPIURL == "" {
				logger.Warn("jobs_api_url_not_set", "effect", "careers page lists no postings")
			}

			srv, err := server.New(server.Options{
				Config:  cfg,
				Jobs:    client,
				Logger:  logger,
				Metrics: reg,
			})
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "Port to listen on (overrides config and PORT)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	return cmd
}

// checkCache pings the shared cache once at startup. An unreachable cache
// is not fatal; every lookup just misses until it comes back.
func checkCache(ctx context.Context, store cache.Store, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Warn("cache_unreachable", "err", err, "effect", "job board responses are not shared")
	}
}
