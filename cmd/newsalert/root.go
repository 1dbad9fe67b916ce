package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsalert/internal/app"
	"github.com/deusflow/newsalert/internal/config"
	"github.com/deusflow/newsalert/internal/logger"
	"github.com/deusflow/newsalert/internal/notify"
	"github.com/deusflow/newsalert/internal/retry"
	"github.com/deusflow/newsalert/internal/scraper"
	"github.com/deusflow/newsalert/internal/storage"
)

var (
	// debug overrides DEBUG from the environment.
	debug bool

	rootCmd = &cobra.Command{
		Use:          "newsalert",
		Short:        "Securities news keyword alerts",
		Long:         `Watches the realtime securities news listing and sends a Slack alert for every new article matching a keyword.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(checkCommand())
	rootCmd.AddCommand(keywordsCommand())
}

// loadConfig reads configuration and installs the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if debug {
		cfg.Debug = true
	}
	logger.Init(cfg.Debug)
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	var store *storage.Store
	err := retry.WithRetry(ctx, retry.Startup, "open store", func() error {
		var err error
		store, err = storage.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("store ready", "driver", cfg.DBDriver)
	return store, nil
}

// newChecker wires the pipeline for cfg on top of store.
func newChecker(cfg *config.Config, store *storage.Store) (*app.Checker, *notify.Notifier, error) {
	selectors, err := scraper.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		return nil, nil, err
	}

	client, err := scraper.NewClient(cfg.ScraperOptions(selectors))
	if err != nil {
		return nil, nil, fmt.Errorf("create scraper: %w", err)
	}

	notifier := notify.New(cfg.WebhookURL, cfg.RequestTimeout, cfg.EnableErrorNotifications)
	if !notifier.Configured() {
		logger.Warn("SLACK_WEBHOOK_URL not set, alerts will only be stored")
	}

	checker := app.NewChecker(store, client, notifier, cfg.Window(), app.Options{
		AllowedSources:      cfg.AllowedSources,
		MaxPages:            cfg.MaxPages,
		SimilarityThreshold: cfg.SimilarityThreshold,
	})
	return checker, notifier, nil
}
