package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/deusflow/newsalert/internal/api"
	"github.com/deusflow/newsalert/internal/logger"
	"github.com/deusflow/newsalert/internal/metrics"
	"github.com/deusflow/newsalert/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the management API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	checker, notifier, err := newChecker(cfg, store)
	if err != nil {
		return err
	}

	logger.Info("running initial news check")
	checker.RunOnce(ctx)

	sched := scheduler.New(checker, cfg.CheckInterval, scheduler.DefaultMisfireGrace)
	if err := sched.Start(ctx); err != nil {
		return err
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	server := api.NewServer(store, checker, sched, api.Settings{
		CheckInterval:       cfg.CheckInterval,
		Window:              cfg.Window(),
		WebhookConfigured:   notifier.Configured(),
		AllowedSources:      cfg.AllowedSources,
		MaxPages:            cfg.MaxPages,
		SimilarityThreshold: cfg.SimilarityThreshold,
	}, metrics.Global)

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("management API listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var errs []error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			logger.Error("management API failed", "error", err)
			errs = append(errs, fmt.Errorf("serve api: %w", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown api: %w", err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
	}
	return errors.Join(errs...)
}
