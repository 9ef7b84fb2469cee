// Package main implements the gradepoint HTTP API: transcript upload,
// GPA calculation, health and metrics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WessleyAI/gradepoint/engine/transcript"
	"github.com/WessleyAI/gradepoint/internal/config"
	"github.com/WessleyAI/gradepoint/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gate := transcript.Gate{Strict: cfg.StrictQuality, MinRatio: cfg.MinQualityRatio}
	parser := transcript.New(transcript.Config{Logger: logger, Gate: &gate})

	api := newServer(cfg, parser, metrics.NewService(metrics.New()), logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"version", cfg.AppVersion,
			"strict_quality", cfg.StrictQuality,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
