// Command parse-worker serves transcript parsing and GPA calculation over
// NATS request/reply.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/gradepoint/engine/transcript"
	"github.com/WessleyAI/gradepoint/internal/config"
	"github.com/WessleyAI/gradepoint/pkg/metrics"
)

func main() {
	metricsAddr := flag.String("metrics", ":9102", "address to serve /metrics on (empty to disable)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, *metricsAddr, logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, metricsAddr string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	url := cfg.NATSURL
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("gradepoint-parse-worker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	gate := transcript.Gate{Strict: cfg.StrictQuality, MinRatio: cfg.MinQualityRatio}
	parser := transcript.New(transcript.Config{Logger: logger, Gate: &gate})

	m := metrics.NewService(metrics.New())
	if cfg.MetricsEnabled && metricsAddr != "" {
		srv := m.Registry().ServeAsync(metricsAddr, logger)
		defer srv.Close()
	}

	w := newWorker(nc, parser, cfg.RateLimitUpload, m, logger)
	subs, err := w.subscribe()
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	logger.Info("parse worker listening", "nats", url, "subjects", len(subs))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}
