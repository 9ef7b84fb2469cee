// Command mcp exposes transcript parsing and GPA calculation as MCP tools
// over stdio.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/WessleyAI/gradepoint/engine/transcript"
	"github.com/WessleyAI/gradepoint/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// stdout carries the protocol; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gate := transcript.Gate{Strict: cfg.StrictQuality, MinRatio: cfg.MinQualityRatio}
	parser := transcript.New(transcript.Config{Logger: logger, Gate: &gate})

	srv := mcp.NewServer(&mcp.Implementation{Name: "gradepoint", Version: cfg.AppVersion}, nil)
	registerTools(srv, parser)

	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("mcp server exited with error", "err", err)
		os.Exit(1)
	}
}
