// Command maps-mcp-stdio serves the Maps tools over standard input/output.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"maps-mcp/internal/config"
	"maps-mcp/internal/logging"
	"maps-mcp/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("MAPS_MCP_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	// stdout carries the protocol; logs go to stderr.
	logger := logging.New(os.Stderr, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.RunStdio(ctx, cfg, logger, nil); err != nil && ctx.Err() == nil {
		logger.Error("stdio server", "error", err)
		os.Exit(1)
	}
}
