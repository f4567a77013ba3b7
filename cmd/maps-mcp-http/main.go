// Command maps-mcp-http starts the MCP HTTP bridge.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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
	logger := logging.New(os.Stderr, cfg.Debug)

	if cfg.Token == "" {
		logger.Warn("MCP_TOKEN not set; /mcp is open. Set MCP_TOKEN to secure.")
	}
	if cfg.APIKey == "" && os.Getenv("GOOGLE_MAPS_API_KEY") == "" {
		logger.Info("GOOGLE_MAPS_API_KEY not set; clients must supply a key on initialize.")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(cfg, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		certFile := os.Getenv("TLS_CERT_FILE")
		keyFile := os.Getenv("TLS_KEY_FILE")
		if certFile != "" && keyFile != "" {
			logger.Info("starting MCP HTTP bridge with TLS", "addr", srv.Addr)
			errCh <- srv.ListenAndServeTLS(certFile, keyFile)
			return
		}
		logger.Info("starting MCP HTTP bridge", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}
}
