package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"maps-mcp/internal/config"
	"maps-mcp/internal/credentials"
	"maps-mcp/internal/logging"
	"maps-mcp/internal/maps"
	"maps-mcp/internal/tools"
)

// NewMCPServer resolves the key from configuration and environment only and
// returns an MCP server with every tool registered. There is no initialize
// gate: the server is ready as soon as it is built.
func NewMCPServer(cfg config.Config, logger *slog.Logger) (*mcp.Server, error) {
	logger = logging.Component(logger, "stdio")
	key, source, err := credentials.ForStdio(cfg.APIKey).Resolve(credentials.Request{})
	if err != nil {
		return nil, err
	}
	reg, err := tools.New(maps.New(cfg.BaseURL, key, &http.Client{Timeout: cfg.Timeout}))
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)
	reg.Register(server)
	logger.Info("tools registered", "count", len(reg.List()), "key_source", source,
		"key", logging.Redact(key, cfg.Debug))
	return server, nil
}

// RunStdio serves the tools on transport until ctx is cancelled or the peer
// disconnects. A nil transport means standard input/output.
func RunStdio(ctx context.Context, cfg config.Config, logger *slog.Logger, transport mcp.Transport) error {
	server, err := NewMCPServer(cfg, logger)
	if err != nil {
		return err
	}
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}
	return server.Run(ctx, transport)
}
