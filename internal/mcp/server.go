package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Config contains server configuration.
type Config struct {
	Handler       *Handler
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "sitetrack",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(recoverMiddleware(logger))
	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Handler)

	logger.Debug("mcp server configured", "transport", cfg.TransportMode, "tools", len(buildToolCatalog()))
	return server
}
