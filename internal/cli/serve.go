package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/sitetrack/internal/mcp"
	"github.com/rpggio/sitetrack/internal/transport"
	"github.com/rpggio/sitetrack/internal/watch"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var (
		mode string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the command surface over MCP (stdio or HTTP) and JSON-RPC",
		Long: `Serve the project tracker.

In stdio mode the MCP protocol runs over stdin/stdout. In http mode the MCP
streamable transport is mounted on /mcp, plain JSON-RPC on /rpc and a health
check on /health.

Examples:
  sitetrack serve --transport stdio
  sitetrack serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if mode != "" {
				cfg.Transport.Mode = mode
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, closeLog := newLogger(cfg.Log.Level, cfg.Log.Path, cfg.Transport.Mode == "stdio")
			defer closeLog()

			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result := app.Load(ctx)
			logger.Info("project set ready", "source", result.Source, "count", result.Count)

			watcher := watch.New(app.Store, app.Notifier, watch.Config{
				Interval:   cfg.Deadlines.Interval,
				WindowDays: cfg.Deadlines.WindowDays,
				Logger:     logger,
			})
			go watcher.Run(ctx)

			server := mcp.NewServer(mcp.Config{
				Handler:       app.Handler,
				TransportMode: cfg.Transport.Mode,
				Version:       Version,
				Logger:        logger,
			})

			if cfg.Transport.Mode == "stdio" {
				return runStdio(ctx, logger, server)
			}
			return runHTTP(ctx, logger, server, app, fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
		},
	}
	cmd.Flags().StringVarP(&mode, "transport", "t", "", "Transport mode: stdio or http (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (default from config)")
	return cmd
}

func runStdio(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server) error {
	logger.Info("starting stdio transport")
	// Run blocks until stdin closes or ctx is cancelled.
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTP(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server, app *App, addr string) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := transport.NewServer(app.Handler, logger)
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/*", mcpHandler)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
