package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harishkotra/SketchStack/internal/server"
	"github.com/harishkotra/SketchStack/pkg/integrations/mcp"
	"github.com/harishkotra/SketchStack/pkg/presets"
	"github.com/harishkotra/SketchStack/pkg/session"
)

// serveCommand creates the command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		port    int
		noMCP   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API on the configured port.

Routes are served at the root and under /api. Expired sessions are swept on
the interval set by session.cleanup_interval. The draw.io and Excalidraw MCP
servers are started on first use unless --no-mcp is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), port, noMCP, noCache)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config and PORT)")
	cmd.Flags().BoolVar(&noMCP, "no-mcp", false, "disable the draw.io and Excalidraw tool proxies")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the model response cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, port int, noMCP, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	runner, cleanup, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer cleanup()

	catalog, err := presets.Load(cfg.PresetsFile)
	if err != nil {
		return err
	}

	var (
		drawio     *mcp.DrawIO
		excalidraw *mcp.Excalidraw
	)
	if !noMCP {
		drawio, excalidraw = c.newMCPClients(cfg)
		defer drawio.Close()
		defer excalidraw.Close()
	}

	metrics := server.NewMetrics()
	metrics.Register()

	go sweepSessions(ctx, runner.Sessions, cfg.Session.CleanupInterval.Duration)

	srv := server.New(server.Options{
		Runner:     runner,
		Presets:    catalog,
		DrawIO:     drawio,
		Excalidraw: excalidraw,
		Config:     cfg,
		Logger:     c.Logger,
		Metrics:    metrics,
	})

	c.printInfo("SketchStack API on %s", StyleLink.Render(fmt.Sprintf("http://localhost:%d", cfg.Server.Port)))
	c.printDetail("model %s at %s · sessions %s · cache %s",
		cfg.Ollama.Model, cfg.Ollama.BaseURL, cfg.Session.Backend, cfg.Cache.Backend)
	return srv.Run(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
}

// sweepSessions removes expired sessions every interval until ctx ends.
func sweepSessions(ctx context.Context, store session.Store, interval time.Duration) {
	if interval <= 0 {
		return
	}
	logger := loggerFromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Cleanup(ctx)
			if err != nil {
				logger.Warn("session cleanup failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Info("removed expired sessions", "count", n)
			}
		}
	}
}
