// Package server exposes the diagram pipeline over HTTP.
//
// Every route is served both at the root and under /api, so the bundled web
// client and direct API users share one handler tree:
//
//	POST /generate              description -> new session and diagram
//	POST /refine                instruction -> updated session and diagram
//	GET  /export/{format}       ?sessionId= -> document download or viewer link
//	GET  /presets               preset ids and names
//	GET  /presets/{name}        one preset
//	GET  /config                styles, providers, layers and default model
//	POST /tools/call            proxy a tool call to the draw.io MCP server
//	POST /mcp                   same as /tools/call
//	POST /open-in-drawio        open a session's document in draw.io
//	POST /excalidraw/share      upload a session's scene, return its link
//	GET  /health
//	GET  /metrics               Prometheus exposition
//
// Errors are JSON objects of the form {"error", "code", "details"}.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harishkotra/SketchStack/pkg/config"
	sserrors "github.com/harishkotra/SketchStack/pkg/errors"
	"github.com/harishkotra/SketchStack/pkg/integrations/mcp"
	"github.com/harishkotra/SketchStack/pkg/pipeline"
	"github.com/harishkotra/SketchStack/pkg/presets"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 5 << 20

const shutdownTimeout = 10 * time.Second

// Options are the collaborators of a [Server]. Runner is required.
type Options struct {
	Runner  *pipeline.Runner
	Presets *presets.Catalog

	// DrawIO and Excalidraw may be nil; their routes then answer 502.
	DrawIO     *mcp.DrawIO
	Excalidraw *mcp.Excalidraw

	Config  config.Config
	Logger  *log.Logger
	Metrics *Metrics
}

// Server is the HTTP API.
type Server struct {
	runner     *pipeline.Runner
	presets    *presets.Catalog
	drawio     *mcp.DrawIO
	excalidraw *mcp.Excalidraw
	cfg        config.Config
	logger     *log.Logger
	metrics    *Metrics
}

// New creates a server. Missing presets default to the built-in catalog and
// missing metrics to a fresh registry.
func New(opts Options) *Server {
	if opts.Presets == nil {
		opts.Presets = presets.Builtin()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	return &Server{
		runner:     opts.Runner,
		presets:    opts.Presets,
		drawio:     opts.DrawIO,
		excalidraw: opts.Excalidraw,
		cfg:        opts.Config,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors(s.cfg.Server.CORS))
	r.Use(s.metrics.instrument)
	r.Use(middleware.RequestSize(MaxBodyBytes))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", s.routes)
	r.Group(s.routes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, sserrors.ErrCodeNotFound, "Not found", r.URL.Path)
	})
	return r
}

func (s *Server) routes(r chi.Router) {
	r.Post("/generate", s.handleGenerate)
	r.Post("/refine", s.handleRefine)
	r.Get("/export/{format}", s.handleExport)
	r.Get("/presets", s.handlePresets)
	r.Get("/presets/{name}", s.handlePreset)
	r.Get("/config", s.handleConfig)
	r.Post("/tools/call", s.handleToolCall)
	r.Post("/mcp", s.handleToolCall)
	r.Post("/open-in-drawio", s.handleOpenInDrawio)
	r.Post("/excalidraw/share", s.handleExcalidrawShare)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
