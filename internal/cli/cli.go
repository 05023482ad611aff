package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harishkotra/SketchStack/pkg/buildinfo"
	"github.com/harishkotra/SketchStack/pkg/cache"
	"github.com/harishkotra/SketchStack/pkg/config"
	"github.com/harishkotra/SketchStack/pkg/integrations/mcp"
	"github.com/harishkotra/SketchStack/pkg/llm"
	"github.com/harishkotra/SketchStack/pkg/pipeline"
	"github.com/harishkotra/SketchStack/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sketchstack"

	// llmCachePrefix namespaces model replies in a shared cache.
	llmCachePrefix = "llm:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the TOML file read by every command.
	ConfigPath string

	// Model replaces the configured Ollama client when set.
	Model llm.Client

	// Out receives command output. Nil means stdout.
	Out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		ConfigPath: config.DefaultFile,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "SketchStack turns system descriptions into architecture diagrams",
		Long: `SketchStack asks a local language model to extract an architecture plan from a
plain-language description, then lays it out in swimlanes and renders it as a
draw.io document and an Excalidraw scene.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", c.ConfigPath, "config file")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.refineCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.sessionsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// newRunner builds a pipeline runner from cfg. The returned func releases
// the session store and the response cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, func(), error) {
	store, err := newSessionStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	respCache, err := newResponseCache(ctx, cfg, noCache)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	model := c.Model
	if model == nil {
		model = llm.NewOllama(llm.OllamaConfig{
			BaseURL:     cfg.Ollama.BaseURL,
			Model:       cfg.Ollama.Model,
			Temperature: cfg.Ollama.Temperature,
			MaxRetries:  cfg.Ollama.MaxRetries,
			Timeout:     cfg.Ollama.Timeout.Duration,
			Logger:      c.Logger,
		})
	}
	model = llm.NewCachedClient(model, respCache, cfg.Cache.TTL.Duration, cfg.Ollama.Model, c.Logger)

	runner := pipeline.NewRunner(model, store, c.Logger, pipelineOptions(cfg))
	cleanup := func() {
		if err := runner.Close(); err != nil {
			c.Logger.Warn("close session store", "err", err)
		}
		_ = respCache.Close()
	}
	return runner, cleanup, nil
}

func pipelineOptions(cfg config.Config) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Layout = cfg.LayoutOptions()
	opts.MaxRepairAttempts = cfg.Validation.MaxRepairAttempts
	opts.SessionTTL = cfg.Session.TTL.Duration
	opts.DefaultProvider = cfg.DefaultProvider()
	opts.Model = cfg.Ollama.Model
	return opts
}

func newSessionStore(ctx context.Context, cfg config.Config) (session.Store, error) {
	s := cfg.Session
	switch s.Backend {
	case config.BackendFile:
		dir := s.Dir
		if dir == "" {
			base, err := dataDir()
			if err != nil {
				return nil, fmt.Errorf("session dir: %w", err)
			}
			dir = filepath.Join(base, "sessions")
		}
		return session.NewFileStore(dir)
	case config.BackendRedis:
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:        s.RedisAddr,
			TTL:         s.TTL.Duration,
			MaxSessions: s.MaxSessions,
		})
	case config.BackendMongo:
		return session.NewMongoStore(ctx, session.MongoConfig{
			URI:         s.MongoURI,
			Database:    s.MongoDatabase,
			TTL:         s.TTL.Duration,
			MaxSessions: s.MaxSessions,
		})
	default:
		return session.NewMemoryStore(s.TTL.Duration, s.MaxSessions), nil
	}
}

func newResponseCache(ctx context.Context, cfg config.Config, disabled bool) (cache.Cache, error) {
	if disabled {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendFile:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr})
		if err != nil {
			return nil, err
		}
		return cache.Prefixed(rc, appName+":"+llmCachePrefix), nil
	default:
		return cache.NewNullCache(), nil
	}
}

// newMCPClients returns lazily started clients for the two editor servers.
// Nothing is spawned until the first tool call.
func (c *CLI) newMCPClients(cfg config.Config) (*mcp.DrawIO, *mcp.Excalidraw) {
	conf := func(m config.MCP) mcp.Config {
		return mcp.Config{
			Command:    m.Command,
			Args:       m.Args,
			Timeout:    m.Timeout.Duration,
			MaxRetries: m.MaxRetries,
			Logger:     c.Logger,
		}
	}
	return mcp.NewDrawIO(conf(cfg.MCP), nil), mcp.NewExcalidraw(conf(cfg.Excalidraw), nil)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sketchstack/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns ~/.local/share/sketchstack or its XDG override.
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats splits a comma-separated format list. Empty means the two
// editor documents.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDrawio, pipeline.FormatExcalidraw}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if f == formatPlan {
			continue
		}
		if err := pipeline.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}
