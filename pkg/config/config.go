// Package config loads SketchStack settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the TOML file, environment
// variables. A missing file is not an error.
//
//	cfg, err := config.Load("sketchstack.toml")
//	if err != nil {
//	    return err
//	}
//	opts := cfg.LayoutOptions()
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	sserrors "github.com/harishkotra/SketchStack/pkg/errors"
	"github.com/harishkotra/SketchStack/pkg/layout"
	"github.com/harishkotra/SketchStack/pkg/plan"
)

// DefaultFile is the config file read when --config is not given.
const DefaultFile = "sketchstack.toml"

// Session backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config is the full application configuration.
type Config struct {
	Server      Server     `toml:"server"`
	Ollama      Ollama     `toml:"ollama"`
	MCP         MCP        `toml:"mcp"`
	Excalidraw  MCP        `toml:"excalidraw"`
	Layout      Layout     `toml:"layout"`
	Validation  Validation `toml:"validation"`
	Session     Session    `toml:"session"`
	Cache       Cache      `toml:"cache"`
	Defaults    Defaults   `toml:"defaults"`
	PresetsFile string     `toml:"presets_file"`
}

// Server configures the HTTP API.
type Server struct {
	Port int  `toml:"port"`
	CORS CORS `toml:"cors"`
}

// CORS configures cross-origin headers.
type CORS struct {
	Origin  string   `toml:"origin"`
	Methods []string `toml:"methods"`
}

// Ollama configures the language model endpoint.
type Ollama struct {
	BaseURL     string   `toml:"base_url"`
	Model       string   `toml:"model"`
	Temperature float64  `toml:"temperature"`
	MaxRetries  int      `toml:"max_retries"`
	Timeout     Duration `toml:"timeout"`
}

// MCP configures a stdio tool server.
type MCP struct {
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
}

// Layout mirrors [layout.Options] without the ordering strategy.
type Layout struct {
	NodeWidth         float64 `toml:"node_width"`
	NodeHeight        float64 `toml:"node_height"`
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
	LayerGap          float64 `toml:"layer_gap"`
	StartX            float64 `toml:"start_x"`
	StartY            float64 `toml:"start_y"`
	Orientation       string  `toml:"orientation"`
	Ranking           string  `toml:"ranking"`
}

// Validation configures the repair loop.
type Validation struct {
	MaxRepairAttempts int `toml:"max_repair_attempts"`
}

// Session configures the session store.
type Session struct {
	Backend         string   `toml:"backend"`
	TTL             Duration `toml:"ttl"`
	MaxSessions     int      `toml:"max_sessions"`
	CleanupInterval Duration `toml:"cleanup_interval"`
	Dir             string   `toml:"dir"`
	RedisAddr       string   `toml:"redis_addr"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
}

// Cache configures the LLM response cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// Defaults holds request defaults.
type Defaults struct {
	Provider string `toml:"provider"`
}

// Duration decodes TOML strings such as "30s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	lo := layout.DefaultOptions()
	return Config{
		Server: Server{
			Port: 3000,
			CORS: CORS{Origin: "*", Methods: []string{"GET", "POST"}},
		},
		Ollama: Ollama{
			BaseURL:     "http://127.0.0.1:11434",
			Model:       "llama3.2",
			Temperature: 0.3,
			MaxRetries:  3,
			Timeout:     Duration{120 * time.Second},
		},
		MCP: MCP{
			Command:    "npx",
			Args:       []string{"@drawio/mcp"},
			Timeout:    Duration{30 * time.Second},
			MaxRetries: 2,
		},
		Excalidraw: MCP{
			Command:    "npx",
			Args:       []string{"excalidraw-mcp"},
			Timeout:    Duration{30 * time.Second},
			MaxRetries: 2,
		},
		Layout: Layout{
			NodeWidth:         lo.NodeWidth,
			NodeHeight:        lo.NodeHeight,
			HorizontalSpacing: lo.HorizontalSpacing,
			VerticalSpacing:   lo.VerticalSpacing,
			LayerGap:          lo.LayerGap,
			StartX:            lo.StartX,
			StartY:            lo.StartY,
			Orientation:       string(lo.Orientation),
			Ranking:           string(lo.Ranking),
		},
		Validation: Validation{MaxRepairAttempts: plan.DefaultMaxRepairAttempts},
		Session: Session{
			Backend:         BackendMemory,
			TTL:             Duration{24 * time.Hour},
			MaxSessions:     1000,
			CleanupInterval: Duration{10 * time.Minute},
			MongoDatabase:   "sketchstack",
		},
		Cache: Cache{
			Backend: BackendNone,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Defaults: Defaults{Provider: string(plan.ProviderNeutral)},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file yields the defaults. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	strs := []struct {
		env string
		dst *string
	}{
		{"OLLAMA_URL", &c.Ollama.BaseURL},
		{"OLLAMA_MODEL", &c.Ollama.Model},
		{"SKETCHSTACK_SESSION_BACKEND", &c.Session.Backend},
		{"REDIS_ADDR", &c.Session.RedisAddr},
		{"MONGO_URI", &c.Session.MongoURI},
		{"SKETCHSTACK_CACHE_DIR", &c.Cache.Dir},
		{"SKETCHSTACK_PRESETS_FILE", &c.PresetsFile},
	}
	for _, s := range strs {
		if v, ok := lookup(s.env); ok && v != "" {
			*s.dst = v
		}
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = c.Session.RedisAddr
	}
	return nil
}

// Validate rejects unknown backends, providers and non-positive sizes.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Ollama.BaseURL == "" || c.Ollama.Model == "" {
		return errors.New("ollama.base_url and ollama.model are required")
	}
	if err := sserrors.ValidateURL(c.Ollama.BaseURL); err != nil {
		return fmt.Errorf("ollama.base_url: %w", err)
	}
	if c.Ollama.MaxRetries < 1 || c.MCP.MaxRetries < 1 || c.Excalidraw.MaxRetries < 1 {
		return errors.New("max_retries must be at least 1")
	}
	if c.Ollama.Timeout.Duration <= 0 || c.MCP.Timeout.Duration <= 0 || c.Excalidraw.Timeout.Duration <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.Validation.MaxRepairAttempts < 0 {
		return fmt.Errorf("validation.max_repair_attempts %d is negative", c.Validation.MaxRepairAttempts)
	}

	l := c.Layout
	for name, v := range map[string]float64{
		"node_width":  l.NodeWidth,
		"node_height": l.NodeHeight,
	} {
		if v <= 0 {
			return fmt.Errorf("layout.%s must be positive", name)
		}
	}
	if l.HorizontalSpacing < 0 || l.VerticalSpacing < 0 || l.LayerGap < 0 {
		return errors.New("layout spacing must not be negative")
	}
	if !layout.ValidOrientation(l.Orientation) {
		return fmt.Errorf("layout.orientation %q: want TB or LR", l.Orientation)
	}
	if !layout.ValidRanking(l.Ranking) {
		return fmt.Errorf("layout.ranking %q: want layer or flow", l.Ranking)
	}

	switch c.Session.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Session.RedisAddr == "" {
			return errors.New("session.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Session.MongoURI == "" {
			return errors.New("session.mongo_uri is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Session.TTL.Duration <= 0 || c.Session.MaxSessions <= 0 {
		return errors.New("session.ttl and session.max_sessions must be positive")
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if _, ok := plan.ParseProvider(c.Defaults.Provider); !ok {
		return fmt.Errorf("unknown default provider %q", c.Defaults.Provider)
	}
	return nil
}

// LayoutOptions converts the layout section for [layout.Layout].
func (c Config) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.NodeWidth = c.Layout.NodeWidth
	opts.NodeHeight = c.Layout.NodeHeight
	opts.HorizontalSpacing = c.Layout.HorizontalSpacing
	opts.VerticalSpacing = c.Layout.VerticalSpacing
	opts.LayerGap = c.Layout.LayerGap
	opts.StartX = c.Layout.StartX
	opts.StartY = c.Layout.StartY
	opts.Orientation = layout.Orientation(c.Layout.Orientation)
	opts.Ranking = layout.Ranking(c.Layout.Ranking)
	return opts
}

// DefaultProvider returns the parsed default provider.
func (c Config) DefaultProvider() plan.Provider {
	p, _ := plan.ParseProvider(c.Defaults.Provider)
	return p
}
