package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	sserrors "github.com/harishkotra/SketchStack/pkg/errors"
	"github.com/harishkotra/SketchStack/pkg/httputil"
	"github.com/harishkotra/SketchStack/pkg/integrations"
)

// Ollama defaults.
const (
	DefaultBaseURL     = "http://127.0.0.1:11434"
	DefaultModel       = "llama3.2"
	DefaultTemperature = 0.3
	DefaultMaxRetries  = 3
	DefaultTimeout     = 120 * time.Second
	DefaultBackoff     = time.Second
)

// OllamaConfig configures [NewOllama]. Zero fields take the defaults above.
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxRetries  int
	Timeout     time.Duration
	// Backoff is the delay before the second attempt. It doubles after each
	// further failure.
	Backoff time.Duration
	Logger  *log.Logger
}

// OllamaClient calls Ollama's chat endpoint with JSON output forced.
type OllamaClient struct {
	http   *integrations.Client
	cfg    OllamaConfig
	logger *log.Logger
}

// NewOllama creates a client, filling zero config fields with defaults. A
// temperature of exactly 0 can still be requested per call through
// [ChatOptions].
func NewOllama(cfg OllamaConfig) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &OllamaClient{
		http:   integrations.NewClient("ollama", nil),
		cfg:    cfg,
		logger: logger,
	}
}

// Model returns the default model name.
func (c *OllamaClient) Model() string { return c.cfg.Model }

type chatRequest struct {
	Model    string      `json:"model"`
	Messages []Message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  chatOptions `json:"options"`
	Format   string      `json:"format"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message Message `json:"message"`
}

// Chat sends messages and returns the assistant reply. Each attempt is
// bounded by the configured timeout. Transient failures are retried; when
// every attempt fails the error is UPSTREAM_TIMEOUT or UPSTREAM_UNAVAILABLE
// and reports how many attempts were made.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	req := chatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Options:  chatOptions{Temperature: c.cfg.Temperature},
		Format:   "json",
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.Temperature != nil {
		req.Options.Temperature = *opts.Temperature
	}

	var (
		attempts int
		reply    string
	)
	err := httputil.Retry(ctx, c.cfg.MaxRetries, c.cfg.Backoff, func() error {
		attempts++
		actx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		var resp chatResponse
		if err := c.http.PostJSON(actx, "chat", c.cfg.BaseURL+"/api/chat", req, &resp); err != nil {
			c.logger.Warn("ollama attempt failed", "attempt", attempts, "max", c.cfg.MaxRetries, "err", err)
			return err
		}
		reply = resp.Message.Content
		return nil
	})
	if err == nil {
		c.logger.Debug("ollama reply", "model", req.Model, "chars", len(reply), "attempts", attempts)
		return reply, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	code := sserrors.ErrCodeUpstreamUnavailable
	if errors.Is(err, integrations.ErrTimeout) {
		code = sserrors.ErrCodeUpstreamTimeout
	}
	return "", sserrors.Wrap(code, err, "Ollama failed after %d attempts", attempts)
}

// Models lists the models installed on the server. It makes a single
// attempt and is meant for health checks.
func (c *OllamaClient) Models(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var resp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := c.http.Get(ctx, "tags", c.cfg.BaseURL+"/api/tags", &resp); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

var (
	_ Client      = (*OllamaClient)(nil)
	_ ModelLister = (*OllamaClient)(nil)
)
