package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	sserrors "github.com/harishkotra/SketchStack/pkg/errors"
	"github.com/harishkotra/SketchStack/pkg/httputil"
	"github.com/harishkotra/SketchStack/pkg/observability"
)

// Defaults.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 2 * time.Second
	ClientVersion     = "1.0.0"
)

// ErrToolFailed is returned when a tool reports an error result.
var ErrToolFailed = errors.New("tool call failed")

// Dialer opens a started, uninitialized MCP client.
type Dialer func(ctx context.Context) (*client.Client, error)

// StdioDialer spawns command with args and speaks MCP over its stdio.
func StdioDialer(command string, env []string, args ...string) Dialer {
	return func(ctx context.Context) (*client.Client, error) {
		c, err := client.NewStdioMCPClient(command, env, args...)
		if err != nil {
			return nil, fmt.Errorf("start %s: %w", command, err)
		}
		return c, nil
	}
}

// Config configures a [Client].
type Config struct {
	// Name identifies the upstream in logs and metrics ("drawio").
	Name string
	// ClientName is sent to the server during initialization.
	ClientName string
	Command    string
	Args       []string
	Env        []string
	// Timeout bounds each tool call.
	Timeout    time.Duration
	MaxRetries int
	// RetryDelay is the constant pause between attempts.
	RetryDelay time.Duration
	Logger     *log.Logger
}

func (c *Config) defaults() {
	if c.ClientName == "" {
		c.ClientName = "sketchstack"
	}
	if c.Name == "" {
		c.Name = "mcp"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
}

// Client is a lazily connected MCP client. The server process is started
// on the first call and reused until a call fails at the transport level.
type Client struct {
	cfg  Config
	dial Dialer

	mu    sync.Mutex
	conn  *client.Client
	tools []string
}

// NewClient creates a client. A nil dial spawns cfg.Command over stdio.
func NewClient(cfg Config, dial Dialer) *Client {
	cfg.defaults()
	if dial == nil {
		dial = StdioDialer(cfg.Command, cfg.Env, cfg.Args...)
	}
	return &Client{cfg: cfg, dial: dial}
}

func (c *Client) connect(ctx context.Context) (*client.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}

	c.cfg.Logger.Info("starting MCP server", "server", c.cfg.Name, "command", c.cfg.Command)
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	init := mcp.InitializeRequest{}
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: c.cfg.ClientName, Version: ClientVersion}
	if _, err := conn.Initialize(ctx, init); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize %s: %w", c.cfg.Name, err)
	}

	if res, err := conn.ListTools(ctx, mcp.ListToolsRequest{}); err != nil {
		c.cfg.Logger.Warn("could not list tools", "server", c.cfg.Name, "err", err)
	} else {
		c.tools = c.tools[:0]
		for _, t := range res.Tools {
			c.tools = append(c.tools, t.Name)
		}
		c.cfg.Logger.Debug("connected", "server", c.cfg.Name, "tools", strings.Join(c.tools, ", "))
	}
	c.conn = conn
	return conn, nil
}

func (c *Client) reset(conn *client.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == conn && conn != nil {
		_ = conn.Close()
		c.conn = nil
	}
}

// Tools returns the tool names the server advertised on connect.
func (c *Client) Tools(ctx context.Context) ([]string, error) {
	if _, err := c.connect(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.tools...), nil
}

// Call invokes a tool with retries. Every failure is retried after a
// constant delay; when attempts run out the error is UPSTREAM_TIMEOUT or
// UPSTREAM_UNAVAILABLE and reports the attempt count.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	var (
		attempts int
		result   *mcp.CallToolResult
	)
	err := httputil.RetryConstant(ctx, c.cfg.MaxRetries, c.cfg.RetryDelay, func() error {
		attempts++
		res, err := c.callOnce(ctx, name, args)
		if err != nil {
			c.cfg.Logger.Warn("tool call failed", "server", c.cfg.Name, "tool", name,
				"attempt", attempts, "max", c.cfg.MaxRetries, "err", err)
			if ctx.Err() != nil {
				return err
			}
			return httputil.Retryable(err)
		}
		result = res
		return nil
	})
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	code := sserrors.ErrCodeUpstreamUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		code = sserrors.ErrCodeUpstreamTimeout
	}
	return nil, sserrors.Wrap(code, err, "MCP %s failed after %d attempts", name, attempts)
}

func (c *Client) callOnce(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	hooks := observability.Upstream()
	hooks.OnRequest(ctx, c.cfg.Name, name)
	start := time.Now()

	conn, err := c.connect(ctx)
	if err != nil {
		hooks.OnError(ctx, c.cfg.Name, name, err)
		return nil, err
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := conn.CallTool(ctx, req)
	if err != nil {
		hooks.OnError(ctx, c.cfg.Name, name, err)
		c.reset(conn)
		return nil, err
	}
	hooks.OnResponse(ctx, c.cfg.Name, name, 0, time.Since(start))
	if res.IsError {
		err := fmt.Errorf("%w: %s", ErrToolFailed, Text(res))
		hooks.OnError(ctx, c.cfg.Name, name, err)
		return nil, err
	}
	return res, nil
}

// Close stops the server process if one is running.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Text returns the first text content of a tool result, or "" if there is
// none.
func Text(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	for _, content := range res.Content {
		switch tc := content.(type) {
		case mcp.TextContent:
			return tc.Text
		case *mcp.TextContent:
			return tc.Text
		}
	}
	return ""
}
