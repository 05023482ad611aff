package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names.
const (
	ToolOpenDrawioXML       = "open_drawio_xml"
	ToolExportToExcalidraw  = "export_to_excalidraw"
	defaultDrawioClientName = "sketchstack"
	excalidrawClientName    = "sketchstack-excalidraw"
)

// OpenOptions controls how draw.io shows a diagram.
type OpenOptions struct {
	Lightbox bool
	// Dark is "auto", "true" or "false". Empty means "auto".
	Dark string
}

// DrawIO talks to the draw.io MCP server.
type DrawIO struct {
	*Client
}

// NewDrawIO creates a draw.io client.
func NewDrawIO(cfg Config, dial Dialer) *DrawIO {
	if cfg.Name == "" {
		cfg.Name = "drawio"
	}
	if cfg.ClientName == "" {
		cfg.ClientName = defaultDrawioClientName
	}
	return &DrawIO{Client: NewClient(cfg, dial)}
}

// OpenXML opens an mxGraph document in the draw.io editor.
func (d *DrawIO) OpenXML(ctx context.Context, xml string, opts OpenOptions) (*mcp.CallToolResult, error) {
	dark := opts.Dark
	if dark == "" {
		dark = "auto"
	}
	return d.Call(ctx, ToolOpenDrawioXML, map[string]any{
		"content":  xml,
		"lightbox": opts.Lightbox,
		"dark":     dark,
	})
}

// Excalidraw talks to the Excalidraw MCP server.
type Excalidraw struct {
	*Client
}

// NewExcalidraw creates an Excalidraw client.
func NewExcalidraw(cfg Config, dial Dialer) *Excalidraw {
	if cfg.Name == "" {
		cfg.Name = "excalidraw"
	}
	if cfg.ClientName == "" {
		cfg.ClientName = excalidrawClientName
	}
	return &Excalidraw{Client: NewClient(cfg, dial)}
}

// ErrNoShareURL is returned when the export tool answers without text.
var ErrNoShareURL = errors.New("excalidraw export returned no url")

// Share uploads a scene and returns its shareable URL.
func (e *Excalidraw) Share(ctx context.Context, scene json.RawMessage) (string, error) {
	res, err := e.Call(ctx, ToolExportToExcalidraw, map[string]any{"json": string(scene)})
	if err != nil {
		return "", err
	}
	url := Text(res)
	if url == "" {
		return "", ErrNoShareURL
	}
	return url, nil
}
