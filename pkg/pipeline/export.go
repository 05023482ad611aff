package pipeline

import (
	"context"
	"fmt"
	"strings"

	sserrors "github.com/harishkotra/SketchStack/pkg/errors"
	"github.com/harishkotra/SketchStack/pkg/layout"
	"github.com/harishkotra/SketchStack/pkg/render/drawio"
	"github.com/harishkotra/SketchStack/pkg/render/nodelink"
	"github.com/harishkotra/SketchStack/pkg/session"
)

// Export formats.
const (
	FormatXML        = "xml"
	FormatDrawio     = "drawio"
	FormatExcalidraw = "excalidraw"
	FormatJSON       = "json"
	FormatDOT        = "dot"
	FormatSVG        = "svg"
	FormatPNG        = "png"
	FormatPDF        = "pdf"
)

// ValidFormats is the set of supported export formats.
var ValidFormats = map[string]bool{
	FormatXML:        true,
	FormatDrawio:     true,
	FormatExcalidraw: true,
	FormatJSON:       true,
	FormatDOT:        true,
	FormatSVG:        true,
	FormatPNG:        true,
	FormatPDF:        true,
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return sserrors.New(sserrors.ErrCodeUnsupportedFormat, "Unsupported format: %s", format)
	}
	return nil
}

// Exported is one exported artifact. Either Body or Link is set.
type Exported struct {
	ContentType string
	Filename    string
	Body        []byte

	// Link points at the editor for formats that cannot be produced
	// locally.
	Link *ViewerLink
}

// ViewerLink tells the client where to export an image itself.
type ViewerLink struct {
	Message   string `json:"message"`
	DrawioURL string `json:"drawioUrl"`
	ViewerURL string `json:"viewerUrl"`
}

// Export produces a session's diagram in format. PNG and PDF need the
// draw.io editor and come back as a [ViewerLink]; SVG is the Graphviz
// node-link rendering of the diagram plan.
func Export(ctx context.Context, sess *session.Session, format string, orientation layout.Orientation) (*Exported, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	switch format {
	case FormatXML, FormatDrawio:
		return &Exported{
			ContentType: "application/xml",
			Filename:    "architecture.drawio",
			Body:        []byte(sess.Document),
		}, nil

	case FormatExcalidraw, FormatJSON:
		if len(sess.Scene) == 0 {
			return nil, sserrors.New(sserrors.ErrCodeNotFound, "session has no Excalidraw scene")
		}
		return &Exported{
			ContentType: "application/json",
			Filename:    "architecture.excalidraw",
			Body:        sess.Scene,
		}, nil

	case FormatDOT:
		return &Exported{
			ContentType: "text/vnd.graphviz",
			Filename:    "architecture.dot",
			Body:        []byte(nodelink.ToDOT(sess.DiagramPlan, nodelink.Options{Orientation: orientation})),
		}, nil

	case FormatSVG:
		dot := nodelink.ToDOT(sess.DiagramPlan, nodelink.Options{Orientation: orientation, Detailed: true})
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, sserrors.Wrap(sserrors.ErrCodeInternal, err, "render svg")
		}
		return &Exported{
			ContentType: "image/svg+xml",
			Filename:    "architecture.svg",
			Body:        svg,
		}, nil

	default:
		upper := strings.ToUpper(format)
		return &Exported{Link: &ViewerLink{
			Message:   fmt.Sprintf("To export as %s, open the diagram in draw.io and use File → Export As → %s", upper, upper),
			DrawioURL: drawio.EditorURL(sess.Document, drawio.LinkOptions{}),
			ViewerURL: drawio.ViewerURL(sess.Document),
		}}, nil
	}
}
