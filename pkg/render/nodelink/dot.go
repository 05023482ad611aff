package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/layout"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Orientation maps to the DOT rankdir. Empty means top-to-bottom.
	Orientation layout.Orientation
	// Detailed adds the component type under each label.
	Detailed bool
	// Glyphs prefixes labels with the component type's emoji.
	Glyphs bool
}

// layerFill colors each swimlane cluster.
var layerFill = map[diagram.Layer]string{
	diagram.LayerSecurity:      "#fef2f2",
	diagram.LayerApplication:   "#eff6ff",
	diagram.LayerData:          "#f0fdf4",
	diagram.LayerInfra:         "#faf5ff",
	diagram.LayerObservability: "#fffbeb",
}

// ToDOT converts a diagram plan to Graphviz DOT. Nodes are grouped into one
// cluster per active layer, in layer order; edges with an unknown endpoint
// are omitted. The result can be rendered with [RenderSVG].
func ToDOT(d diagram.Plan, opts Options) string {
	rankdir := layout.TopToBottom
	if opts.Orientation == layout.LeftToRight {
		rankdir = layout.LeftToRight
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=Helvetica, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=Helvetica, fontsize=10, color=\"#64748b\", fontcolor=\"#475569\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")

	known := make(map[string]bool, len(d.Nodes))
	byLayer := make(map[diagram.Layer][]diagram.Node)
	for _, n := range d.Nodes {
		if known[n.ID] {
			continue
		}
		known[n.ID] = true
		l := n.EffectiveLayer()
		byLayer[l] = append(byLayer[l], n)
	}

	for i, l := range diagram.ActiveLayers(d.Nodes) {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", string(l)+" Layer")
		fmt.Fprintf(&buf, "    style=\"rounded,filled\";\n    color=\"#e2e8f0\";\n    fillcolor=%q;\n", layerFill[l])
		for _, n := range byLayer[l] {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", n.ID, fmtLabel(n, opts))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		if !known[e.From] || !known[e.To] {
			continue
		}
		if caption := e.Caption(); caption != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, caption)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n diagram.Node, opts Options) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if opts.Glyphs {
		label = diagram.Glyph(n.Type) + " " + label
	}
	if opts.Detailed {
		label += "\n" + strings.ReplaceAll(string(n.Type), "_", " ")
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with its
// container instead of using Graphviz's point-based size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
