// Package nodelink renders a diagram plan as a Graphviz node-link drawing.
//
// # Overview
//
// This is an alternative to the draw.io and Excalidraw documents for cases
// where a static image is wanted without opening an editor: the server's
// SVG export and the CLI's --format svg use it.
//
// # Usage
//
// Convert a plan to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(d, nodelink.Options{Glyphs: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes are grouped into one cluster per architectural layer so the
// drawing keeps the same tiers as the swimlane document. Graphviz does its
// own layout; positions from [layout.Layout] are not used here.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which runs Graphviz in
// process through WebAssembly, so no system installation is required.
//
// [layout.Layout]: github.com/harishkotra/SketchStack/pkg/layout.Layout
package nodelink
