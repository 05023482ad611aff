// Package render groups the output formats for positioned diagrams.
//
// # Overview
//
// Every renderer takes the same input, the nodes returned by
// [layout.Layout] together with the diagram edges, and never fails on a
// structurally valid plan: an edge whose endpoint is unknown is simply not
// drawn.
//
//   - [drawio]: mxGraph XML with one swimlane per architectural layer,
//     provider-specific icons, and share links for the hosted editor
//   - [excalidraw]: an Excalidraw scene of shapes, bound labels and arrows
//   - [nodelink]: Graphviz DOT and in-process SVG
//
// A typical flow:
//
//	nodes := layout.Layout(d.Nodes, d.Edges, layout.DefaultOptions())
//	doc := drawio.Render(nodes, d.Edges, drawio.Options{Provider: plan.ProviderAWS})
//	scene := excalidraw.Render(nodes, d.Edges, excalidraw.Options{})
//	link := drawio.EditorURL(doc, drawio.LinkOptions{})
//
// [layout.Layout]: github.com/harishkotra/SketchStack/pkg/layout.Layout
// [drawio]: github.com/harishkotra/SketchStack/pkg/render/drawio
// [excalidraw]: github.com/harishkotra/SketchStack/pkg/render/excalidraw
// [nodelink]: github.com/harishkotra/SketchStack/pkg/render/nodelink
package render
