// Package drawio renders a positioned diagram as an mxGraph XML document,
// the native format of the draw.io editor.
//
// # Document Structure
//
// The document holds the two reserved cells (id 0 is the root, id 1 the
// default parent) followed by:
//
//   - one swimlane container per active layer, sized to enclose its nodes
//     with 20px padding (30px above, to leave room for the title bar)
//   - one cell per node, positioned relative to its swimlane; cloud
//     provider icons get a second caption cell underneath
//   - one connector cell per edge whose endpoints both exist
//
// Cells are numbered from 2 in emission order without gaps. Edges that
// reference unknown nodes are dropped silently.
//
// # Edge Routing
//
// Connector anchors are chosen from the endpoints' rank and order:
//
//   - same rank, neighbouring order or the same node: side to side
//   - same rank, further apart: a loop below (moving forward) or above
//     (moving backward) so the connector does not cut through nodes in
//     between
//   - different ranks: straight across the rank gap
//
// In [layout.LeftToRight] drawings the anchors are transposed.
//
// # Sharing
//
// [EditorURL] and [ViewerURL] build links that open a document directly in
// the hosted draw.io editor and viewer.
package drawio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/layout"
	"github.com/harishkotra/SketchStack/pkg/plan"
)

// Options configures rendering.
type Options struct {
	// Provider selects the icon table. Empty means neutral.
	Provider plan.Provider
	// Orientation must match the one used for layout. Empty means
	// top-to-bottom.
	Orientation layout.Orientation
}

const (
	cloudIconSize = 60

	lanePadX      = 20
	lanePadTop    = 30
	lanePadBottom = 20

	laneStyle    = "swimlane;startSize=25;fillColor=#f8fafc;strokeColor=#e2e8f0;fontColor=#64748b;fontStyle=1;fontSize=12;rounded=1;shadow=0;opacity=100;spacingLeft=10;"
	captionStyle = "text;html=1;align=center;verticalAlign=top;resizable=0;points=[];autosize=1;strokeColor=none;fillColor=none;fontSize=10;fontColor=#475569;"
	edgeStyle    = "edgeStyle=orthogonalEdgeStyle;rounded=1;orthogonalLoop=1;jettySize=auto;html=1;curved=1;strokeWidth=2;fontSize=10;fontColor=#475569;strokeColor=#64748b;labelBackgroundColor=#f8fafc;"

	header = `<mxGraphModel dx="1422" dy="794" grid="1" gridSize="10" guides="1" tooltips="1" connect="1" arrows="1" fold="1" page="1" pageScale="1" pageWidth="1600" pageHeight="1200" math="0" shadow="1">
  <root>
    <mxCell id="0"/>
    <mxCell id="1" parent="0"/>
`
	footer = `
  </root>
</mxGraphModel>`
)

// Render builds the mxGraph document for nodes and edges. It never fails:
// edges with an unknown endpoint are omitted.
func Render(nodes []diagram.PositionedNode, edges []diagram.Edge, opts Options) string {
	provider := opts.Provider
	if provider == "" {
		provider = plan.ProviderNeutral
	}

	r := &builder{nextID: 2}
	nodes = uniqueNodes(nodes)

	lanes := make(map[diagram.Layer]box)
	laneIDs := make(map[diagram.Layer]int)
	for _, l := range activeLayers(nodes) {
		b := laneBox(nodes, l)
		lanes[l] = b
		laneIDs[l] = r.id()
		r.cell(laneIDs[l], esc(string(l))+" Layer", laneStyle, `vertex="1" parent="1"`, geometry(b.x, b.y, b.w, b.h))
	}

	cellIDs := make(map[string]int, len(nodes))
	for _, n := range nodes {
		l := layerOf(n)
		lane := lanes[l]
		parent := fmt.Sprintf(`vertex="1" parent="%d"`, laneIDs[l])

		icon, cloud := IconStyle(n.Type, provider)
		w, h := n.Width, n.Height
		if cloud {
			w, h = cloudIconSize, cloudIconSize
		}
		relX, relY := n.X-lane.x, n.Y-lane.y

		cellIDs[n.ID] = r.id()
		r.cell(cellIDs[n.ID], esc(n.Label), nodeStyle(icon), parent, geometry(relX, relY, w, h))
		if cloud {
			r.cell(r.id(), esc(n.Label), captionStyle, parent, geometry(relX-10, relY+h+2, w+20, 20))
		}
	}

	routes := topToBottomRoutes
	if opts.Orientation == layout.LeftToRight {
		routes = leftToRightRoutes
	}
	index := diagram.Index(nodes)
	for _, e := range edges {
		si, okS := index[e.From]
		ti, okT := index[e.To]
		if !okS || !okT {
			continue
		}
		style := edgeStyle + routes.pick(nodes[si], nodes[ti])
		attrs := fmt.Sprintf(`edge="1" parent="1" source="%d" target="%d"`, cellIDs[e.From], cellIDs[e.To])
		r.cell(r.id(), esc(e.Caption()), style, attrs, `<mxGeometry relative="1" as="geometry"/>`)
	}

	return header + strings.Join(r.cells, "\n") + footer
}

type builder struct {
	nextID int
	cells  []string
}

func (b *builder) id() int {
	id := b.nextID
	b.nextID++
	return id
}

func (b *builder) cell(id int, value, style, attrs, geom string) {
	b.cells = append(b.cells, fmt.Sprintf("    <mxCell id=\"%d\" value=\"%s\" style=\"%s\" %s>\n      %s\n    </mxCell>",
		id, value, style, attrs, geom))
}

func geometry(x, y, w, h float64) string {
	return fmt.Sprintf(`<mxGeometry x="%s" y="%s" width="%s" height="%s" as="geometry"/>`, num(x), num(y), num(w), num(h))
}

// num formats coordinates without trailing zeros: 60, 150.5.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string { return xmlEscaper.Replace(s) }

type box struct{ x, y, w, h float64 }

func laneBox(nodes []diagram.PositionedNode, l diagram.Layer) box {
	first := true
	var minX, minY, maxX, maxY float64
	for _, n := range nodes {
		if layerOf(n) != l {
			continue
		}
		if first {
			minX, minY, maxX, maxY = n.X, n.Y, n.X+n.Width, n.Y+n.Height
			first = false
			continue
		}
		minX, minY = min(minX, n.X), min(minY, n.Y)
		maxX, maxY = max(maxX, n.X+n.Width), max(maxY, n.Y+n.Height)
	}
	minX -= lanePadX
	minY -= lanePadTop
	maxX += lanePadX
	maxY += lanePadBottom
	return box{minX, minY, maxX - minX, maxY - minY}
}

func layerOf(n diagram.PositionedNode) diagram.Layer {
	if n.Layer.Valid() {
		return n.Layer
	}
	return diagram.LayerOf(n.Type)
}

func activeLayers(nodes []diagram.PositionedNode) []diagram.Layer {
	present := make(map[diagram.Layer]bool)
	for _, n := range nodes {
		present[layerOf(n)] = true
	}
	var out []diagram.Layer
	for _, l := range diagram.Layers {
		if present[l] {
			out = append(out, l)
		}
	}
	return out
}

func uniqueNodes(nodes []diagram.PositionedNode) []diagram.PositionedNode {
	index := diagram.Index(nodes)
	if len(index) == len(nodes) {
		return nodes
	}
	out := make([]diagram.PositionedNode, 0, len(index))
	for i, n := range nodes {
		if index[n.ID] == i {
			out = append(out, n)
		}
	}
	return out
}

// routeTable holds connector anchors for each routing case.
type routeTable struct {
	neighbourForward, neighbourBackward string
	loopForward, loopBackward           string
	rankForward, rankBackward           string
}

var topToBottomRoutes = routeTable{
	neighbourForward:  "exitX=1;exitY=0.5;entryX=0;entryY=0.5;",
	neighbourBackward: "exitX=0;exitY=0.5;entryX=1;entryY=0.5;",
	loopForward:       "exitX=0.5;exitY=1;entryX=0.5;entryY=1;",
	loopBackward:      "exitX=0.5;exitY=0;entryX=0.5;entryY=0;",
	rankForward:       "exitX=0.5;exitY=1;entryX=0.5;entryY=0;",
	rankBackward:      "exitX=0.5;exitY=0;entryX=0.5;entryY=1;",
}

var leftToRightRoutes = routeTable{
	neighbourForward:  "exitX=0.5;exitY=1;entryX=0.5;entryY=0;",
	neighbourBackward: "exitX=0.5;exitY=0;entryX=0.5;entryY=1;",
	loopForward:       "exitX=1;exitY=0.5;entryX=1;entryY=0.5;",
	loopBackward:      "exitX=0;exitY=0.5;entryX=0;entryY=0.5;",
	rankForward:       "exitX=1;exitY=0.5;entryX=0;entryY=0.5;",
	rankBackward:      "exitX=0;exitY=0.5;entryX=1;entryY=0.5;",
}

func (t routeTable) pick(src, dst diagram.PositionedNode) string {
	if src.Rank != dst.Rank {
		if src.Rank < dst.Rank {
			return t.rankForward
		}
		return t.rankBackward
	}
	forward := src.Order < dst.Order
	// a self loop has gap 0 and is drawn side to side like a neighbour
	if gap := dst.Order - src.Order; gap >= -1 && gap <= 1 {
		if forward {
			return t.neighbourForward
		}
		return t.neighbourBackward
	}
	if forward {
		return t.loopForward
	}
	return t.loopBackward
}
