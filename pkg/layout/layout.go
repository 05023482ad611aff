// Package layout computes deterministic 2-D positions for a diagram using a
// layered (Sugiyama-style) drawing.
//
// # Algorithm
//
//  1. Ranking. By default every node is ranked by its architectural layer:
//     the rank is the node's index among the layers that have at least one
//     node. [RankFlow] keeps the layers in the same order but splits each
//     layer into consecutive ranks by longest path along the edges that stay
//     inside it, so a layer is always one contiguous band.
//  2. Ordering. Edges between different ranks are oriented downward,
//     edges spanning several ranks are subdivided with dummy nodes, and an
//     [Orderer] permutes each rank to reduce crossings. Edges inside a rank
//     and edges whose endpoints are unknown take no part.
//  3. Coordinates. Ranks advance along one axis with [Options.LayerGap]
//     between them; nodes within a rank are spaced along the other axis and
//     each rank is centered against the widest one. Node centers are
//     computed first and translated to top-left corners.
//
// Layout never fails. Duplicate node ids keep their first occurrence, and
// isolated nodes are placed like any other node of their rank. The same
// input always yields the same output.
package layout

import (
	"github.com/harishkotra/SketchStack/pkg/dag"
	"github.com/harishkotra/SketchStack/pkg/dag/transform"
	"github.com/harishkotra/SketchStack/pkg/diagram"
)

// Orientation is the direction in which ranks advance.
type Orientation string

const (
	// TopToBottom stacks ranks vertically, matching the swimlane renderer.
	TopToBottom Orientation = "TB"
	// LeftToRight places ranks in columns.
	LeftToRight Orientation = "LR"
)

// Ranking selects how nodes are assigned to ranks.
type Ranking string

const (
	// RankLayer ranks nodes by architectural layer.
	RankLayer Ranking = "layer"
	// RankFlow ranks nodes by layer, then by longest incoming path within
	// the layer.
	RankFlow Ranking = "flow"
)

// Options controls node size, spacing and the layout strategy.
type Options struct {
	NodeWidth  float64
	NodeHeight float64

	// HorizontalSpacing separates nodes within a rank in TopToBottom.
	HorizontalSpacing float64
	// VerticalSpacing separates nodes within a rank in LeftToRight.
	VerticalSpacing float64
	// LayerGap separates consecutive ranks.
	LayerGap float64

	StartX float64
	StartY float64

	Orientation Orientation
	Ranking     Ranking

	// Orderer defaults to Barycentric{}.
	Orderer Orderer
}

// DefaultOptions returns the standard node size and spacing.
func DefaultOptions() Options {
	return Options{
		NodeWidth:         160,
		NodeHeight:        80,
		HorizontalSpacing: 140,
		VerticalSpacing:   80,
		LayerGap:          140,
		StartX:            60,
		StartY:            60,
		Orientation:       TopToBottom,
		Ranking:           RankLayer,
	}
}

// ValidOrientation reports whether s names a supported orientation.
func ValidOrientation(s string) bool {
	return s == string(TopToBottom) || s == string(LeftToRight)
}

// ValidRanking reports whether s names a supported ranking.
func ValidRanking(s string) bool {
	return s == string(RankLayer) || s == string(RankFlow)
}

// Layout positions nodes. The result holds one entry per distinct node id,
// sorted by rank and then by order within the rank.
func Layout(nodes []diagram.Node, edges []diagram.Edge, opts Options) []diagram.PositionedNode {
	uniq := dedupe(nodes)
	if len(uniq) == 0 {
		return []diagram.PositionedNode{}
	}

	var ranks map[string]int
	if opts.Ranking == RankFlow {
		ranks = flowRanks(uniq, edges)
	} else {
		ranks = layerRanks(uniq)
	}

	g := orderingGraph(uniq, edges, ranks)
	orderer := opts.Orderer
	if orderer == nil {
		orderer = Barycentric{}
	}
	orders := orderer.OrderRows(g)

	return place(uniq, ranks, g, orders, opts)
}

func dedupe(nodes []diagram.Node) []diagram.Node {
	seen := make(map[string]bool, len(nodes))
	out := make([]diagram.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == "" || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		n.Layer = n.EffectiveLayer()
		out = append(out, n)
	}
	return out
}

func layerRanks(nodes []diagram.Node) map[string]int {
	index := make(map[diagram.Layer]int)
	for i, l := range diagram.ActiveLayers(nodes) {
		index[l] = i
	}
	ranks := make(map[string]int, len(nodes))
	for _, n := range nodes {
		ranks[n.ID] = index[n.Layer]
	}
	return ranks
}

// flowRanks keeps layers as contiguous bands in layer order and splits
// each band into sub-ranks by the longest path along edges inside the layer.
func flowRanks(nodes []diagram.Node, edges []diagram.Edge) map[string]int {
	layerOf := make(map[string]diagram.Layer, len(nodes))
	for _, n := range nodes {
		layerOf[n.ID] = n.Layer
	}

	ranks := make(map[string]int, len(nodes))
	base := 0
	for _, l := range diagram.ActiveLayers(nodes) {
		g := dag.New()
		for _, n := range nodes {
			if n.Layer == l {
				_ = g.AddNode(dag.Node{ID: n.ID})
			}
		}
		for _, e := range edges {
			if layerOf[e.From] != l || layerOf[e.To] != l || g.HasEdge(e.From, e.To) {
				continue
			}
			// self loops are rejected and ignored
			_ = g.AddEdge(dag.Edge{From: e.From, To: e.To})
		}
		transform.BreakCycles(g)
		transform.AssignLayers(g)

		depth := 0
		for _, n := range g.Nodes() {
			ranks[n.ID] = base + n.Row
			depth = max(depth, n.Row)
		}
		base += depth + 1
	}
	return ranks
}

// orderingGraph builds the graph the orderer works on: every edge between
// different ranks points downward, and long edges are subdivided.
func orderingGraph(nodes []diagram.Node, edges []diagram.Edge, ranks map[string]int) *dag.DAG {
	g := dag.New()
	for _, n := range nodes {
		_ = g.AddNode(dag.Node{ID: n.ID, Row: ranks[n.ID]})
	}
	for _, e := range edges {
		from, okF := ranks[e.From]
		to, okT := ranks[e.To]
		if !okF || !okT || from == to {
			continue
		}
		src, dst := e.From, e.To
		if from > to {
			src, dst = dst, src
		}
		if !g.HasEdge(src, dst) {
			_ = g.AddEdge(dag.Edge{From: src, To: dst})
		}
	}
	transform.Subdivide(g)
	return g
}

func place(nodes []diagram.Node, ranks map[string]int, g *dag.DAG, orders map[int][]string, opts Options) []diagram.PositionedNode {
	byID := make(map[string]diagram.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	// real nodes per rank, in final order
	rows := g.RowIDs()
	perRank := make(map[int][]diagram.Node, len(rows))
	widest := 0
	for _, r := range rows {
		for _, id := range orders[r] {
			if n, ok := byID[id]; ok && ranks[id] == r {
				perRank[r] = append(perRank[r], n)
			}
		}
		widest = max(widest, len(perRank[r]))
	}

	w, h := opts.NodeWidth, opts.NodeHeight
	lr := opts.Orientation == LeftToRight
	inRankStep := w + opts.HorizontalSpacing
	rankStep := h + opts.LayerGap
	if lr {
		inRankStep = h + opts.VerticalSpacing
		rankStep = w + opts.LayerGap
	}
	extent := func(n int) float64 {
		if n == 0 {
			return 0
		}
		size := w
		if lr {
			size = h
		}
		return float64(n)*size + float64(n-1)*(inRankStep-size)
	}

	out := make([]diagram.PositionedNode, 0, len(nodes))
	for _, r := range rows {
		row := perRank[r]
		offset := (extent(widest) - extent(len(row))) / 2
		for i, n := range row {
			var cx, cy float64
			if lr {
				cx = opts.StartX + float64(r)*rankStep + w/2
				cy = opts.StartY + offset + float64(i)*inRankStep + h/2
			} else {
				cx = opts.StartX + offset + float64(i)*inRankStep + w/2
				cy = opts.StartY + float64(r)*rankStep + h/2
			}
			out = append(out, diagram.PositionedNode{
				ID:     n.ID,
				Label:  n.Label,
				Type:   n.Type,
				Layer:  n.Layer,
				X:      cx - w/2,
				Y:      cy - h/2,
				Width:  w,
				Height: h,
				Rank:   r,
				Order:  i,
			})
		}
	}
	return out
}
