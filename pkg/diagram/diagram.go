// Package diagram defines the graph form of an architecture plan: nodes,
// edges, and the layer each node belongs to.
//
// A [Plan] is derived from a [plan.ArchitecturePlan] by [Derive] and is never
// edited by hand. Every component becomes one [Node] whose layer is
// [LayerOf] its type, and every relationship becomes one [Edge], copied
// verbatim. Dangling relationships survive derivation; the renderers drop
// them.
//
// Layout results are expressed as [PositionedNode] values, which carry
// top-left coordinates and the node box size.
package diagram

import (
	"strings"

	"github.com/harishkotra/SketchStack/pkg/plan"
)

// Node is a diagram vertex derived from one component.
type Node struct {
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Type      plan.ComponentType `json:"type"`
	CloudIcon string             `json:"cloud_icon"`
	Layer     Layer              `json:"layer"`
	X         *float64           `json:"x,omitempty"`
	Y         *float64           `json:"y,omitempty"`
}

// EffectiveLayer returns n.Layer when it is one of the fixed layers, and
// otherwise the layer of n's type.
func (n Node) EffectiveLayer() Layer {
	if n.Layer.Valid() {
		return n.Layer
	}
	return LayerOf(n.Type)
}

// Edge is a directed connection between two nodes. From and To may name
// nodes that do not exist.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Label    string `json:"label"`
	Protocol string `json:"protocol"`
}

// Caption returns the connector text: the label followed by the protocol in
// brackets, trimmed. Either part may be empty.
func (e Edge) Caption() string {
	s := e.Label
	if e.Protocol != "" {
		s += " [" + e.Protocol + "]"
	}
	return strings.TrimSpace(s)
}

// Plan is the node/edge graph ready for layout.
type Plan struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Derive maps every component to a node and every relationship to an edge,
// preserving input order. It does not check referential integrity.
func Derive(p plan.ArchitecturePlan) Plan {
	d := Plan{
		Nodes: make([]Node, 0, len(p.Components)),
		Edges: make([]Edge, 0, len(p.Relationships)),
	}
	for _, c := range p.Components {
		d.Nodes = append(d.Nodes, Node{
			ID:    c.ID,
			Label: c.Name,
			Type:  c.Type,
			Layer: LayerOf(c.Type),
		})
	}
	for _, r := range p.Relationships {
		d.Edges = append(d.Edges, Edge{
			From:     r.From,
			To:       r.To,
			Label:    r.Label,
			Protocol: r.Protocol,
		})
	}
	return d
}

// PositionedNode is a node with layout coordinates. X and Y are the top-left
// corner of the node box.
type PositionedNode struct {
	ID     string             `json:"id"`
	Label  string             `json:"label"`
	Type   plan.ComponentType `json:"type"`
	Layer  Layer              `json:"layer"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
	Width  float64            `json:"width"`
	Height float64            `json:"height"`
	Rank   int                `json:"rank"`
	Order  int                `json:"order"`
}

// Center returns the midpoint of the node box.
func (p PositionedNode) Center() (float64, float64) {
	return p.X + p.Width/2, p.Y + p.Height/2
}

// Index maps node ids to positions in nodes. The first occurrence of a
// duplicated id wins.
func Index(nodes []PositionedNode) map[string]int {
	m := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, dup := m[n.ID]; !dup {
			m[n.ID] = i
		}
	}
	return m
}
