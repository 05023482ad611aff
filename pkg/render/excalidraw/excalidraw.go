// Package excalidraw renders a positioned diagram as an Excalidraw scene.
//
// Each node becomes a shape (rectangle or ellipse, see [StyleOf]) with a
// text label bound inside it. Each edge whose endpoints both exist becomes
// an arrow from the center of one shape to the center of the other, bound to
// both, plus a floating text at the midpoint when the edge has a label.
// Edges with an unknown endpoint are dropped.
//
// Element ids and stroke seeds come from an [IDGenerator] and timestamps
// from a clock, so tests can inject a [Counter] and a fixed time and compare
// whole scenes.
package excalidraw

import (
	"time"

	"github.com/harishkotra/SketchStack/pkg/diagram"
)

// Scene is the top-level Excalidraw document.
type Scene struct {
	Type     string    `json:"type"`
	Version  int       `json:"version"`
	Source   string    `json:"source"`
	Elements []Element `json:"elements"`
	AppState AppState  `json:"appState"`
}

// AppState is the global view state stored with a scene.
type AppState struct {
	ViewBackgroundColor string `json:"viewBackgroundColor"`
	GridSize            int    `json:"gridSize"`
}

// Element is any scene element: *Shape, *Text or *Arrow.
type Element interface {
	ElementID() string
	ElementType() string
}

// Base holds the fields every element carries.
type Base struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	X               float64  `json:"x"`
	Y               float64  `json:"y"`
	Width           float64  `json:"width"`
	Height          float64  `json:"height"`
	Angle           float64  `json:"angle"`
	StrokeColor     string   `json:"strokeColor"`
	BackgroundColor string   `json:"backgroundColor"`
	FillStyle       string   `json:"fillStyle"`
	StrokeWidth     float64  `json:"strokeWidth"`
	StrokeStyle     string   `json:"strokeStyle"`
	Roughness       int      `json:"roughness"`
	Opacity         int      `json:"opacity"`
	GroupIDs        []string `json:"groupIds"`
	Seed            int      `json:"seed"`
	Version         int      `json:"version"`
	VersionNonce    int      `json:"versionNonce"`
	IsDeleted       bool     `json:"isDeleted"`
	Updated         int64    `json:"updated"`
}

func (b *Base) ElementID() string   { return b.ID }
func (b *Base) ElementType() string { return b.Type }

// Shape is a rectangle or ellipse.
type Shape struct {
	Base
	Roundness     Roundness  `json:"roundness"`
	BoundElements []BoundRef `json:"boundElements"`
}

// Roundness selects Excalidraw's corner rounding algorithm.
type Roundness struct {
	Type int `json:"type"`
}

// BoundRef points from a shape to an element bound to it.
type BoundRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Text is a label, either bound inside a shape (ContainerID set) or
// floating.
type Text struct {
	Base
	Text          string `json:"text"`
	FontSize      int    `json:"fontSize"`
	FontFamily    int    `json:"fontFamily"`
	TextAlign     string `json:"textAlign"`
	VerticalAlign string `json:"verticalAlign"`
	ContainerID   string `json:"containerId,omitempty"`
	OriginalText  string `json:"originalText,omitempty"`
}

// Arrow connects two shapes. Points are relative to (X, Y).
type Arrow struct {
	Base
	Points       [][2]float64 `json:"points"`
	StartBinding Binding      `json:"startBinding"`
	EndBinding   Binding      `json:"endBinding"`
	EndArrowhead string       `json:"endArrowhead"`
}

// Binding attaches an arrow end to a shape.
type Binding struct {
	ElementID string  `json:"elementId"`
	Focus     float64 `json:"focus"`
	Gap       float64 `json:"gap"`
}

// Options configures rendering.
type Options struct {
	// IDs defaults to a Random generator seeded from the clock.
	IDs IDGenerator
	// Now defaults to time.Now.
	Now func() time.Time
}

const (
	sceneSource     = "https://excalidraw.com"
	sceneVersion    = 2
	backgroundColor = "#ffffff"
	gridSize        = 20

	labelColor     = "#1e293b"
	arrowColor     = "#64748b"
	edgeLabelColor = "#475569"
)

// Render builds the scene for nodes and edges.
func Render(nodes []diagram.PositionedNode, edges []diagram.Edge, opts Options) Scene {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ids := opts.IDs
	if ids == nil {
		ids = NewRandom(uint64(now().UnixNano()))
	}
	r := &renderer{ids: ids, updated: now().UnixMilli()}

	elements := make([]Element, 0, 2*len(nodes)+2*len(edges))
	shapes := make(map[string]*Shape, len(nodes))
	for _, n := range nodes {
		if _, dup := shapes[n.ID]; dup {
			continue
		}
		shape, label := r.node(n)
		shapes[n.ID] = shape
		elements = append(elements, shape, label)
	}

	for _, e := range edges {
		from, okF := shapes[e.From]
		to, okT := shapes[e.To]
		if !okF || !okT {
			continue
		}
		arrow := r.arrow(from, to)
		elements = append(elements, arrow)
		if e.Label != "" {
			elements = append(elements, r.edgeLabel(arrow, e.Caption()))
		}
	}

	return Scene{
		Type:     "excalidraw",
		Version:  sceneVersion,
		Source:   sceneSource,
		Elements: elements,
		AppState: AppState{ViewBackgroundColor: backgroundColor, GridSize: gridSize},
	}
}

type renderer struct {
	ids     IDGenerator
	updated int64
}

func (r *renderer) base(typ string, x, y, w, h float64) Base {
	return Base{
		ID:          r.ids.NextID(),
		Type:        typ,
		X:           x,
		Y:           y,
		Width:       w,
		Height:      h,
		FillStyle:   "solid",
		StrokeWidth: 2,
		StrokeStyle: "solid",
		Roughness:   1,
		Opacity:     100,
		GroupIDs:    []string{},
		Seed:        r.ids.NextSeed(),
		Version:     1,
		IsDeleted:   false,
		Updated:     r.updated,
	}
}

func (r *renderer) node(n diagram.PositionedNode) (*Shape, *Text) {
	style := StyleOf(n.Type)

	shape := &Shape{
		Base:      r.base(string(style.Shape), n.X, n.Y, n.Width, n.Height),
		Roundness: Roundness{Type: 3},
	}
	shape.StrokeColor = style.Stroke
	shape.BackgroundColor = style.Background

	label := &Text{
		Base:          r.base("text", n.X+10, n.Y+20, n.Width-20, 20),
		Text:          n.Label,
		FontSize:      16,
		FontFamily:    1,
		TextAlign:     "center",
		VerticalAlign: "middle",
		ContainerID:   shape.ID,
		OriginalText:  n.Label,
	}
	label.StrokeColor = labelColor
	label.BackgroundColor = "transparent"
	label.StrokeWidth = 1

	shape.BoundElements = []BoundRef{{ID: label.ID, Type: "text"}}
	return shape, label
}

func (r *renderer) arrow(from, to *Shape) *Arrow {
	sx, sy := from.X+from.Width/2, from.Y+from.Height/2
	ex, ey := to.X+to.Width/2, to.Y+to.Height/2
	dx, dy := ex-sx, ey-sy

	a := &Arrow{
		Base:         r.base("arrow", sx, sy, dx, dy),
		Points:       [][2]float64{{0, 0}, {dx, dy}},
		StartBinding: Binding{ElementID: from.ID, Focus: 0.1, Gap: 1},
		EndBinding:   Binding{ElementID: to.ID, Focus: 0.1, Gap: 1},
		EndArrowhead: "arrow",
	}
	a.StrokeColor = arrowColor
	a.BackgroundColor = "transparent"
	return a
}

func (r *renderer) edgeLabel(a *Arrow, caption string) *Text {
	t := &Text{
		Base:          r.base("text", a.X+a.Width/2, a.Y+a.Height/2, 100, 20),
		Text:          caption,
		FontSize:      12,
		FontFamily:    1,
		TextAlign:     "center",
		VerticalAlign: "middle",
	}
	t.StrokeColor = edgeLabelColor
	t.BackgroundColor = "#ffffff"
	t.StrokeWidth = 1
	return t
}
