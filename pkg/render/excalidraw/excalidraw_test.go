package excalidraw

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/plan"
)

var fixedNow = func() time.Time { return time.UnixMilli(1700000000000) }

func pnode(id, label string, t plan.ComponentType, x, y float64) diagram.PositionedNode {
	return diagram.PositionedNode{ID: id, Label: label, Type: t, Layer: diagram.LayerOf(t),
		X: x, Y: y, Width: 160, Height: 80}
}

func testNodes() []diagram.PositionedNode {
	return []diagram.PositionedNode{
		pnode("api", "API", plan.ComponentBackend, 60, 60),
		pnode("db", "Postgres", plan.ComponentDatabase, 60, 280),
	}
}

func render(nodes []diagram.PositionedNode, edges []diagram.Edge) Scene {
	return Render(nodes, edges, Options{IDs: NewCounter("e"), Now: fixedNow})
}

func TestRenderEnvelope(t *testing.T) {
	s := render(nil, nil)
	if s.Type != "excalidraw" || s.Version != 2 || s.Source != "https://excalidraw.com" {
		t.Errorf("envelope = %s/%d/%s", s.Type, s.Version, s.Source)
	}
	if s.AppState != (AppState{ViewBackgroundColor: "#ffffff", GridSize: 20}) {
		t.Errorf("AppState = %+v", s.AppState)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if els, ok := raw["elements"].([]any); !ok || len(els) != 0 {
		t.Errorf("elements = %v, want empty array", raw["elements"])
	}
}

func TestRenderNodes(t *testing.T) {
	s := render(testNodes(), nil)
	if len(s.Elements) != 4 {
		t.Fatalf("elements = %d, want 4", len(s.Elements))
	}

	api := s.Elements[0].(*Shape)
	label := s.Elements[1].(*Text)
	db := s.Elements[2].(*Shape)

	if api.Type != "rectangle" || db.Type != "ellipse" {
		t.Errorf("shape types = %s, %s; want rectangle, ellipse", api.Type, db.Type)
	}
	if db.BackgroundColor != "#f0fdf4" || db.StrokeColor != "#22c55e" {
		t.Errorf("db colors = %s/%s", db.BackgroundColor, db.StrokeColor)
	}
	if label.ContainerID != api.ID || label.Text != "API" || label.OriginalText != "API" {
		t.Errorf("label = %+v", label)
	}
	if want := []BoundRef{{ID: label.ID, Type: "text"}}; !reflect.DeepEqual(api.BoundElements, want) {
		t.Errorf("BoundElements = %v, want %v", api.BoundElements, want)
	}
	if label.X != 70 || label.Y != 80 || label.Width != 140 || label.Height != 20 {
		t.Errorf("label box = %v,%v %vx%v", label.X, label.Y, label.Width, label.Height)
	}
	if api.Updated != 1700000000000 || api.IsDeleted || api.Version != 1 {
		t.Errorf("metadata = updated %d deleted %v version %d", api.Updated, api.IsDeleted, api.Version)
	}
}

func TestRenderArrow(t *testing.T) {
	edges := []diagram.Edge{{From: "api", To: "db", Label: "reads", Protocol: "SQL"}}
	s := render(testNodes(), edges)
	if len(s.Elements) != 6 {
		t.Fatalf("elements = %d, want 6", len(s.Elements))
	}

	api, db := s.Elements[0].(*Shape), s.Elements[2].(*Shape)
	arrow := s.Elements[4].(*Arrow)
	text := s.Elements[5].(*Text)

	if arrow.X != 140 || arrow.Y != 100 || arrow.Width != 0 || arrow.Height != 220 {
		t.Errorf("arrow box = %v,%v %vx%v", arrow.X, arrow.Y, arrow.Width, arrow.Height)
	}
	if want := [][2]float64{{0, 0}, {0, 220}}; !reflect.DeepEqual(arrow.Points, want) {
		t.Errorf("Points = %v, want %v", arrow.Points, want)
	}
	if arrow.StartBinding.ElementID != api.ID || arrow.EndBinding.ElementID != db.ID {
		t.Errorf("bindings = %s -> %s", arrow.StartBinding.ElementID, arrow.EndBinding.ElementID)
	}
	if arrow.EndArrowhead != "arrow" {
		t.Errorf("EndArrowhead = %q", arrow.EndArrowhead)
	}
	if text.Text != "reads [SQL]" || text.ContainerID != "" || text.X != 140 || text.Y != 210 {
		t.Errorf("edge label = %+v", text)
	}
}

func TestRenderUnlabelledEdge(t *testing.T) {
	tests := []struct {
		name string
		edge diagram.Edge
	}{
		{"bare", diagram.Edge{From: "api", To: "db"}},
		{"protocol only", diagram.Edge{From: "api", To: "db", Protocol: "SQL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := render(testNodes(), []diagram.Edge{tt.edge})
			if len(s.Elements) != 5 {
				t.Errorf("elements = %d, want 5 (no floating label)", len(s.Elements))
			}
			for _, el := range s.Elements {
				if txt, ok := el.(*Text); ok && txt.ContainerID == "" {
					t.Errorf("unexpected floating text %q", txt.Text)
				}
			}
		})
	}
}

func TestRenderDropsDanglingEdges(t *testing.T) {
	edges := []diagram.Edge{
		{From: "api", To: "missing", Label: "x"},
		{From: "ghost", To: "db"},
	}
	s := render(testNodes(), edges)
	for _, el := range s.Elements {
		if el.ElementType() == "arrow" {
			t.Errorf("unexpected arrow %s", el.ElementID())
		}
	}
	if len(s.Elements) != 4 {
		t.Errorf("elements = %d, want 4", len(s.Elements))
	}
	if _, err := json.Marshal(s); err != nil {
		t.Errorf("Marshal: %v", err)
	}
}

func TestRenderUniqueIDs(t *testing.T) {
	edges := []diagram.Edge{{From: "api", To: "db", Label: "l"}, {From: "db", To: "api", Label: "m"}}
	s := Render(testNodes(), edges, Options{IDs: NewRandom(7), Now: fixedNow})
	seen := map[string]bool{}
	for _, el := range s.Elements {
		id := el.ElementID()
		if len(id) != 9 {
			t.Errorf("id %q has length %d, want 9", id, len(id))
		}
		if seen[id] {
			t.Errorf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestRenderReproducible(t *testing.T) {
	edges := []diagram.Edge{{From: "api", To: "db", Label: "reads"}}
	a, _ := json.Marshal(Render(testNodes(), edges, Options{IDs: NewRandom(42), Now: fixedNow}))
	b, _ := json.Marshal(Render(testNodes(), edges, Options{IDs: NewRandom(42), Now: fixedNow}))
	if string(a) != string(b) {
		t.Error("same seed produced different scenes")
	}
	c, _ := json.Marshal(render(testNodes(), edges))
	d, _ := json.Marshal(render(testNodes(), edges))
	if string(c) != string(d) {
		t.Error("counter produced different scenes")
	}
}

func TestStyleOf(t *testing.T) {
	tests := []struct {
		typ  plan.ComponentType
		want string
	}{
		{plan.ComponentAPIGateway, "gateway"},
		{plan.ComponentContainer, "service"},
		{plan.ComponentVectorDB, "database"},
		{plan.ComponentStreamProcessor, "queue"},
		{plan.ComponentCache, "cache"},
		{plan.ComponentCDN, "storage"},
		{plan.ComponentFrontend, "other"},
		{plan.ComponentUnknown, "other"},
	}
	for _, tt := range tests {
		if got := StyleOf(tt.typ).Name; got != tt.want {
			t.Errorf("StyleOf(%s) = %s, want %s", tt.typ, got, tt.want)
		}
	}
}

func TestCounter(t *testing.T) {
	c := NewCounter("n")
	if got := []string{c.NextID(), c.NextID()}; !reflect.DeepEqual(got, []string{"n1", "n2"}) {
		t.Errorf("ids = %v", got)
	}
	if got := c.NextSeed(); got != 1 {
		t.Errorf("NextSeed() = %d, want 1", got)
	}
}
