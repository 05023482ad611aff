package diagram

import (
	"reflect"
	"testing"

	"github.com/harishkotra/SketchStack/pkg/plan"
)

func twoTierPlan(to string) plan.ArchitecturePlan {
	return plan.ArchitecturePlan{
		Components: []plan.Component{
			{ID: "a", Name: "Web App", Type: plan.ComponentFrontend},
			{ID: "b", Name: "Orders DB", Type: plan.ComponentDatabase},
		},
		Relationships: []plan.Relationship{
			{From: "a", To: to, Protocol: "REST"},
		},
	}
}

func TestLayerOfTotal(t *testing.T) {
	types := append([]plan.ComponentType{}, plan.ComponentTypes...)
	types = append(types, plan.ComponentUnknown, plan.ComponentType("quantum"), "")

	for _, ct := range types {
		if l := LayerOf(ct); !l.Valid() {
			t.Errorf("LayerOf(%q) = %q, not a known layer", ct, l)
		}
	}
}

func TestLayerOf(t *testing.T) {
	tests := []struct {
		typ  plan.ComponentType
		want Layer
	}{
		{plan.ComponentAuth, LayerSecurity},
		{plan.ComponentWAF, LayerSecurity},
		{plan.ComponentFrontend, LayerApplication},
		{plan.ComponentMLModel, LayerApplication},
		{plan.ComponentVectorDB, LayerData},
		{plan.ComponentStreamProcessor, LayerData},
		{plan.ComponentCDN, LayerInfra},
		{plan.ComponentNotification, LayerObservability},
		{plan.ComponentOther, LayerApplication},
		{plan.ComponentUnknown, LayerApplication},
	}
	for _, tt := range tests {
		if got := LayerOf(tt.typ); got != tt.want {
			t.Errorf("LayerOf(%q) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestLayerIndex(t *testing.T) {
	for i, l := range Layers {
		if got := l.Index(); got != i {
			t.Errorf("%q.Index() = %d, want %d", l, got, i)
		}
	}
	if got := Layer("Edge").Index(); got != -1 {
		t.Errorf("Index of unknown layer = %d, want -1", got)
	}
}

func TestDeriveTwoTier(t *testing.T) {
	d := Derive(twoTierPlan("b"))

	if len(d.Nodes) != 2 || len(d.Edges) != 1 {
		t.Fatalf("Derive = %d nodes, %d edges, want 2, 1", len(d.Nodes), len(d.Edges))
	}
	if d.Nodes[0].Layer != LayerApplication {
		t.Errorf("node a layer = %q, want %q", d.Nodes[0].Layer, LayerApplication)
	}
	if d.Nodes[1].Layer != LayerData {
		t.Errorf("node b layer = %q, want %q", d.Nodes[1].Layer, LayerData)
	}
	if d.Nodes[0].Label != "Web App" {
		t.Errorf("node a label = %q, want %q", d.Nodes[0].Label, "Web App")
	}
	want := Edge{From: "a", To: "b", Protocol: "REST"}
	if d.Edges[0] != want {
		t.Errorf("edge = %+v, want %+v", d.Edges[0], want)
	}
}

func TestDeriveKeepsDanglingEdge(t *testing.T) {
	d := Derive(twoTierPlan("missing"))

	if len(d.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(d.Edges))
	}
	if d.Edges[0].To != "missing" {
		t.Errorf("edge to = %q, want %q", d.Edges[0].To, "missing")
	}
}

func TestDeriveIdempotent(t *testing.T) {
	p := twoTierPlan("b")
	p.Components = append(p.Components, plan.Component{ID: "c", Name: "Mystery", Type: plan.ComponentUnknown})

	first, second := Derive(p), Derive(p)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Derive not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestActiveLayers(t *testing.T) {
	nodes := []Node{
		{ID: "m", Type: plan.ComponentMonitoring, Layer: LayerObservability},
		{ID: "a", Type: plan.ComponentAuth, Layer: LayerSecurity},
		{ID: "x", Type: plan.ComponentDatabase},
	}
	got := ActiveLayers(nodes)
	want := []Layer{LayerSecurity, LayerData, LayerObservability}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ActiveLayers = %v, want %v", got, want)
	}
}

func TestEdgeCaption(t *testing.T) {
	tests := []struct {
		edge Edge
		want string
	}{
		{Edge{Label: "reads", Protocol: "SQL"}, "reads [SQL]"},
		{Edge{Protocol: "gRPC"}, "[gRPC]"},
		{Edge{Label: "publishes"}, "publishes"},
		{Edge{}, ""},
	}
	for _, tt := range tests {
		if got := tt.edge.Caption(); got != tt.want {
			t.Errorf("Caption(%+v) = %q, want %q", tt.edge, got, tt.want)
		}
	}
}

func TestGlyph(t *testing.T) {
	if got := Glyph(plan.ComponentDatabase); got != "🗄️" {
		t.Errorf("Glyph(database) = %q", got)
	}
	if got := Glyph(plan.ComponentOther); got != defaultGlyph {
		t.Errorf("Glyph(other) = %q, want %q", got, defaultGlyph)
	}
}

func TestSchemaFillsLayers(t *testing.T) {
	d, err := Schema().Decode(`{
		"nodes": [
			{"id": "a", "label": "A", "type": "cache"},
			{"id": "b", "label": "B", "type": "backend", "layer": "Nowhere"}
		],
		"edges": [{"from": "a", "to": "b"}]
	}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Nodes[0].Layer != LayerData {
		t.Errorf("layer = %q, want %q", d.Nodes[0].Layer, LayerData)
	}
	if d.Nodes[1].Layer != LayerApplication {
		t.Errorf("layer = %q, want %q", d.Nodes[1].Layer, LayerApplication)
	}
}

func TestSchemaRequiresEdges(t *testing.T) {
	if _, err := Schema().Decode(`{"nodes": []}`); err == nil {
		t.Error("Decode should require edges")
	}
}
