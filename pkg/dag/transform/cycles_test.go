package transform

import (
	"testing"

	"github.com/harishkotra/SketchStack/pkg/dag"
)

func graphOf(t *testing.T, ids []string, edges [][2]string) *dag.DAG {
	t.Helper()
	g := dag.New()
	for _, id := range ids {
		if err := g.AddNode(dag.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name        string
		ids         []string
		edges       [][2]string
		wantRemoved int
		wantEdges   int
	}{
		{"empty", nil, nil, 0, 0},
		{"single node", []string{"a"}, nil, 0, 0},
		{"chain", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}}, 0, 2},
		{"pair", []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}}, 1, 1},
		{"triangle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, 1, 2},
		{"two pairs", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}}, 2, 2},
		{"diamond", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, 0, 4},
		{"loop below source", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "b"}}, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graphOf(t, tt.ids, tt.edges)
			if got := BreakCycles(g); got != tt.wantRemoved {
				t.Errorf("BreakCycles() = %d, want %d", got, tt.wantRemoved)
			}
			if got := g.EdgeCount(); got != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", got, tt.wantEdges)
			}
			if again := BreakCycles(g); again != 0 {
				t.Errorf("second BreakCycles() = %d, want 0", again)
			}
		})
	}
}

func TestBreakCyclesKeepsCallerEdge(t *testing.T) {
	g := graphOf(t, []string{"web", "api"}, [][2]string{{"web", "api"}, {"api", "web"}})
	BreakCycles(g)

	if !g.HasEdge("web", "api") {
		t.Error("web→api should survive")
	}
	if g.HasEdge("api", "web") {
		t.Error("api→web should be removed")
	}
}
