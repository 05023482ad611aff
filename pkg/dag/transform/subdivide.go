package transform

import (
	"fmt"

	"github.com/harishkotra/SketchStack/pkg/dag"
)

// Subdivide replaces every edge spanning more than one row with a chain of
// single-row edges through [dag.NodeKindSubdivider] nodes, so that every
// edge satisfies From.Row+1 == To.Row afterwards. Edges pointing upward or
// within a row must be removed or reversed beforehand; they are left as is.
//
// Subdividers are named "source_sub_row" (e.g. "web_sub_1"); a numeric
// suffix is appended on collision ("web_sub_1__2"). They are added in edge
// insertion order, so the result is deterministic.
func Subdivide(g *dag.DAG) int {
	gen := newIDGen(g.Nodes())

	var long []dag.Edge
	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		if dst.Row > src.Row+1 {
			long = append(long, e)
		}
	}

	added := 0
	for _, e := range long {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		g.RemoveEdge(e.From, e.To)

		prevID := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			prevID = addSubdivider(g, gen, prevID, src.ID, row)
			added++
		}
		if err := g.AddEdge(dag.Edge{From: prevID, To: dst.ID}); err != nil {
			panic(err)
		}
	}
	return added
}

func addSubdivider(g *dag.DAG, gen *idGen, from, master string, row int) string {
	id := gen.next(master, row)
	if err := g.AddNode(dag.Node{
		ID:       id,
		Row:      row,
		Kind:     dag.NodeKindSubdivider,
		MasterID: master,
	}); err != nil {
		panic(err)
	}
	if err := g.AddEdge(dag.Edge{From: from, To: id}); err != nil {
		panic(err)
	}
	return id
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("%s_sub_%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
