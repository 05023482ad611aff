package transform

import "github.com/harishkotra/SketchStack/pkg/dag"

// BreakCycles deletes every edge that closes a cycle and returns how many
// it deleted. Traversal starts at the sources, then at any node still
// unvisited in insertion order, so for a request/response pair between a
// caller and a callee the reply edge is the one that goes.
func BreakCycles(g *dag.DAG) int {
	visited := make(map[string]bool, g.NodeCount())
	onPath := make(map[string]bool)
	var cut []dag.Edge

	type frame struct {
		id   string
		next int
	}

	walk := func(root string) {
		visited[root], onPath[root] = true, true
		stack := []frame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				onPath[top.id] = false
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch {
			case onPath[child]:
				cut = append(cut, dag.Edge{From: top.id, To: child})
			case !visited[child]:
				visited[child], onPath[child] = true, true
				stack = append(stack, frame{id: child})
			}
		}
	}

	for _, n := range g.Sources() {
		if !visited[n.ID] {
			walk(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if !visited[n.ID] {
			walk(n.ID)
		}
	}

	for _, e := range cut {
		g.RemoveEdge(e.From, e.To)
	}
	return len(cut)
}
