package transform

import "github.com/harishkotra/SketchStack/pkg/dag"

// AssignLayers assigns each node a row equal to the length of the longest
// path reaching it from a source, using Kahn's topological traversal:
//   - Source nodes (no incoming edges) are at row 0
//   - Every parent is strictly above its children
//
// Existing row assignments are overwritten. The graph must be acyclic; nodes
// on a cycle never reach in-degree zero and stay at row 0, so run
// [BreakCycles] first.
//
// Time complexity is O(V + E).
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		rows[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}
