package layout

import (
	"maps"
	"slices"

	"github.com/harishkotra/SketchStack/pkg/dag"
)

// Orderer determines the left-to-right sequence of nodes in each row of a
// ranked graph whose edges all connect consecutive rows.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// DefaultPasses is the number of down/up sweep pairs [Barycentric] runs when
// Passes is zero.
const DefaultPasses = 24

// Barycentric is the classic Sugiyama barycenter heuristic. Starting from
// insertion order, it alternates top-down and bottom-up sweeps that move
// each node to the mean position of its neighbors in the adjacent row,
// followed by a transpose pass that swaps adjacent nodes while that reduces
// crossings. The ordering with the fewest crossings seen is returned; on a
// tie the earlier one wins, so the result is deterministic.
type Barycentric struct {
	Passes int
}

// OrderRows implements [Orderer].
func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	cur := make(map[int][]string, g.RowCount())
	for _, r := range g.RowIDs() {
		cur[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	rows := g.RowIDs()

	best := cloneOrders(cur)
	bestCrossings := dag.CountCrossings(g, best)

	for pass := 0; pass < passes && bestCrossings > 0; pass++ {
		for i := 1; i < len(rows); i++ {
			sortByBarycenter(g, cur[rows[i]], dag.PosMap(cur[rows[i-1]]), true)
		}
		for i := len(rows) - 2; i >= 0; i-- {
			sortByBarycenter(g, cur[rows[i]], dag.PosMap(cur[rows[i+1]]), false)
		}
		transpose(g, cur, rows)

		if c := dag.CountCrossings(g, cur); c < bestCrossings {
			best, bestCrossings = cloneOrders(cur), c
		}
	}
	return best
}

// sortByBarycenter reorders row in place by the mean position of each
// node's neighbors in the adjacent row. Nodes without neighbors keep their
// current index as key.
func sortByBarycenter(g *dag.DAG, row []string, adjPos map[string]int, useParents bool) {
	keys := make(map[string]float64, len(row))
	for i, id := range row {
		nbrs := g.Children(id)
		if useParents {
			nbrs = g.Parents(id)
		}
		sum, n := 0, 0
		for _, nb := range nbrs {
			if p, ok := adjPos[nb]; ok {
				sum += p
				n++
			}
		}
		if n == 0 {
			keys[id] = float64(i)
			continue
		}
		keys[id] = float64(sum) / float64(n)
	}
	slices.SortStableFunc(row, func(a, b string) int {
		switch ka, kb := keys[a], keys[b]; {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
}

// transpose swaps adjacent nodes while doing so strictly reduces the
// crossings against both neighboring rows.
func transpose(g *dag.DAG, orders map[int][]string, rows []int) {
	for improved, rounds := true, 0; improved && rounds < len(rows)*4; rounds++ {
		improved = false
		for _, r := range rows {
			row := orders[r]
			above := dag.PosMap(orders[r-1])
			below := dag.PosMap(orders[r+1])
			for i := 0; i+1 < len(row); i++ {
				a, b := row[i], row[i+1]
				before := dag.CountPairCrossingsWithPos(g, a, b, above, true) +
					dag.CountPairCrossingsWithPos(g, a, b, below, false)
				after := dag.CountPairCrossingsWithPos(g, b, a, above, true) +
					dag.CountPairCrossingsWithPos(g, b, a, below, false)
				if after < before {
					row[i], row[i+1] = b, a
					improved = true
				}
			}
		}
	}
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for _, r := range slices.Sorted(maps.Keys(orders)) {
		out[r] = slices.Clone(orders[r])
	}
	return out
}
