// Package dag provides the row-organized directed graph that the layout
// engine ranks and orders.
//
// # Overview
//
// Layered (Sugiyama-style) drawing places every node on a row and then
// reorders each row to reduce edge crossings. Crossing counting is only
// well-defined between consecutive rows, so after ranking, edges that span
// several rows are split into chains of subdivider nodes (see the transform
// subpackage) and every edge satisfies From.Row+1 == To.Row.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "web", Row: 0})
//	g.AddNode(dag.Node{ID: "db", Row: 1})
//	g.AddEdge(dag.Edge{From: "web", To: "db"})
//
// Iteration is always in insertion order, so identical input produces
// identical layouts.
//
// # Crossings
//
// [CountCrossings] and [CountLayerCrossings] count crossings for a candidate
// ordering using a Fenwick tree; [CountPairCrossingsWithPos] evaluates a
// single adjacent swap.
package dag
