// Package transform prepares a ranked graph for crossing reduction.
//
// # Cycle Breaking
//
// [BreakCycles] removes DFS back edges so that longest-path ranking is
// well-defined. Architecture descriptions routinely contain request/response
// pairs (a→b and b→a); only one direction survives for ranking purposes.
//
// # Layer Assignment
//
// [AssignLayers] places every node one row below its deepest parent
// (longest path from the sources). It is used by the flow ranking mode of
// the layout engine; the default mode ranks by architectural layer instead.
//
// # Edge Subdivision
//
// [Subdivide] breaks edges spanning several rows into chains of single-row
// hops by inserting subdivider nodes:
//
//	Before: web (row 0) → db (row 3)
//	After:  web → web_sub_1 → web_sub_2 → db
//
// Subdividers take part in ordering but are not emitted as diagram nodes.
//
// # Usage
//
//	transform.BreakCycles(g)
//	transform.AssignLayers(g)
//	transform.Subdivide(g)
package transform
