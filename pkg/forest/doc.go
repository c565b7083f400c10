// Package forest computes breadth-first spanning forests over a graph and the
// depth statistics used to compare two forests rooted at different vertices.
//
// # Building
//
// [Build] runs a FIFO breadth-first traversal from a root. A vertex is marked
// visited when it is enqueued, and it records the vertex it was discovered
// from as its parent. Vertices the traversal never reaches keep parent
// [NoParent] and depth 0, exactly like the root itself:
//
//	f, err := forest.Build(g, root)
//	f.Parent(v)   // NoParent for the root and for unreachable vertices
//	f.Children(v) // vertices discovered from v
//	f.Depth(v)    // BFS distance to the root, 0 if unreachable
//
// A Forest is a snapshot of (graph, root). It does not observe later graph
// mutations; callers rebuild whenever the graph or the root changes.
//
// # Depth
//
// [WalkDepth] is the reference depth computation: follow parent pointers
// until a vertex without a parent. [Forest.Depth] returns the same value from
// a table filled during the traversal.
//
// # Dual-root diff
//
// [Compare] subtracts the depths of two forests vertex by vertex and reports
// the extremes together with the normalization scale
//
//	scale = 127 / max(1, max, -min)
//
// that keeps scale·diff within ±127.
package forest
