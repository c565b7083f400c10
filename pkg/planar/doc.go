// Package planar provides the graph store behind sptree: an undirected graph
// whose vertices carry 2-D positions and whose neighbor lists are kept in
// angular order around each vertex.
//
// # Overview
//
// Vertices are dense integer ids 0..N-1. Ids are stable once assigned and new
// vertices are appended at the end; there is no per-vertex deletion, only a
// whole-graph [Graph.Reset]. Adjacency is always symmetric:
//
//	j ∈ g.Neighbors(i)  ⇔  i ∈ g.Neighbors(j)
//
// # Basic Usage
//
//	g := planar.New()
//	a := g.AddVertex(planar.Point{X: 0, Y: 0})
//	b := g.AddVertex(planar.Point{X: 10, Y: 0})
//	if err := g.AddEdge(a, b); err != nil {
//	    // INVALID_VERTEX_ID or DEGENERATE_EDGE
//	}
//
// Adding an edge that already exists is a no-op. Mutations bump
// [Graph.Version], which callers use to detect stale derived structures such
// as BFS forests.
//
// # Angular Order
//
// Every neighbor list is sorted by the polar angle atan2(dy, dx) of the
// direction from the vertex to the neighbor, ascending from -π to π. The
// order is re-established for both endpoints whenever an edge is added and
// for every vertex on [Graph.Load]. Ties keep their previous relative order.
//
// # Records
//
// [Graph.Load] and [Graph.Export] exchange the full graph as one [Record]
// per vertex (neighbor ids followed by the position), the same shape as the
// plain-text format in package io.
//
// # Concurrency
//
// Graph is not safe for concurrent use without external synchronization.
// Package session serializes access for multi-caller use.
package planar
