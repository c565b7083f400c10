// Package graph provides JSON serialization types for planar graphs, forests
// and render snapshots.
//
// This package defines the wire format used by the HTTP API, the analysis
// cache and the `--json` CLI output.
//
// # Architecture
//
// The package sits at the serialization boundary between the engine and
// external formats:
//
//   - [Graph], [Forest], [Diff], [Layout]: serialization types (this package)
//   - pkg/planar.Graph: internal graph store
//   - pkg/forest.Forest, pkg/forest.Diff: internal BFS forests and diffs
//
// Use [FromPlanar]/[ToPlanar], [FromForest], [FromDiff] and [NewLayout] to
// convert between them.
//
// # Graph Serialization
//
// Graphs use a vertex-edge JSON format with dense integer ids:
//
//	{
//	  "vertices": [{"id": 0, "x": 100, "y": 100}, {"id": 1, "x": 200, "y": 100}],
//	  "edges": [{"from": 0, "to": 1}]
//	}
//
// Each undirected edge is listed once. Adjacency order is not part of the
// format; the graph store re-sorts neighbors angularly when a graph is read.
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("graph.json")   // File → planar.Graph
//	graph.WriteGraphFile(g, "output.json")      // planar.Graph → File
//	data, _ := graph.MarshalGraph(g)            // planar.Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)     // []byte → Graph
//
// The plain-text record format lives in pkg/io.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
