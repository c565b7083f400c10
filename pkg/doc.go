// Package pkg provides the core libraries for sptree, a shortest-path tree
// engine for planar graphs.
//
// # Overview
//
// sptree keeps a planar graph whose vertices have positions and whose
// neighbor lists are sorted by angle. From any root it builds a
// breadth-first forest giving every vertex its hop distance, and it compares
// the forests of two roots vertex by vertex. The pkg directory is organized
// into four areas:
//
//  1. Engine - the graph store, forests and the random graph generator
//  2. Serialization - text records and JSON forms of graphs and views
//  3. Infrastructure - caching, storage, sessions, configuration
//  4. Orchestration - the load → analyze → render pipeline
//
// # Architecture
//
// The typical data flow:
//
//	text records / JSON / generator
//	         ↓
//	    [planar] graph (angular neighbor order)
//	         ↓
//	    [forest] primary and secondary forests, depth diff
//	         ↓
//	    [render/nodelink] DOT → SVG/PDF/PNG
//
// # Quick Start
//
// Generate a graph and query depths:
//
//	g, _ := generate.Generate(generate.Options{N: 500, Seed: 1})
//	s := session.NewWithGraph(g, nil)
//	_ = s.SetSecondaryRoot(499)
//	d, _ := s.Depth(42)
//	diff, _ := s.DiffAt(42)
//
// # Main Packages
//
// ## Engine
//
// [planar] - The graph store. Vertices get dense ids in insertion order;
// edges are undirected and each neighbor list stays sorted by angle.
//
// [forest] - Breadth-first forests, depth queries and the dual-root depth
// difference with its colour scale.
//
// [generate] - Uniform disk sampling and Delaunay triangulation.
//
// ## Serialization
//
// [io] - The text record format: one line per vertex listing its neighbors
// followed by its rounded position.
//
// [graph] - JSON types for graphs, forests, diffs and render views.
//
// ## Visualization
//
// [render/nodelink] - Graphviz drawings of a view with vertices at their
// stored positions and coloured by depth difference.
//
// [render] - Output formats and SVG to PDF/PNG conversion.
//
// ## Infrastructure
//
// [session] - One mutable graph with its two roots. Queries always answer
// from forests rebuilt after the latest mutation.
//
// [cache] - Content-addressed caching of generated graphs, reports and
// renders in files or Redis.
//
// [storage] - Named graphs in a directory or a MongoDB collection.
//
// [config] - The TOML configuration file.
//
// [retry] - Retrying transient failures while dialing backends.
//
// [observability] - Hooks for metrics and tracing.
//
// [observability/metrics] - Prometheus collectors fed by those hooks.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// ## Orchestration
//
// [pipeline] - Load, analyze and render with caching, used by both the CLI
// and the HTTP API.
//
// [planar]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/planar
// [forest]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/forest
// [generate]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/generate
// [io]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/io
// [graph]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/graph
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/render/nodelink
// [render]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/render
// [session]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/storage
// [config]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/config
// [retry]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/retry
// [observability]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/observability
// [observability/metrics]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/observability/metrics
// [errors]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sptree/pkg/pipeline
package pkg
