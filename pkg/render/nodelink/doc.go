// Package nodelink renders a planar graph and its shortest-path trees as a
// node-link diagram.
//
// # Overview
//
// Vertices keep the positions stored in the graph: the DOT output uses the
// neato engine with pinned positions, so Graphviz only draws. Every edge is
// drawn once, thin and black, except edges of the primary tree which are
// orange. Vertex fill encodes the depth difference between the two roots
// (red near the primary root, green near the secondary), and both roots are
// drawn larger.
//
// # Usage
//
//	view, err := sess.View()
//	dot := nodelink.ToDOT(view, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Render] dispatches on a format name and covers DOT, SVG, PDF and PNG.
//
// # Labels
//
// Graphs of at most [DefaultMaxLabels] vertices get an external label with
// each vertex's primary depth. Larger graphs are drawn unlabelled.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
