// Package render provides output formats for shortest-path-tree views.
//
// # Overview
//
// Rendering happens in two steps. The [nodelink] subpackage turns a session
// view into Graphviz DOT with pinned vertex positions and draws it to SVG.
// This package converts that SVG to other formats using the external
// rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(view, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Formats
//
// [Formats] lists the names accepted by the CLI and the HTTP API;
// [ValidateFormat] rejects anything else with INVALID_FORMAT.
//
// [nodelink]: github.com/matzehuels/sptree/pkg/render/nodelink
package render
