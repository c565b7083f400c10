package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sptree/pkg/render"
	"github.com/matzehuels/sptree/pkg/session"
)

// DefaultMaxLabels is the largest graph that gets per-vertex labels.
const DefaultMaxLabels = 100

// Options configures node-link diagram rendering.
type Options struct {
	// MaxLabels caps the vertex count for which depth labels are drawn.
	// Zero means DefaultMaxLabels; a negative value disables labels.
	MaxLabels int
	// Secondary also highlights the tree edges of the secondary forest.
	Secondary bool
}

func (o Options) labels(n int) bool {
	limit := o.MaxLabels
	if limit == 0 {
		limit = DefaultMaxLabels
	}
	return limit > 0 && n <= limit
}

// ToDOT converts a session view to Graphviz DOT for the neato engine.
// Vertex positions are pinned, so Graphviz only draws; it never moves a
// vertex. The result can be rendered with [RenderSVG] and converted with
// [render.ToPDF] or [render.ToPNG].
//
// Every graph edge is drawn once: thin black, or orange when it belongs to
// the primary shortest-path tree. Vertices are filled with the diff colour
// and both roots are drawn larger. Small graphs get depth labels, followed
// by the depth difference when the two roots differ.
func ToDOT(view session.View, opts Options) string {
	g := view.Graph
	labels := opts.labels(g.Len())

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.12, label=\"\", penwidth=0.5, fontsize=8];\n")
	buf.WriteString("  edge [color=black, penwidth=0.5];\n")
	buf.WriteString("\n")

	for v, p := range g.Positions() {
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(p.X), fmtCoord(-p.Y)),
			fmt.Sprintf("fillcolor=%q", fillColour(view, v)),
		}
		if v == view.Primary.Root() || v == view.Secondary.Root() {
			attrs = append(attrs, "width=0.3", "penwidth=2")
		}
		if labels {
			attrs = append(attrs, xlabel(view, v))
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	primary := treeEdgeSet(view, false)
	var secondary map[[2]int]bool
	if opts.Secondary {
		secondary = treeEdgeSet(view, true)
	}
	for u := 0; u < g.Len(); u++ {
		for _, w := range g.Neighbors(u) {
			if w < u {
				continue
			}
			key := [2]int{u, w}
			switch {
			case primary[key]:
				fmt.Fprintf(&buf, "  %d -- %d [color=orange, penwidth=2];\n", u, w)
			case secondary[key]:
				fmt.Fprintf(&buf, "  %d -- %d [color=steelblue, penwidth=1.5];\n", u, w)
			default:
				fmt.Fprintf(&buf, "  %d -- %d;\n", u, w)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// xlabel labels v with its primary depth. When the roots differ the depth
// difference follows in the vertex's fill colour.
func xlabel(view session.View, v int) string {
	depth := view.Depth(v)
	if view.Primary.Root() == view.Secondary.Root() {
		return fmt.Sprintf("xlabel=\"%d\"", depth)
	}
	return fmt.Sprintf("xlabel=<%d <font color=\"%s\">%d</font>>", depth, fillColour(view, v), view.Diff.At(v))
}

func fillColour(view session.View, v int) string {
	r, g, b := view.Diff.Colour(v)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// fmtCoord formats a coordinate; -0 prints as 0.
func fmtCoord(x float64) string {
	if x == 0 {
		x = 0
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// treeEdgeSet returns the tree edges of one forest keyed by (min, max).
func treeEdgeSet(view session.View, secondary bool) map[[2]int]bool {
	f := view.Primary
	if secondary {
		f = view.Secondary
	}
	edges := f.TreeEdges()
	set := make(map[[2]int]bool, len(edges))
	for _, e := range edges {
		set[[2]int{min(e[0], e[1]), max(e[0], e[1])}] = true
	}
	return set
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion at the given scale.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}

// Render produces the view in one of the [render] formats.
func Render(ctx context.Context, view session.View, format string, opts Options) ([]byte, error) {
	dot := ToDOT(view, opts)
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return RenderSVG(ctx, dot)
	case render.FormatPDF:
		return RenderPDF(ctx, dot)
	case render.FormatPNG:
		return RenderPNG(ctx, dot, 2.0)
	}
	return nil, render.UnsupportedFormat(format)
}
