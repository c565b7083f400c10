package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/sptree/pkg/forest"
	"github.com/matzehuels/sptree/pkg/planar"
)

// =============================================================================
// Layout - Render Snapshot
// =============================================================================

// Layout is everything a renderer needs to draw one frame: positions,
// adjacency, the primary forest, per-vertex depths and the dual-root diff.
//
// Forest and Diff are nil when the graph is empty.
type Layout struct {
	Graph
	Primary   int     `json:"primary"`
	Secondary int     `json:"secondary"`
	TreeEdges []Edge  `json:"tree_edges,omitempty"`
	Forest    *Forest `json:"forest,omitempty"`
	Diff      *Diff   `json:"diff,omitempty"`
	DOT       string  `json:"dot,omitempty"`
}

// NewLayout assembles a Layout from the engine state. primary and secondary
// must be forests over g; d is their diff.
func NewLayout(g *planar.Graph, primary, secondary *forest.Forest, d *forest.Diff) Layout {
	l := Layout{
		Graph:     FromPlanar(g),
		Primary:   primary.Root(),
		Secondary: secondary.Root(),
	}
	if g.Len() == 0 {
		return l
	}
	for _, e := range primary.TreeEdges() {
		l.TreeEdges = append(l.TreeEdges, Edge{From: e[0], To: e[1]})
	}
	f := FromForest(primary)
	l.Forest = &f
	if d != nil {
		dj := FromDiff(d, primary.Root(), secondary.Root())
		l.Diff = &dj
	}
	return l
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// The forest and diff, when present, must cover every vertex.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	n := len(l.Vertices)
	if l.Forest != nil && (len(l.Forest.Parent) != n || len(l.Forest.Depth) != n) {
		return Layout{}, fmt.Errorf("layout forest covers %d vertices, want %d", len(l.Forest.Parent), n)
	}
	if l.Diff != nil && len(l.Diff.Values) != n {
		return Layout{}, fmt.Errorf("layout diff covers %d vertices, want %d", len(l.Diff.Values), n)
	}
	return l, nil
}
