package graph

import (
	"cmp"
	"encoding/json"
	"slices"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/forest"
	"github.com/matzehuels/sptree/pkg/planar"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// File formats for saved graphs, chosen by file extension.
const (
	FormatJSON = "json"
	FormatText = "txt"
)

// =============================================================================
// Graph - Planar Graph Serialization
// =============================================================================

// Graph is the canonical JSON form of a planar graph.
// Used for API responses, caching, and cross-tool compatibility.
//
// Vertex ids are dense: Vertices[i].ID == i. Each undirected edge appears
// once with From < To.
type Graph struct {
	Vertices []Vertex `json:"vertices" bson:"vertices"`
	Edges    []Edge   `json:"edges" bson:"edges"`
}

// Vertex is a positioned vertex.
type Vertex struct {
	ID int     `json:"id" bson:"id"`
	X  float64 `json:"x" bson:"x"`
	Y  float64 `json:"y" bson:"y"`
}

// Edge is an undirected edge.
type Edge struct {
	From int `json:"from" bson:"from"`
	To   int `json:"to" bson:"to"`
}

// =============================================================================
// Forest and Diff
// =============================================================================

// Forest is the JSON form of a breadth-first forest.
type Forest struct {
	Root    int   `json:"root"`
	Parent  []int `json:"parent"`
	Depth   []int `json:"depth"`
	Reached int   `json:"reached"`
	Height  int   `json:"height"`
}

// Diff is the JSON form of a dual-root depth difference.
type Diff struct {
	Primary   int     `json:"primary"`
	Secondary int     `json:"secondary"`
	Values    []int   `json:"values"`
	Min       int     `json:"min"`
	Max       int     `json:"max"`
	Scale     float64 `json:"scale"`
}

// =============================================================================
// planar.Graph ↔ Graph Conversion
// =============================================================================

// FromPlanar converts g to its serialization format.
// Edges are sorted for deterministic output.
func FromPlanar(g *planar.Graph) Graph {
	out := Graph{
		Vertices: make([]Vertex, g.Len()),
		Edges:    make([]Edge, 0, g.EdgeCount()),
	}
	for i, p := range g.Positions() {
		out.Vertices[i] = Vertex{ID: i, X: p.X, Y: p.Y}
		for _, w := range g.Neighbors(i) {
			if i < w {
				out.Edges = append(out.Edges, Edge{From: i, To: w})
			}
		}
	}
	slices.SortFunc(out.Edges, func(a, b Edge) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})
	return out
}

// ToPlanar converts gj back to a planar graph.
//
// Vertex ids must be dense and in order. Edge endpoints are validated the
// same way as [planar.Graph.Load]; duplicate edges are ignored.
func ToPlanar(gj Graph) (*planar.Graph, error) {
	records := make([]planar.Record, len(gj.Vertices))
	for i, v := range gj.Vertices {
		if v.ID != i {
			return nil, errs.New(errs.ErrCodeInvalidInput, "vertex at index %d has id %d", i, v.ID)
		}
		records[i].Position = planar.Point{X: v.X, Y: v.Y}
	}
	n := len(records)
	for _, e := range gj.Edges {
		for _, id := range []int{e.From, e.To} {
			if id < 0 || id >= n {
				return nil, errs.Wrap(errs.ErrCodeInvalidVertexID, errs.VertexOutOfRange(id, n), "edge %d-%d", e.From, e.To)
			}
		}
		if e.From == e.To {
			return nil, errs.New(errs.ErrCodeDegenerateEdge, "edge %d-%d is a self-loop", e.From, e.To)
		}
		records[e.From].Neighbors = append(records[e.From].Neighbors, e.To)
		records[e.To].Neighbors = append(records[e.To].Neighbors, e.From)
	}

	g := planar.New()
	if err := g.Load(records); err != nil {
		return nil, err
	}
	return g, nil
}

// FromForest converts f to its serialization format.
func FromForest(f *forest.Forest) Forest {
	return Forest{
		Root:    f.Root(),
		Parent:  f.Parents(),
		Depth:   f.Depths(),
		Reached: f.Reached(),
		Height:  f.Height(),
	}
}

// FromDiff converts d, computed for the given roots, to its serialization
// format.
func FromDiff(d *forest.Diff, primary, secondary int) Diff {
	return Diff{
		Primary:   primary,
		Secondary: secondary,
		Values:    slices.Clone(d.Values),
		Min:       d.Min,
		Max:       d.Max,
		Scale:     d.Scale,
	}
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}
