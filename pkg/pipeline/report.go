package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/graph"
	"github.com/matzehuels/sptree/pkg/planar"
	"github.com/matzehuels/sptree/pkg/session"
)

// Report is the cached result of analyzing a graph from two roots.
type Report struct {
	Vertices  int          `json:"vertices"`
	Edges     int          `json:"edges"`
	Primary   graph.Forest `json:"primary"`
	Secondary graph.Forest `json:"secondary"`
	Diff      graph.Diff   `json:"diff"`
}

// NewReport summarizes a session view.
func NewReport(v session.View) *Report {
	return &Report{
		Vertices:  v.Graph.Len(),
		Edges:     v.Graph.EdgeCount(),
		Primary:   graph.FromForest(v.Primary),
		Secondary: graph.FromForest(v.Secondary),
		Diff:      graph.FromDiff(v.Diff, v.Primary.Root(), v.Secondary.Root()),
	}
}

// Depth returns the primary depth of vertex v.
func (r *Report) Depth(v int) (int, error) {
	if v < 0 || v >= r.Vertices {
		return 0, errs.VertexOutOfRange(v, r.Vertices)
	}
	return r.Primary.Depth[v], nil
}

// DiffAt returns the depth difference at vertex v.
func (r *Report) DiffAt(v int) (int, error) {
	if v < 0 || v >= r.Vertices {
		return 0, errs.VertexOutOfRange(v, r.Vertices)
	}
	return r.Diff.Values[v], nil
}

// MarshalReport converts a report to JSON bytes.
func MarshalReport(r *Report) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalReport decodes a report and checks that its per-vertex slices
// match the vertex count.
func UnmarshalReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	for _, n := range []int{len(r.Primary.Depth), len(r.Secondary.Depth), len(r.Diff.Values)} {
		if n != r.Vertices {
			return nil, errs.New(errs.ErrCodeInvalidInput,
				"report covers %d vertices but carries %d values", r.Vertices, n)
		}
	}
	return &r, nil
}

// View builds both forests of g from the given roots inside a throwaway
// session and returns its snapshot. g is not modified.
func View(g *planar.Graph, root, root2 int, logger *log.Logger) (session.View, error) {
	s := session.NewWithGraph(g.Clone(), logger)
	if err := s.SetPrimaryRoot(root); err != nil {
		return session.View{}, fmt.Errorf("primary root: %w", err)
	}
	if err := s.SetSecondaryRoot(root2); err != nil {
		return session.View{}, fmt.Errorf("secondary root: %w", err)
	}
	return s.View()
}

// Analyze builds both forests of g and summarizes them.
func Analyze(g *planar.Graph, root, root2 int, logger *log.Logger) (*Report, error) {
	v, err := View(g, root, root2, logger)
	if err != nil {
		return nil, err
	}
	return NewReport(v), nil
}
