package graph

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/forest"
	"github.com/matzehuels/sptree/pkg/planar"
)

func square(t *testing.T) *planar.Graph {
	t.Helper()
	g := planar.New()
	for _, p := range []planar.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}} {
		g.AddVertex(p)
	}
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return g
}

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name         string
		build        func() *planar.Graph
		wantVertices int
		wantEdges    int
	}{
		{
			name:  "Empty",
			build: planar.New,
		},
		{
			name:         "Square",
			build:        func() *planar.Graph { return square(t) },
			wantVertices: 4,
			wantEdges:    4,
		},
		{
			name: "Isolated",
			build: func() *planar.Graph {
				g := planar.New()
				g.AddVertex(planar.Point{X: 1, Y: 2})
				return g
			},
			wantVertices: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalGraph(tt.build())
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}

			var result Graph
			if err := json.Unmarshal(data, &result); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := len(result.Vertices); got != tt.wantVertices {
				t.Errorf("vertices = %d, want %d", got, tt.wantVertices)
			}
			if got := len(result.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
		})
	}
}

func TestFromPlanarEdgesSorted(t *testing.T) {
	gj := FromPlanar(square(t))
	want := []Edge{{0, 1}, {0, 3}, {1, 2}, {2, 3}}
	if !slices.Equal(gj.Edges, want) {
		t.Errorf("Edges = %v, want %v", gj.Edges, want)
	}
	if gj.Vertices[2] != (Vertex{ID: 2, X: 10, Y: 10}) {
		t.Errorf("Vertices[2] = %+v", gj.Vertices[2])
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantEdges int
		wantCode  errs.Code
		wantErr   bool
	}{
		{
			name: "Valid",
			input: `{
				"vertices": [{"id": 0, "x": 0, "y": 0}, {"id": 1, "x": 5, "y": 0}],
				"edges": [{"from": 0, "to": 1}, {"from": 1, "to": 0}]
			}`,
			wantLen:   2,
			wantEdges: 1,
		},
		{
			name:  "Empty",
			input: `{"vertices": [], "edges": []}`,
		},
		{
			name:    "Invalid",
			input:   `{invalid json}`,
			wantErr: true,
		},
		{
			name:     "SparseIDs",
			input:    `{"vertices": [{"id": 3, "x": 0, "y": 0}], "edges": []}`,
			wantErr:  true,
			wantCode: errs.ErrCodeInvalidInput,
		},
		{
			name:     "UnknownEndpoint",
			input:    `{"vertices": [{"id": 0, "x": 0, "y": 0}], "edges": [{"from": 0, "to": 4}]}`,
			wantErr:  true,
			wantCode: errs.ErrCodeInvalidVertexID,
		},
		{
			name:     "SelfLoop",
			input:    `{"vertices": [{"id": 0, "x": 0, "y": 0}], "edges": [{"from": 0, "to": 0}]}`,
			wantErr:  true,
			wantCode: errs.ErrCodeDegenerateEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadGraph(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantCode != "" && !errs.Is(err, tt.wantCode) {
					t.Errorf("err = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadGraph: %v", err)
			}
			if g.Len() != tt.wantLen {
				t.Errorf("vertices = %d, want %d", g.Len(), tt.wantLen)
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("edges = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
		})
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	g := square(t)
	path := filepath.Join(t.TempDir(), "square.json")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	back, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	for v := 0; v < g.Len(); v++ {
		if !slices.Equal(back.Neighbors(v), g.Neighbors(v)) {
			t.Errorf("vertex %d: neighbors %v, want %v", v, back.Neighbors(v), g.Neighbors(v))
		}
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	if _, err := ReadGraphFile("nonexistent.json"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestNewLayout(t *testing.T) {
	g := square(t)
	a, err := forest.Build(g, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := forest.Build(g, 2)
	if err != nil {
		t.Fatal(err)
	}
	d, err := forest.Compare(a, b)
	if err != nil {
		t.Fatal(err)
	}

	l := NewLayout(g, a, b, d)
	if l.Primary != 0 || l.Secondary != 2 {
		t.Errorf("roots = %d, %d, want 0, 2", l.Primary, l.Secondary)
	}
	if len(l.TreeEdges) != 3 {
		t.Errorf("tree edges = %d, want 3", len(l.TreeEdges))
	}
	if l.Forest == nil || !slices.Equal(l.Forest.Depth, []int{0, 1, 2, 1}) {
		t.Errorf("forest = %+v", l.Forest)
	}
	if l.Diff == nil || !slices.Equal(l.Diff.Values, []int{-2, 0, 2, 0}) {
		t.Errorf("diff = %+v", l.Diff)
	}

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if len(back.Vertices) != 4 || back.Diff.Scale != l.Diff.Scale {
		t.Errorf("layout did not survive a round trip: %+v", back)
	}
}

func TestNewLayoutEmpty(t *testing.T) {
	g := planar.New()
	f, _ := forest.Build(g, 0)
	l := NewLayout(g, f, f, nil)
	if l.Forest != nil || l.Diff != nil || len(l.Vertices) != 0 {
		t.Errorf("empty layout = %+v", l)
	}
}

func TestUnmarshalLayoutMismatch(t *testing.T) {
	data := []byte(`{"vertices": [{"id": 0, "x": 0, "y": 0}], "edges": [], "diff": {"values": [1, 2]}}`)
	if _, err := UnmarshalLayout(data); err == nil {
		t.Error("expected error for diff longer than vertex list")
	}
}

func TestWriteGraph(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGraph(square(t), &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	gj, err := UnmarshalGraph(buf.Bytes())
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}
	if len(gj.Vertices) != 4 {
		t.Errorf("vertices = %d, want 4", len(gj.Vertices))
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"graph.json", FormatJSON},
		{"dir/GRAPH.JSON", FormatJSON},
		{"graph.txt", FormatText},
		{"graph", FormatText},
		{"graph.json.txt", FormatText},
	}
	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
