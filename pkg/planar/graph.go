package planar

import (
	"slices"

	errs "github.com/matzehuels/sptree/pkg/errors"
)

// DefaultPickRadius2 is the squared distance within which a point selects a
// vertex in [Graph.NearestVertex].
const DefaultPickRadius2 = 200

// Point is a vertex position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Record is the bulk exchange form of one vertex: its neighbor ids followed by
// its position.
type Record struct {
	Neighbors []int `json:"neighbors" bson:"neighbors"`
	Position  Point `json:"position" bson:"position"`
}

// Graph is an undirected graph with positioned vertices and angularly ordered
// adjacency lists.
//
// The zero value is an empty graph ready for use.
type Graph struct {
	adj     [][]int
	pos     []Point
	version uint64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.adj) }

// Version returns a counter that changes on every structural mutation.
// Two equal versions of the same Graph imply identical contents.
func (g *Graph) Version() uint64 { return g.version }

// HasVertex reports whether v is a valid vertex id.
func (g *Graph) HasVertex(v int) bool { return v >= 0 && v < len(g.adj) }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, ns := range g.adj {
		n += len(ns)
	}
	return n / 2
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v int) bool {
	if !g.HasVertex(u) || !g.HasVertex(v) {
		return false
	}
	return slices.Contains(g.adj[u], v)
}

// AddVertex appends a vertex at p with no neighbors and returns its id.
func (g *Graph) AddVertex(p Point) int {
	g.adj = append(g.adj, nil)
	g.pos = append(g.pos, p)
	g.version++
	return len(g.adj) - 1
}

// AddEdge connects u and v.
//
// Returns INVALID_VERTEX_ID if either id is out of range and DEGENERATE_EDGE
// if u == v. Adding an existing edge is a no-op and leaves [Graph.Version]
// unchanged. Otherwise both neighbor lists are extended and re-sorted.
func (g *Graph) AddEdge(u, v int) error {
	if !g.HasVertex(u) {
		return errs.VertexOutOfRange(u, len(g.adj))
	}
	if !g.HasVertex(v) {
		return errs.VertexOutOfRange(v, len(g.adj))
	}
	if u == v {
		return errs.New(errs.ErrCodeDegenerateEdge, "self-loop on vertex %d", u)
	}
	if slices.Contains(g.adj[u], v) {
		return nil
	}
	g.adj[u] = append(g.adj[u], v)
	g.adj[v] = append(g.adj[v], u)
	g.sortNeighbors(u)
	g.sortNeighbors(v)
	g.version++
	return nil
}

// Neighbors returns a copy of v's neighbor list in angular order.
// Returns nil for an unknown vertex.
func (g *Graph) Neighbors(v int) []int {
	if !g.HasVertex(v) {
		return nil
	}
	return slices.Clone(g.adj[v])
}

// Degree returns the number of neighbors of v, or 0 for an unknown vertex.
func (g *Graph) Degree(v int) int {
	if !g.HasVertex(v) {
		return 0
	}
	return len(g.adj[v])
}

// Position returns the position of v.
func (g *Graph) Position(v int) (Point, error) {
	if !g.HasVertex(v) {
		return Point{}, errs.VertexOutOfRange(v, len(g.adj))
	}
	return g.pos[v], nil
}

// Positions returns a copy of all vertex positions indexed by id.
func (g *Graph) Positions() []Point {
	return slices.Clone(g.pos)
}

// Adjacency returns a deep copy of all neighbor lists indexed by id.
func (g *Graph) Adjacency() [][]int {
	out := make([][]int, len(g.adj))
	for i, ns := range g.adj {
		out[i] = slices.Clone(ns)
	}
	return out
}

// Reset removes every vertex and edge.
func (g *Graph) Reset() {
	g.adj = nil
	g.pos = nil
	g.version++
}

// Clone returns an independent copy of g, including its version.
func (g *Graph) Clone() *Graph {
	return &Graph{
		adj:     g.Adjacency(),
		pos:     g.Positions(),
		version: g.version,
	}
}

// Load replaces the graph with the given records, one per vertex.
//
// Neighbor lists are not trusted to be sorted and are re-sorted angularly.
// Duplicate ids within a record are dropped. Load fails with
// INVALID_VERTEX_ID for ids outside the record range, DEGENERATE_EDGE for a
// vertex listing itself, and MALFORMED_RECORD if adjacency is not symmetric.
// On failure the graph is left unchanged.
func (g *Graph) Load(records []Record) error {
	n := len(records)
	adj := make([][]int, n)
	pos := make([]Point, n)

	for i, r := range records {
		if err := errs.ValidatePoint(r.Position.X, r.Position.Y); err != nil {
			return errs.Wrap(errs.ErrCodeMalformedRecord, err, "vertex %d", i)
		}
		seen := make(map[int]bool, len(r.Neighbors))
		list := make([]int, 0, len(r.Neighbors))
		for _, w := range r.Neighbors {
			if w < 0 || w >= n {
				return errs.Wrap(errs.ErrCodeInvalidVertexID, errs.VertexOutOfRange(w, n), "vertex %d", i)
			}
			if w == i {
				return errs.New(errs.ErrCodeDegenerateEdge, "vertex %d lists itself as a neighbor", i)
			}
			if seen[w] {
				continue
			}
			seen[w] = true
			list = append(list, w)
		}
		adj[i] = list
		pos[i] = r.Position
	}

	for i, ns := range adj {
		for _, w := range ns {
			if !slices.Contains(adj[w], i) {
				return errs.New(errs.ErrCodeMalformedRecord, "edge %d-%d is missing its reverse direction", i, w)
			}
		}
	}

	g.adj = adj
	g.pos = pos
	for i := range g.adj {
		g.sortNeighbors(i)
	}
	g.version++
	return nil
}

// Export returns one record per vertex with a copy of its neighbor list and
// its position.
func (g *Graph) Export() []Record {
	out := make([]Record, len(g.adj))
	for i := range g.adj {
		out[i] = Record{
			Neighbors: slices.Clone(g.adj[i]),
			Position:  g.pos[i],
		}
	}
	return out
}

// Validate checks the structural invariants: ids in range, no self-loops,
// no duplicate neighbors, symmetric adjacency and angular order.
func (g *Graph) Validate() error {
	n := len(g.adj)
	for i, ns := range g.adj {
		seen := make(map[int]bool, len(ns))
		for _, w := range ns {
			if w < 0 || w >= n {
				return errs.VertexOutOfRange(w, n)
			}
			if w == i {
				return errs.New(errs.ErrCodeDegenerateEdge, "self-loop on vertex %d", i)
			}
			if seen[w] {
				return errs.New(errs.ErrCodeMalformedRecord, "duplicate neighbor %d of vertex %d", w, i)
			}
			seen[w] = true
			if !slices.Contains(g.adj[w], i) {
				return errs.New(errs.ErrCodeMalformedRecord, "edge %d-%d is missing its reverse direction", i, w)
			}
		}
		if !IsAngularlySorted(g, i) {
			return errs.New(errs.ErrCodeInternal, "neighbors of vertex %d are not in angular order", i)
		}
	}
	return nil
}

// NearestVertex returns the vertex closest to p whose squared distance is
// strictly below maxDist2. Ties resolve to the lowest id.
func (g *Graph) NearestVertex(p Point, maxDist2 float64) (int, bool) {
	best, bestD := -1, 0.0
	for i, q := range g.pos {
		d := distance2(p, q)
		if d >= maxDist2 {
			continue
		}
		if best < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best, best >= 0
}

func distance2(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
