package forest

import (
	"slices"

	errs "github.com/matzehuels/sptree/pkg/errors"
)

// NoParent marks the root of a tree, and every vertex not reached from the root.
const NoParent = -1

// Adjacency is the read-only graph view the builder traverses.
// *planar.Graph satisfies it.
type Adjacency interface {
	Len() int
	Neighbors(v int) []int
}

// Forest is a BFS spanning forest of a graph from one root.
// It is immutable once built and safe for concurrent reads.
type Forest struct {
	root     int
	parent   []int
	children [][]int
	depth    []int
	reached  int
	height   int
}

// Build computes the BFS forest of g rooted at root.
//
// Returns INVALID_VERTEX_ID if root is not a vertex of g. An empty graph
// yields an empty forest for any root.
func Build(g Adjacency, root int) (*Forest, error) {
	n := g.Len()
	f := &Forest{
		root:     root,
		parent:   make([]int, n),
		children: make([][]int, n),
		depth:    make([]int, n),
	}
	for i := range f.parent {
		f.parent[i] = NoParent
	}
	if n == 0 {
		return f, nil
	}
	if root < 0 || root >= n {
		return nil, errs.VertexOutOfRange(root, n)
	}

	visited := make([]bool, n)
	queue := make([]int, 0, n)
	visited[root] = true
	queue = append(queue, root)
	f.reached = 1

	for head := 0; head < len(queue); head++ {
		v := queue[head]
		for _, w := range g.Neighbors(v) {
			if visited[w] {
				continue
			}
			visited[w] = true
			f.parent[w] = v
			f.children[v] = append(f.children[v], w)
			f.depth[w] = f.depth[v] + 1
			f.height = max(f.height, f.depth[w])
			f.reached++
			queue = append(queue, w)
		}
	}
	return f, nil
}

// Root returns the vertex the forest was built from.
func (f *Forest) Root() int { return f.root }

// Len returns the number of vertices covered by the forest.
func (f *Forest) Len() int { return len(f.parent) }

// Parent returns the parent of v, or NoParent for the root, for unreached
// vertices and for ids outside the forest.
func (f *Forest) Parent(v int) int {
	if v < 0 || v >= len(f.parent) {
		return NoParent
	}
	return f.parent[v]
}

// Parents returns a copy of the parent table.
func (f *Forest) Parents() []int { return slices.Clone(f.parent) }

// Children returns a copy of the vertices discovered from v.
func (f *Forest) Children(v int) []int {
	if v < 0 || v >= len(f.children) {
		return nil
	}
	return slices.Clone(f.children[v])
}

// Reachable reports whether v is connected to the root.
func (f *Forest) Reachable(v int) bool {
	if v < 0 || v >= len(f.parent) {
		return false
	}
	return v == f.root || f.parent[v] != NoParent
}

// Reached returns the number of vertices connected to the root, root included.
func (f *Forest) Reached() int { return f.reached }

// Height returns the largest depth in the forest.
func (f *Forest) Height() int { return f.height }

// TreeEdges returns every (parent, child) pair in discovery order.
func (f *Forest) TreeEdges() [][2]int {
	out := make([][2]int, 0, f.reached)
	for v, cs := range f.children {
		for _, c := range cs {
			out = append(out, [2]int{v, c})
		}
	}
	return out
}
