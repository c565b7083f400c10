package forest

import (
	"math/rand/v2"
	"slices"
	"testing"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/planar"
)

// chain builds the path 0-1-...-(n-1) laid out along the x axis.
func chain(t *testing.T, n int) *planar.Graph {
	t.Helper()
	g := planar.New()
	for i := 0; i < n; i++ {
		g.AddVertex(planar.Point{X: float64(i * 10)})
		if i > 0 {
			if err := g.AddEdge(i-1, i); err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
		}
	}
	return g
}

// randomConnected builds a random connected graph: a random spanning tree
// plus extra edges.
func randomConnected(t *testing.T, seed uint64, n, extra int) *planar.Graph {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed))
	g := planar.New()
	for i := 0; i < n; i++ {
		g.AddVertex(planar.Point{X: rng.Float64() * 1000, Y: rng.Float64() * 1000})
		if i > 0 {
			if err := g.AddEdge(rng.IntN(i), i); err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
		}
	}
	for k := 0; k < extra; k++ {
		u, v := rng.IntN(n), rng.IntN(n)
		if u != v {
			g.AddEdge(u, v)
		}
	}
	return g
}

func TestBuildChainDepths(t *testing.T) {
	const n = 12
	f, err := Build(chain(t, n), 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i := 0; i < n; i++ {
		if got := f.Depth(i); got != i {
			t.Errorf("Depth(%d) = %d, want %d", i, got, i)
		}
		if got := WalkDepth(f, i); got != i {
			t.Errorf("WalkDepth(%d) = %d, want %d", i, got, i)
		}
	}
	if f.Height() != n-1 {
		t.Errorf("Height() = %d, want %d", f.Height(), n-1)
	}
	if got := f.Children(3); !slices.Equal(got, []int{4}) {
		t.Errorf("Children(3) = %v, want [4]", got)
	}
}

func TestBuildChainFromMiddle(t *testing.T) {
	f, err := Build(chain(t, 7), 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []int{3, 2, 1, 0, 1, 2, 3}
	if got := f.Depths(); !slices.Equal(got, want) {
		t.Errorf("Depths() = %v, want %v", got, want)
	}
	if f.Parent(3) != NoParent || f.Parent(2) != 3 || f.Parent(4) != 3 {
		t.Errorf("unexpected parents %v", f.Parents())
	}
}

func TestBuildSingleRootAndAcyclic(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		g := randomConnected(t, seed, 60, 90)
		root := int(seed * 7 % 60)

		f, err := Build(g, root)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		roots := 0
		for v := 0; v < g.Len(); v++ {
			if f.Parent(v) == NoParent {
				roots++
				if v != root {
					t.Errorf("seed %d: vertex %d has no parent but is not the root", seed, v)
				}
				continue
			}
			steps, u := 0, v
			for u != root && steps <= g.Len() {
				if !g.HasEdge(u, f.Parent(u)) {
					t.Fatalf("seed %d: tree edge %d-%d is not a graph edge", seed, u, f.Parent(u))
				}
				u = f.Parent(u)
				steps++
			}
			if u != root {
				t.Fatalf("seed %d: parent walk from %d did not reach root within %d steps", seed, v, g.Len())
			}
			if steps != f.Depth(v) {
				t.Errorf("seed %d: walk length %d != Depth(%d) = %d", seed, steps, v, f.Depth(v))
			}
		}
		if roots != 1 {
			t.Errorf("seed %d: %d vertices without parent, want 1", seed, roots)
		}
		if f.Reached() != g.Len() {
			t.Errorf("seed %d: Reached() = %d, want %d", seed, f.Reached(), g.Len())
		}
		if len(f.TreeEdges()) != g.Len()-1 {
			t.Errorf("seed %d: %d tree edges, want %d", seed, len(f.TreeEdges()), g.Len()-1)
		}
	}
}

func TestBuildShortestPaths(t *testing.T) {
	g := randomConnected(t, 42, 80, 120)
	f, err := Build(g, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Along every edge, BFS depths differ by at most one.
	for u := 0; u < g.Len(); u++ {
		for _, v := range g.Neighbors(u) {
			if d := f.Depth(u) - f.Depth(v); d > 1 || d < -1 {
				t.Errorf("edge %d-%d: depths %d and %d", u, v, f.Depth(u), f.Depth(v))
			}
		}
	}
}

func TestDisconnectedVertexPolicy(t *testing.T) {
	g := chain(t, 4)
	isolated := g.AddVertex(planar.Point{X: 500, Y: 500})

	f, err := Build(g, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if f.Parent(isolated) != NoParent {
		t.Errorf("Parent(isolated) = %d, want %d", f.Parent(isolated), NoParent)
	}
	if f.Depth(isolated) != 0 || WalkDepth(f, isolated) != 0 {
		t.Errorf("isolated vertex should have depth 0")
	}
	if f.Reachable(isolated) {
		t.Error("isolated vertex should not be reachable")
	}
	if !f.Reachable(2) {
		t.Error("root should be reachable")
	}
	if f.Reached() != 4 {
		t.Errorf("Reached() = %d, want 4", f.Reached())
	}
}

func TestBuildErrors(t *testing.T) {
	g := chain(t, 3)
	for _, root := range []int{-1, 3} {
		if _, err := Build(g, root); !errs.Is(err, errs.ErrCodeInvalidVertexID) {
			t.Errorf("Build(root=%d) = %v, want INVALID_VERTEX_ID", root, err)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	f, err := Build(planar.New(), 0)
	if err != nil {
		t.Fatalf("Build(empty) = %v", err)
	}
	if f.Len() != 0 || f.Reached() != 0 {
		t.Errorf("empty forest has Len=%d Reached=%d", f.Len(), f.Reached())
	}
}

func TestForestIsSnapshot(t *testing.T) {
	g := chain(t, 3)
	f, _ := Build(g, 0)

	v := g.AddVertex(planar.Point{X: 100})
	g.AddEdge(2, v)

	if f.Len() != 3 {
		t.Errorf("forest should not observe later mutations, Len() = %d", f.Len())
	}
	if f.Depth(v) != 0 {
		t.Errorf("Depth of unknown vertex = %d, want 0", f.Depth(v))
	}
}

func TestWalkDepthMatchesDepth(t *testing.T) {
	g := randomConnected(t, 9, 100, 60)
	g.AddVertex(planar.Point{X: -1, Y: -1})

	for _, root := range []int{0, 17, 99} {
		f, err := Build(g, root)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		for v := 0; v < g.Len(); v++ {
			if WalkDepth(f, v) != f.Depth(v) {
				t.Fatalf("root %d vertex %d: WalkDepth=%d Depth=%d", root, v, WalkDepth(f, v), f.Depth(v))
			}
		}
	}
}
