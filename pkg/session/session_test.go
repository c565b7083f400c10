package session

import (
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/forest"
	"github.com/matzehuels/sptree/pkg/observability"
	"github.com/matzehuels/sptree/pkg/planar"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// pathSession builds the chain 0-1-...-(n-1).
func pathSession(t *testing.T, n int) *Session {
	t.Helper()
	s := New(quietLogger())
	for i := 0; i < n; i++ {
		s.AddVertex(planar.Point{X: float64(30 * i), Y: 0})
		if i > 0 {
			if err := s.AddEdge(i-1, i); err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
		}
	}
	return s
}

func TestNewSessionDefaults(t *testing.T) {
	s := New(nil)
	if p, q := s.Roots(); p != 0 || q != 0 {
		t.Errorf("Roots() = %d, %d, want 0, 0", p, q)
	}
	f, err := s.Primary()
	if err != nil {
		t.Fatalf("Primary on empty graph: %v", err)
	}
	if f.Len() != 0 {
		t.Errorf("empty session forest Len() = %d", f.Len())
	}
	d, err := s.Diff()
	if err != nil {
		t.Fatalf("Diff on empty graph: %v", err)
	}
	if d.Scale != forest.DisplayRange {
		t.Errorf("empty diff scale = %v", d.Scale)
	}
}

func TestDirtyFlag(t *testing.T) {
	s := pathSession(t, 3)
	if !s.Dirty() {
		t.Fatal("session should be dirty after mutations")
	}
	if _, err := s.Primary(); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("building a forest should clear the dirty flag")
	}

	if err := s.AddEdge(0, 1); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("adding an existing edge should not mark the session dirty")
	}

	s.AddVertex(planar.Point{X: 5, Y: 5})
	if !s.Dirty() {
		t.Error("AddVertex should mark the session dirty")
	}
}

func TestQueriesRebuildAfterMutation(t *testing.T) {
	s := pathSession(t, 4)
	if d, _ := s.Depth(3); d != 3 {
		t.Fatalf("Depth(3) = %d, want 3", d)
	}

	if err := s.AddEdge(0, 3); err != nil {
		t.Fatal(err)
	}
	if d, _ := s.Depth(3); d != 1 {
		t.Errorf("Depth(3) after shortcut = %d, want 1", d)
	}

	v := s.AddVertex(planar.Point{X: 500, Y: 500})
	if d, err := s.Depth(v); err != nil || d != 0 {
		t.Errorf("Depth(isolated) = %d, %v, want 0", d, err)
	}
}

func TestRoots(t *testing.T) {
	s := pathSession(t, 5)
	if err := s.SetPrimaryRoot(4); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSecondaryRoot(0); err != nil {
		t.Fatal(err)
	}

	d, err := s.Diff()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(d.Values, []int{4, 2, 0, -2, -4}) {
		t.Errorf("Diff = %v", d.Values)
	}
	if v, _ := s.DiffAt(0); v != 4 {
		t.Errorf("DiffAt(0) = %d, want 4", v)
	}

	for _, r := range []int{-1, 5} {
		if err := s.SetPrimaryRoot(r); !errs.Is(err, errs.ErrCodeInvalidVertexID) {
			t.Errorf("SetPrimaryRoot(%d) = %v, want INVALID_VERTEX_ID", r, err)
		}
		if err := s.SetSecondaryRoot(r); !errs.Is(err, errs.ErrCodeInvalidVertexID) {
			t.Errorf("SetSecondaryRoot(%d) = %v, want INVALID_VERTEX_ID", r, err)
		}
	}
	if p, q := s.Roots(); p != 4 || q != 0 {
		t.Errorf("failed setters changed roots to %d, %d", p, q)
	}

	empty := New(quietLogger())
	if err := empty.SetPrimaryRoot(0); err != nil {
		t.Errorf("root 0 on empty graph: %v", err)
	}
	if err := empty.SetPrimaryRoot(1); !errs.Is(err, errs.ErrCodeInvalidVertexID) {
		t.Errorf("root 1 on empty graph = %v", err)
	}
}

func TestQueryErrors(t *testing.T) {
	s := pathSession(t, 2)
	if _, err := s.Depth(2); !errs.Is(err, errs.ErrCodeInvalidVertexID) {
		t.Errorf("Depth(2) = %v", err)
	}
	if _, err := s.DiffAt(-1); !errs.Is(err, errs.ErrCodeInvalidVertexID) {
		t.Errorf("DiffAt(-1) = %v", err)
	}
	if _, err := s.Forest(9); !errs.Is(err, errs.ErrCodeInvalidVertexID) {
		t.Errorf("Forest(9) = %v", err)
	}
	if err := s.AddEdge(1, 1); !errs.Is(err, errs.ErrCodeDegenerateEdge) {
		t.Errorf("AddEdge(1,1) = %v", err)
	}
}

func TestReset(t *testing.T) {
	s := pathSession(t, 4)
	_ = s.SetPrimaryRoot(2)
	_ = s.SetSecondaryRoot(3)
	s.Reset()

	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d", s.Len())
	}
	if p, q := s.Roots(); p != 0 || q != 0 {
		t.Errorf("Roots() after Reset = %d, %d", p, q)
	}
	if f, err := s.Primary(); err != nil || f.Len() != 0 {
		t.Errorf("Primary() after Reset = %v, %v", f, err)
	}
}

func TestLoad(t *testing.T) {
	s := pathSession(t, 6)
	_ = s.SetPrimaryRoot(5)
	_ = s.SetSecondaryRoot(1)

	recs := []planar.Record{
		{Neighbors: []int{1}, Position: planar.Point{X: 0, Y: 0}},
		{Neighbors: []int{0, 2}, Position: planar.Point{X: 10, Y: 0}},
		{Neighbors: []int{1}, Position: planar.Point{X: 20, Y: 0}},
	}
	if err := s.Load(recs); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p, q := s.Roots(); p != 0 || q != 1 {
		t.Errorf("Roots() after Load = %d, %d, want 0, 1", p, q)
	}
	if d, _ := s.Depth(2); d != 2 {
		t.Errorf("Depth(2) = %d, want 2", d)
	}

	bad := []planar.Record{{Neighbors: []int{7}}}
	if err := s.Load(bad); !errs.Is(err, errs.ErrCodeInvalidVertexID) {
		t.Errorf("Load(bad) = %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("failed Load changed the graph: Len() = %d", s.Len())
	}
}

func TestPick(t *testing.T) {
	s := pathSession(t, 3)
	if v, ok := s.Pick(planar.Point{X: 31, Y: 2}); !ok || v != 1 {
		t.Errorf("Pick near 1 = %d, %v", v, ok)
	}
	if _, ok := s.Pick(planar.Point{X: 15, Y: 15}); ok {
		t.Error("Pick between vertices should miss")
	}
}

func TestViewIsSnapshot(t *testing.T) {
	s := pathSession(t, 3)
	_ = s.SetSecondaryRoot(2)
	view, err := s.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	s.AddVertex(planar.Point{X: 100, Y: 100})
	if view.Graph.Len() != 3 || view.Primary.Len() != 3 {
		t.Error("view should not observe later mutations")
	}
	if view.Depth(2) != 2 {
		t.Errorf("view.Depth(2) = %d", view.Depth(2))
	}
	l := view.Layout()
	if l.Primary != 0 || l.Secondary != 2 || len(l.Edges) != 2 || l.Diff == nil {
		t.Errorf("unexpected layout %+v", l)
	}
}

type countingHooks struct {
	observability.NoopEngineHooks
	mu        sync.Mutex
	builds    int
	mutations []string
}

func (h *countingHooks) OnMutation(op string, _, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mutations = append(h.mutations, op)
}

func (h *countingHooks) OnForestBuild(int, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.builds++
}

func TestForestCachePerRoot(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetEngineHooks(hooks)
	defer observability.Reset()

	s := pathSession(t, 4)
	_ = s.SetSecondaryRoot(3)

	for i := 0; i < 3; i++ {
		if _, err := s.View(); err != nil {
			t.Fatal(err)
		}
	}
	if hooks.builds != 2 {
		t.Errorf("builds = %d, want 2 (one per root)", hooks.builds)
	}

	s.AddVertex(planar.Point{X: 1, Y: 1})
	if _, err := s.Diff(); err != nil {
		t.Fatal(err)
	}
	if hooks.builds != 4 {
		t.Errorf("builds after mutation = %d, want 4", hooks.builds)
	}
	if !slices.Contains(hooks.mutations, "add_vertex") || !slices.Contains(hooks.mutations, "add_edge") {
		t.Errorf("mutations = %v", hooks.mutations)
	}
}

func TestForestCacheKeepsSelectedRoots(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetEngineHooks(hooks)
	defer observability.Reset()

	s := pathSession(t, 4)
	_ = s.SetSecondaryRoot(3)
	if _, err := s.View(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		f, err := s.Forest(1)
		if err != nil {
			t.Fatal(err)
		}
		if f.Root() != 1 || f.Depth(3) != 2 {
			t.Errorf("Forest(1): root %d, depth(3) = %d", f.Root(), f.Depth(3))
		}
	}
	if hooks.builds != 5 {
		t.Errorf("builds = %d, want 5 (other roots are not cached)", hooks.builds)
	}
	if len(s.forests) != 2 {
		t.Errorf("cached forests = %d, want 2", len(s.forests))
	}

	one := 1
	if err := s.SetRoots(&one, nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.forests[0]; ok {
		t.Error("forest of the old primary root is still cached")
	}
	if _, err := s.Forest(1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Forest(1); err != nil {
		t.Fatal(err)
	}
	if hooks.builds != 6 {
		t.Errorf("builds = %d, want 6 after selecting root 1", hooks.builds)
	}
}

func TestSetRoots(t *testing.T) {
	s := pathSession(t, 3)

	two, bad := 2, 99
	err := s.SetRoots(&two, &bad)
	if !errs.Is(err, errs.ErrCodeInvalidVertexID) {
		t.Fatalf("SetRoots(2, 99) = %v, want INVALID_VERTEX_ID", err)
	}
	if p, q := s.Roots(); p != 0 || q != 0 {
		t.Errorf("roots after failed SetRoots = %d, %d, want 0, 0", p, q)
	}

	if err := s.SetRoots(nil, &two); err != nil {
		t.Fatal(err)
	}
	if err := s.SetRoots(nil, nil); err != nil {
		t.Fatal(err)
	}
	if p, q := s.Roots(); p != 0 || q != 2 {
		t.Errorf("Roots() = %d, %d, want 0, 2", p, q)
	}
}

func TestDepthDiffSameGraph(t *testing.T) {
	path := []planar.Record{
		{Neighbors: []int{1}, Position: planar.Point{X: 0, Y: 0}},
		{Neighbors: []int{0, 2}, Position: planar.Point{X: 10, Y: 0}},
		{Neighbors: []int{1, 3}, Position: planar.Point{X: 20, Y: 0}},
		{Neighbors: []int{2}, Position: planar.Point{X: 30, Y: 0}},
	}
	star := []planar.Record{
		{Neighbors: []int{1, 2, 3}, Position: planar.Point{X: 0, Y: 0}},
		{Neighbors: []int{0}, Position: planar.Point{X: 10, Y: 0}},
		{Neighbors: []int{0}, Position: planar.Point{X: 0, Y: 10}},
		{Neighbors: []int{0}, Position: planar.Point{X: -10, Y: 0}},
	}

	s := New(quietLogger())
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSecondaryRoot(3); err != nil {
		t.Fatal(err)
	}

	// Vertex 3 answers (3, 3) on the path and (1, 1) on the star. Any other
	// pair mixes the two graphs.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			records := path
			if i%2 == 0 {
				records = star
			}
			if err := s.Load(records); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	for i := 0; i < 500; i++ {
		depth, diff, err := s.DepthDiff(3)
		if err != nil {
			t.Fatal(err)
		}
		if depth != diff || (depth != 1 && depth != 3) {
			t.Fatalf("DepthDiff(3) = %d, %d; want a pair from one graph", depth, diff)
		}
	}
	close(done)
	wg.Wait()

	if _, _, err := s.DepthDiff(7); !errs.Is(err, errs.ErrCodeInvalidVertexID) {
		t.Errorf("DepthDiff(7) = %v, want INVALID_VERTEX_ID", err)
	}
}

func TestSnapshot(t *testing.T) {
	s := pathSession(t, 3)
	_ = s.SetSecondaryRoot(2)

	g, p, q := s.Snapshot()
	s.Reset()
	if g.Len() != 3 || p != 0 || q != 2 {
		t.Errorf("Snapshot() = %d vertices, roots %d/%d; want 3, 0/2", g.Len(), p, q)
	}
}

func TestConcurrentMutationAndQuery(t *testing.T) {
	s := pathSession(t, 50)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if w%2 == 0 {
					v := s.AddVertex(planar.Point{X: float64(i), Y: float64(w * 100)})
					_ = s.AddEdge(v, i)
				} else {
					view, err := s.View()
					if err != nil {
						t.Error(err)
						return
					}
					if view.Primary.Len() != view.Graph.Len() {
						t.Errorf("forest covers %d vertices, graph has %d", view.Primary.Len(), view.Graph.Len())
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()
	if err := s.Graph().Validate(); err != nil {
		t.Errorf("Validate after concurrent use: %v", err)
	}
}
