// Package session owns the mutable state of one interactive graph: the graph
// store, the primary and secondary roots, and the forests built from them.
//
// # Consistency
//
// Every mutating call marks the session dirty. Queries rebuild the forests
// they need before answering, under the same lock as the mutation, so a
// caller never observes a forest built for an older graph:
//
//	s := session.New(logger)
//	v := s.AddVertex(planar.Point{X: 10, Y: 10})
//	_ = s.AddEdge(0, v)
//	d, err := s.Depth(v) // rebuilds, then answers
//
// The forests of the two selected roots are cached and discarded as a whole
// on the next mutation. Forests for any other root are built on demand and
// not kept.
//
// # Stores
//
// The HTTP server keeps many sessions in a [Store]. [MemoryStore] assigns
// uuid identifiers and expires sessions that have not been touched within
// their TTL.
package session

import (
	"maps"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/forest"
	"github.com/matzehuels/sptree/pkg/graph"
	"github.com/matzehuels/sptree/pkg/observability"
	"github.com/matzehuels/sptree/pkg/planar"
)

// DefaultRoot is the root a fresh or reset session uses for both forests.
const DefaultRoot = 0

// Session is one graph with its primary and secondary roots.
// All methods are safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	g         *planar.Graph
	primary   int
	secondary int
	forests   map[int]*forest.Forest
	dirty     bool
	logger    *log.Logger
}

// New creates a session over an empty graph with both roots at 0.
// A nil logger uses log.Default().
func New(logger *log.Logger) *Session {
	return NewWithGraph(planar.New(), logger)
}

// NewWithGraph creates a session that takes ownership of g.
func NewWithGraph(g *planar.Graph, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		CreatedAt: time.Now(),
		g:         g,
		primary:   DefaultRoot,
		secondary: DefaultRoot,
		forests:   make(map[int]*forest.Forest),
		dirty:     true,
		logger:    logger,
	}
}

// =============================================================================
// Mutations
// =============================================================================

// AddVertex appends a vertex at p and returns its id.
func (s *Session) AddVertex(p planar.Point) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.g.AddVertex(p)
	s.markDirty("add_vertex")
	return v
}

// AddEdge connects u and v. Adding an existing edge is a no-op and leaves
// the forests valid.
func (s *Session) AddEdge(u, v int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.g.Version()
	if err := s.g.AddEdge(u, v); err != nil {
		return err
	}
	if s.g.Version() != before {
		s.markDirty("add_edge")
	}
	return nil
}

// SetPrimaryRoot selects the root of the primary forest.
func (s *Session) SetPrimaryRoot(r int) error {
	return s.SetRoots(&r, nil)
}

// SetSecondaryRoot selects the root of the secondary forest used for diffs.
func (s *Session) SetSecondaryRoot(r int) error {
	return s.SetRoots(nil, &r)
}

// SetRoots moves each root that is non-nil. Both are checked before either
// changes, so an invalid root leaves the session as it was.
func (s *Session) SetRoots(primary, secondary *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range []*int{primary, secondary} {
		if r == nil {
			continue
		}
		if err := s.checkRoot(*r); err != nil {
			return err
		}
	}
	if primary != nil {
		s.primary = *primary
	}
	if secondary != nil {
		s.secondary = *secondary
	}
	maps.DeleteFunc(s.forests, func(root int, _ *forest.Forest) bool {
		return !s.selected(root)
	})
	observability.Engine().OnMutation("set_root", s.g.Len(), s.g.EdgeCount())
	return nil
}

// Reset empties the graph and restores both roots to the default.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.g.Reset()
	s.primary, s.secondary = DefaultRoot, DefaultRoot
	s.markDirty("reset")
}

// Load replaces the graph with records. Roots outside the new graph fall
// back to the default. On error the session is unchanged.
func (s *Session) Load(records []planar.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.g.Load(records); err != nil {
		return err
	}
	if !s.g.HasVertex(s.primary) {
		s.primary = DefaultRoot
	}
	if !s.g.HasVertex(s.secondary) {
		s.secondary = DefaultRoot
	}
	s.markDirty("load")
	return nil
}

// =============================================================================
// Queries
// =============================================================================

// Export returns the current graph as records.
func (s *Session) Export() []planar.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Export()
}

// Graph returns a snapshot copy of the current graph.
func (s *Session) Graph() *planar.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Clone()
}

// Len returns the number of vertices.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Len()
}

// Roots returns the primary and secondary roots.
func (s *Session) Roots() (primary, secondary int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.primary, s.secondary
}

// Snapshot returns a copy of the graph together with the roots selected on
// it at the same instant.
func (s *Session) Snapshot() (g *planar.Graph, primary, secondary int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Clone(), s.primary, s.secondary
}

// Dirty reports whether the graph changed since forests were last built.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Pick returns the vertex within [planar.DefaultPickRadius2] of p, if any.
func (s *Session) Pick(p planar.Point) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.NearestVertex(p, planar.DefaultPickRadius2)
}

// Forest returns the forest rooted at root, building it if needed. Only the
// forests of the primary and secondary roots are kept between calls.
func (s *Session) Forest(root int) (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest(root)
}

// Primary returns the forest rooted at the primary root.
func (s *Session) Primary() (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest(s.primary)
}

// Secondary returns the forest rooted at the secondary root.
func (s *Session) Secondary() (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest(s.secondary)
}

// Depth returns the depth of v in the primary forest.
func (s *Session) Depth(v int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.g.HasVertex(v) {
		return 0, errs.VertexOutOfRange(v, s.g.Len())
	}
	f, err := s.forest(s.primary)
	if err != nil {
		return 0, err
	}
	return f.Depth(v), nil
}

// DepthDiff returns the primary depth of v and its depth difference, both
// taken from the same pair of forests.
func (s *Session) DepthDiff(v int) (depth, diff int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.g.HasVertex(v) {
		return 0, 0, errs.VertexOutOfRange(v, s.g.Len())
	}
	d, err := s.diff()
	if err != nil {
		return 0, 0, err
	}
	f, err := s.forest(s.primary)
	if err != nil {
		return 0, 0, err
	}
	return f.Depth(v), d.At(v), nil
}

// Diff compares the primary forest against the secondary forest.
func (s *Session) Diff() (*forest.Diff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diff()
}

// DiffAt returns the primary-minus-secondary depth difference at v.
func (s *Session) DiffAt(v int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.g.HasVertex(v) {
		return 0, errs.VertexOutOfRange(v, s.g.Len())
	}
	d, err := s.diff()
	if err != nil {
		return 0, err
	}
	return d.At(v), nil
}

// View is a consistent snapshot of everything a renderer draws.
type View struct {
	Graph     *planar.Graph
	Primary   *forest.Forest
	Secondary *forest.Forest
	Diff      *forest.Diff
}

// Depth returns the primary depth of v.
func (v View) Depth(i int) int { return v.Primary.Depth(i) }

// Layout converts the view to its JSON form.
func (v View) Layout() graph.Layout {
	return graph.NewLayout(v.Graph, v.Primary, v.Secondary, v.Diff)
}

// View rebuilds as needed and returns a snapshot that later mutations do
// not affect.
func (s *Session) View() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.forest(s.primary)
	if err != nil {
		return View{}, err
	}
	b, err := s.forest(s.secondary)
	if err != nil {
		return View{}, err
	}
	d, err := forest.Compare(a, b)
	if err != nil {
		return View{}, err
	}
	return View{Graph: s.g.Clone(), Primary: a, Secondary: b, Diff: d}, nil
}

// =============================================================================
// Internal Helpers (callers hold s.mu)
// =============================================================================

func (s *Session) markDirty(op string) {
	s.dirty = true
	observability.Engine().OnMutation(op, s.g.Len(), s.g.EdgeCount())
}

func (s *Session) checkRoot(r int) error {
	if s.g.Len() == 0 && r == DefaultRoot {
		return nil
	}
	if !s.g.HasVertex(r) {
		return errs.VertexOutOfRange(r, s.g.Len())
	}
	return nil
}

func (s *Session) forest(root int) (*forest.Forest, error) {
	if s.dirty {
		clear(s.forests)
		s.dirty = false
	}
	if f, ok := s.forests[root]; ok {
		return f, nil
	}

	start := time.Now()
	f, err := forest.Build(s.g, root)
	elapsed := time.Since(start)
	observability.Engine().OnForestBuild(root, s.g.Len(), elapsed, err)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("built forest",
		"root", root,
		"vertices", s.g.Len(),
		"reached", f.Reached(),
		"height", f.Height(),
		"duration", elapsed)
	if s.selected(root) {
		s.forests[root] = f
	}
	return f, nil
}

func (s *Session) selected(root int) bool {
	return root == s.primary || root == s.secondary
}

func (s *Session) diff() (*forest.Diff, error) {
	a, err := s.forest(s.primary)
	if err != nil {
		return nil, err
	}
	b, err := s.forest(s.secondary)
	if err != nil {
		return nil, err
	}
	return forest.Compare(a, b)
}
