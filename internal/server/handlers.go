package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/generate"
	"github.com/matzehuels/sptree/pkg/graph"
	"github.com/matzehuels/sptree/pkg/pipeline"
	"github.com/matzehuels/sptree/pkg/planar"
	"github.com/matzehuels/sptree/pkg/render"
	"github.com/matzehuels/sptree/pkg/session"
	"github.com/matzehuels/sptree/pkg/storage"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// CreateSessionRequest seeds a new session. Both fields empty gives an
// empty graph.
type CreateSessionRequest struct {
	Generate *generate.Options `json:"generate,omitempty"`
	Load     string            `json:"load,omitempty"`
}

// SessionResponse describes a session.
type SessionResponse struct {
	ID        string       `json:"id"`
	Vertices  int          `json:"vertices"`
	Primary   int          `json:"primary"`
	Secondary int          `json:"secondary"`
	Graph     *graph.Graph `json:"graph,omitempty"`
}

// PointRequest is a vertex position. Coordinates must be whole numbers so
// that saved graphs reload at the same positions.
type PointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EdgeRequest names the endpoints of an edge.
type EdgeRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// RootsRequest moves either root. Omitted roots are left alone.
type RootsRequest struct {
	Primary   *int `json:"primary,omitempty"`
	Secondary *int `json:"secondary,omitempty"`
}

// DepthResponse answers a depth query for one vertex.
type DepthResponse struct {
	Vertex int `json:"vertex"`
	Depth  int `json:"depth"`
	Diff   int `json:"diff"`
}

// PickResponse answers a hit test.
type PickResponse struct {
	Vertex int  `json:"vertex"`
	Found  bool `json:"found"`
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Generate != nil && req.Load != "" {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "generate and load are mutually exclusive"))
		return
	}

	g, err := s.seedGraph(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := session.NewWithGraph(g, s.logger)
	id, err := s.sessions.Create(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created", "id", id, "vertices", g.Len())
	writeJSON(w, http.StatusCreated, sessionResponse(id, sess, false))
}

func (s *Server) seedGraph(ctx context.Context, req CreateSessionRequest) (*planar.Graph, error) {
	switch {
	case req.Generate != nil:
		return s.runner.Load(ctx, pipeline.Options{Generate: *req.Generate})
	case req.Load != "":
		if err := errs.ValidateGraphName(req.Load); err != nil {
			return nil, err
		}
		if s.graphs == nil {
			return nil, errGraphsDisabled()
		}
		return storage.LoadGraph(ctx, s.graphs, req.Load)
	}
	return planar.New(), nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(chi.URLParam(r, "id"), sess, true))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Mutations
// =============================================================================

func (s *Server) handleAddVertex(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req PointRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errs.ValidateGridPoint(req.X, req.Y); err != nil {
		s.writeError(w, r, err)
		return
	}
	v := sess.AddVertex(planar.Point{X: req.X, Y: req.Y})
	writeJSON(w, http.StatusCreated, map[string]int{"id": v})
}

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req EdgeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sess.AddEdge(req.From, req.To); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetRoots(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req RootsRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sess.SetRoots(req.Primary, req.Secondary); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(chi.URLParam(r, "id"), sess, false))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Queries
// =============================================================================

func (s *Server) handleForest(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	root, _ := sess.Roots()
	if q := r.URL.Query().Get("root"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidVertexID, "root %q is not an integer", q))
			return
		}
		root = v
	}
	f, err := sess.Forest(root)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.FromForest(f))
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	v, err := strconv.Atoi(chi.URLParam(r, "v"))
	if err != nil {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidVertexID, "vertex %q is not an integer", chi.URLParam(r, "v")))
		return
	}
	depth, diff, err := sess.DepthDiff(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DepthResponse{Vertex: v, Depth: depth, Diff: diff})
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	view, err := sess.View()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.FromDiff(view.Diff, view.Primary.Root(), view.Secondary.Root()))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	view, err := sess.View()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Layout())
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "pick needs numeric x and y"))
		return
	}
	v, found := sess.Pick(planar.Point{X: x, Y: y})
	if !found {
		v = -1
	}
	writeJSON(w, http.StatusOK, PickResponse{Vertex: v, Found: found})
}

// =============================================================================
// Rendering and Saving
// =============================================================================

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, render.FormatDOT)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, chi.URLParam(r, "format"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, format string) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	opts := pipeline.Options{Format: format, SecondaryTree: q.Get("secondary_tree") == "true"}
	if ml := q.Get("max_labels"); ml != "" {
		n, err := strconv.Atoi(ml)
		if err != nil {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "max_labels %q is not an integer", ml))
			return
		}
		opts.MaxLabels = n
	}

	g, primary, secondary := sess.Snapshot()
	opts.Root, opts.Root2 = primary, secondary
	data, hit, err := s.runner.RenderWithCacheInfo(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	if err := errs.ValidateGraphName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.graphs == nil {
		s.writeError(w, r, errGraphsDisabled())
		return
	}
	records := sess.Export()
	if err := s.graphs.Save(r.Context(), name, records); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("graph saved", "name", name, "vertices", len(records))
	writeJSON(w, http.StatusOK, storage.Info{Name: name, Vertices: len(records)})
}

// =============================================================================
// Stored Graphs
// =============================================================================

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	if s.graphs == nil {
		s.writeError(w, r, errGraphsDisabled())
		return
	}
	infos, err := s.graphs.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if infos == nil {
		infos = []storage.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	name, ok := s.graphName(w, r)
	if !ok {
		return
	}
	g, err := storage.LoadGraph(r.Context(), s.graphs, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.FromPlanar(g))
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	name, ok := s.graphName(w, r)
	if !ok {
		return
	}
	if err := s.graphs.Delete(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

// session looks up the {id} session, writing the error response on failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) graphName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if err := errs.ValidateGraphName(name); err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	if s.graphs == nil {
		s.writeError(w, r, errGraphsDisabled())
		return "", false
	}
	return name, true
}

func sessionResponse(id string, sess *session.Session, withGraph bool) SessionResponse {
	g, primary, secondary := sess.Snapshot()
	resp := SessionResponse{ID: id, Vertices: g.Len(), Primary: primary, Secondary: secondary}
	if withGraph {
		jg := graph.FromPlanar(g)
		resp.Graph = &jg
	}
	return resp
}

func errGraphsDisabled() error {
	return errs.New(errs.ErrCodeUnsupported, "graph storage is not configured")
}
