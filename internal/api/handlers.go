package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/provgraph/provis/pkg/buildinfo"
	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
)

// =============================================================================
// Wire Types
// =============================================================================

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

type graphResponse struct {
	Hash      string `json:"hash"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Summaries int    `json:"summaries"`
	Root      int    `json:"root"`
}

type nodeJSON struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type edgeJSON struct {
	Index   int       `json:"index"`
	From    int       `json:"from"`
	To      int       `json:"to"`
	XPoints []float64 `json:"x_points"`
	YPoints []float64 `json:"y_points"`
}

type layoutResponse struct {
	Nodes  []nodeJSON `json:"nodes"`
	Edges  []edgeJSON `json:"edges"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
}

type expandRequest struct {
	Index int `json:"index"`
}

type expandResponse struct {
	Index      int     `json:"index"`
	AddedNodes int     `json:"added_nodes"`
	AddedEdges int     `json:"added_edges"`
	Nodes      int     `json:"nodes"`
	Edges      int     `json:"edges"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

func toNodeJSON(n *layout.Node) nodeJSON {
	return nodeJSON{Index: n.Index, X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

func toEdgeJSON(e *layout.Edge) edgeJSON {
	return edgeJSON{
		Index:   e.Index,
		From:    e.From.Index,
		To:      e.To.Index,
		XPoints: e.XPoints,
		YPoints: e.YPoints,
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: buildinfo.Version,
		Commit:  buildinfo.Commit,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, graphResponse{
		Hash:      s.hash,
		Nodes:     s.graph.NodeCount(),
		Edges:     s.graph.EdgeCount(),
		Summaries: s.graph.SummaryCount(),
		Root:      s.graph.RootIndex(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := layoutResponse{
		Nodes:  make([]nodeJSON, 0, s.store.NodeCount()),
		Edges:  make([]edgeJSON, 0, s.store.EdgeCount()),
		Width:  s.store.Width(),
		Height: s.store.Height(),
	}
	for _, n := range s.store.Nodes() {
		resp.Nodes = append(resp.Nodes, toNodeJSON(n))
	}
	for _, e := range s.store.Edges() {
		resp.Edges = append(resp.Edges, toEdgeJSON(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.store.Node(index)
	if n == nil {
		writeError(w, errors.New(errors.ErrCodeIndexRange, "no node with index %d", index))
		return
	}
	writeJSON(w, http.StatusOK, toNodeJSON(n))
}

func (s *Server) handleEdge(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.store.Edge(index)
	if e == nil {
		writeError(w, errors.New(errors.ErrCodeIndexRange, "no edge with index %d", index))
		return
	}
	writeJSON(w, http.StatusOK, toEdgeJSON(e))
}

// handleExpand opens a summary node and updates the layout in place.
// Expanding an already-open summary is a no-op success, so GUI retries
// stay safe.
func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid expand request: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.graph.Node(req.Index)
	if n == nil {
		writeError(w, errors.New(errors.ErrCodeIndexRange, "no node with index %d", req.Index))
		return
	}
	if !n.IsSummary() {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "node %d is not a summary", req.Index))
		return
	}

	nodesBefore := s.store.NodeCount()
	edgesBefore := s.store.EdgeCount()

	if !n.Expanded {
		s.graph.Expand(n)
		if err := s.alg.Update(r.Context(), s.store, req.Index); err != nil {
			// Roll the frontier back so the graph and store stay in step.
			s.graph.Collapse(n)
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, expandResponse{
		Index:      req.Index,
		AddedNodes: s.store.NodeCount() - nodesBefore,
		AddedEdges: s.store.EdgeCount() - edgesBefore,
		Nodes:      s.store.NodeCount(),
		Edges:      s.store.EdgeCount(),
		Width:      s.store.Width(),
		Height:     s.store.Height(),
	})
}

func indexParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid index %q", raw)
	}
	return index, nil
}
