// Package api exposes a layout session over HTTP for GUI collaborators.
//
// The server owns one provenance graph, its layout store, and the live
// strategy bound to that graph. Read endpoints share a read lock; expand
// runs the strategy's incremental update under the write lock, so a GUI
// can click through summaries while other clients keep reading.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/provgraph/provis/pkg/cache"
	"github.com/provgraph/provis/pkg/engine"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/observability"
	"github.com/provgraph/provis/pkg/prov"
)

// Server serves one graph and its layout session.
type Server struct {
	logger *log.Logger

	mu    sync.RWMutex
	graph *prov.Graph
	store *layout.Store
	alg   engine.Algorithm
	hash  string
}

// New creates a server for the given graph, its computed layout, and the
// strategy the layout was computed with. The strategy must be bound to
// the graph (Initialize already called) so expansions work incrementally.
func New(g *prov.Graph, store *layout.Store, alg engine.Algorithm, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		logger: logger,
		graph:  g,
		store:  store,
		alg:    alg,
		hash:   graphHash(g),
	}
}

// Reload swaps in a fresh graph, layout, and strategy. Used by serve
// --watch when the graph file changes on disk.
func (s *Server) Reload(g *prov.Graph, store *layout.Store, alg engine.Algorithm) {
	hash := graphHash(g)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.store = store
	s.alg = alg
	s.hash = hash
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/layout", s.handleLayout)
		r.Get("/layout/nodes/{index}", s.handleNode)
		r.Get("/layout/edges/{index}", s.handleEdge)
		r.Post("/layout/expand", s.handleExpand)
	})

	return r
}

// logRequests emits one structured log line per request and drives the
// server observability hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", elapsed,
			"id", middleware.GetReqID(r.Context()))
	})
}

func graphHash(g *prov.Graph) string {
	data, err := prov.MarshalGraph(g)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
