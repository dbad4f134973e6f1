package layout

import (
	"math"
	"slices"

	"github.com/provgraph/provis/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// Margin pads the aggregate Width/Height around the node bounding box.
	Margin = 18.0

	// DefaultNodeWidth and DefaultNodeHeight size plain nodes that carry
	// no hint (0.75in x 0.5in at 72 units per inch).
	DefaultNodeWidth  = 54.0
	DefaultNodeHeight = 36.0

	// DefaultPlaceholderWidth and DefaultPlaceholderHeight size summary
	// placeholders whose contents have not been computed yet.
	DefaultPlaceholderWidth  = 108.0
	DefaultPlaceholderHeight = 72.0
)

// =============================================================================
// Node and Edge
// =============================================================================

// Node is the geometry of one graph node: a center position and a size.
// Nodes are owned by exactly one Store; Merge copies them, never shares.
type Node struct {
	Index  int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Edge is the geometry of one graph edge: an ordered control-point
// polyline. Both endpoints are nodes of the same store.
type Edge struct {
	Index   int
	From    *Node
	To      *Node
	XPoints []float64
	YPoints []float64
}

// Sizer reports the index ranges of the graph a store belongs to.
// *prov.Graph satisfies it.
type Sizer interface {
	NodeCount() int
	EdgeCount() int
}

// =============================================================================
// Store
// =============================================================================

// Store holds the computed geometry of one layout.
//
// The zero value is not usable - use [New] or [NewFor].
type Store struct {
	nodes map[int]*Node
	edges map[int]*Edge

	stats   Stats
	statsOK bool

	// Index bounds for the validated insert path, -1 when unbounded.
	nodeBound int
	edgeBound int
}

// New creates an empty store without index bounds.
func New() *Store {
	return &Store{
		nodes:     make(map[int]*Node),
		edges:     make(map[int]*Edge),
		nodeBound: -1,
		edgeBound: -1,
	}
}

// NewFor creates an empty store bounded by the graph's index ranges.
// PutNode and PutEdge reject indices outside them.
func NewFor(g Sizer) *Store {
	s := New()
	s.nodeBound = g.NodeCount()
	s.edgeBound = g.EdgeCount()
	return s
}

// =============================================================================
// Insertion
// =============================================================================

// AddNode inserts a copy of n and returns the stored node.
// This is the fast path used during bulk construction: the index is not
// checked against the graph. Inserting over an existing index replaces
// the entry and invalidates statistics.
func (s *Store) AddNode(n Node) *Node {
	_, replaced := s.nodes[n.Index]
	node := &n
	s.nodes[node.Index] = node

	if replaced {
		s.statsOK = false
	} else if s.statsOK {
		s.stats.grow(node)
	}
	return node
}

// PutNode inserts a copy of n after checking the index against the
// associated graph. Returns an INDEX_OUT_OF_RANGE error for indices the
// graph does not have.
func (s *Store) PutNode(n Node) (*Node, error) {
	if s.nodeBound >= 0 && (n.Index < 0 || n.Index >= s.nodeBound) {
		return nil, errors.New(errors.ErrCodeIndexRange, "node index %d outside graph range [0,%d)", n.Index, s.nodeBound)
	}
	return s.AddNode(n), nil
}

// AddEdge inserts an edge connecting the stored nodes with the given
// indices. When xs/ys are empty the polyline defaults to the two endpoint
// centers. The point slices are copied. Returns an EDGE_ENDPOINT_MISSING
// error when either endpoint is absent from the store.
func (s *Store) AddEdge(index, from, to int, xs, ys []float64) (*Edge, error) {
	fromNode := s.nodes[from]
	toNode := s.nodes[to]
	if fromNode == nil {
		return nil, errors.New(errors.ErrCodeEdgeEndpoint, "edge %d: source node %d not in store", index, from)
	}
	if toNode == nil {
		return nil, errors.New(errors.ErrCodeEdgeEndpoint, "edge %d: target node %d not in store", index, to)
	}
	if len(xs) != len(ys) {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "edge %d: %d x points vs %d y points", index, len(xs), len(ys))
	}

	edge := &Edge{Index: index, From: fromNode, To: toNode}
	if len(xs) == 0 {
		edge.XPoints = []float64{fromNode.X, toNode.X}
		edge.YPoints = []float64{fromNode.Y, toNode.Y}
	} else {
		edge.XPoints = slices.Clone(xs)
		edge.YPoints = slices.Clone(ys)
	}
	s.edges[index] = edge
	return edge, nil
}

// PutEdge inserts an edge after checking the edge index against the
// associated graph. Endpoint presence is checked as in AddEdge.
func (s *Store) PutEdge(index, from, to int, xs, ys []float64) (*Edge, error) {
	if s.edgeBound >= 0 && (index < 0 || index >= s.edgeBound) {
		return nil, errors.New(errors.ErrCodeIndexRange, "edge index %d outside graph range [0,%d)", index, s.edgeBound)
	}
	return s.AddEdge(index, from, to, xs, ys)
}

// =============================================================================
// Access
// =============================================================================

// Node returns the geometry of the node with the given index, or nil.
func (s *Store) Node(index int) *Node { return s.nodes[index] }

// Edge returns the geometry of the edge with the given index, or nil.
func (s *Store) Edge(index int) *Edge { return s.edges[index] }

// NodeCount returns the number of layout nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of layout edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

// Nodes returns all layout nodes sorted by index.
func (s *Store) Nodes() []*Node {
	out := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *Node) int { return a.Index - b.Index })
	return out
}

// Edges returns all layout edges sorted by index.
func (s *Store) Edges() []*Edge {
	out := make([]*Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Edge) int { return a.Index - b.Index })
	return out
}

// Stats returns the aggregate statistics, recomputing them when stale.
// ok is false for an empty store.
func (s *Store) Stats() (stats Stats, ok bool) {
	if !s.ensureStats() {
		return Stats{}, false
	}
	return s.stats, true
}

// Width returns the horizontal extent of the layout:
// (xMax-xMin) + 2*Margin + maxNodeWidth. The max-node term accounts for
// node half-extents without per-node min/max bookkeeping. Zero for an
// empty store.
func (s *Store) Width() float64 {
	if !s.ensureStats() {
		return 0
	}
	return (s.stats.XMax - s.stats.XMin) + 2*Margin + s.stats.MaxNodeWidth
}

// Height returns the vertical extent of the layout, analogous to Width.
func (s *Store) Height() float64 {
	if !s.ensureStats() {
		return 0
	}
	return (s.stats.YMax - s.stats.YMin) + 2*Margin + s.stats.MaxNodeHeight
}

// =============================================================================
// Geometry Operations
// =============================================================================

// Translate shifts every node position and edge control point by (dx, dy).
// Valid statistics are shifted along.
func (s *Store) Translate(dx, dy float64) {
	for _, n := range s.nodes {
		n.X += dx
		n.Y += dy
	}
	for _, e := range s.edges {
		for i := range e.XPoints {
			e.XPoints[i] += dx
			e.YPoints[i] += dy
		}
	}
	if s.statsOK {
		s.stats.XMin += dx
		s.stats.XMax += dx
		s.stats.YMin += dy
		s.stats.YMax += dy
	}
}

// ScaleAround scales positions and control points about the pivot (px, py)
// and node sizes by |sx|, |sy|. Valid statistics are transformed along.
func (s *Store) ScaleAround(sx, sy, px, py float64) {
	for _, n := range s.nodes {
		n.X = px + (n.X-px)*sx
		n.Y = py + (n.Y-py)*sy
		n.Width *= math.Abs(sx)
		n.Height *= math.Abs(sy)
	}
	for _, e := range s.edges {
		for i := range e.XPoints {
			e.XPoints[i] = px + (e.XPoints[i]-px)*sx
			e.YPoints[i] = py + (e.YPoints[i]-py)*sy
		}
	}
	if s.statsOK {
		x1 := px + (s.stats.XMin-px)*sx
		x2 := px + (s.stats.XMax-px)*sx
		y1 := py + (s.stats.YMin-py)*sy
		y2 := py + (s.stats.YMax-py)*sy
		s.stats.XMin = math.Min(x1, x2)
		s.stats.XMax = math.Max(x1, x2)
		s.stats.YMin = math.Min(y1, y2)
		s.stats.YMax = math.Max(y1, y2)
		s.stats.MaxNodeWidth *= math.Abs(sx)
		s.stats.MaxNodeHeight *= math.Abs(sy)
	}
}

// CenterAt translates the layout so the statistics bounding-box center
// lands on (x, y). No-op for an empty store.
func (s *Store) CenterAt(x, y float64) {
	if !s.ensureStats() {
		return
	}
	cx := (s.stats.XMin + s.stats.XMax) / 2
	cy := (s.stats.YMin + s.stats.YMax) / 2
	s.Translate(x-cx, y-cy)
}

// Reset removes every node and edge. Index bounds survive, statistics
// are invalidated. Used by strategies that replace a layout wholesale
// instead of patching it.
func (s *Store) Reset() {
	clear(s.nodes)
	clear(s.edges)
	s.statsOK = false
}

// =============================================================================
// Merge
// =============================================================================

// Merge imports other's entries into s. Incoming nodes and edges are
// copied; stores never share geometry.
//
// With overwrite=false only entries absent from s are added, and incoming
// edges are re-linked to s's existing nodes. With overwrite=true
// conflicting entries are replaced and every edge is re-linked afterwards.
//
// Statistics survive a non-overwrite merge when both sides carry valid
// statistics and the two bounding boxes do not intersect; any other merge
// invalidates them for lazy recomputation.
func (s *Store) Merge(other *Store, overwrite bool) {
	if other == nil || (len(other.nodes) == 0 && len(other.edges) == 0) {
		return
	}

	combinable := !overwrite && s.statsOK && other.statsOK && s.stats.disjoint(other.stats)

	for idx, on := range other.nodes {
		if _, exists := s.nodes[idx]; exists && !overwrite {
			continue
		}
		cp := *on
		s.nodes[idx] = &cp
	}

	for idx, oe := range other.edges {
		if _, exists := s.edges[idx]; exists && !overwrite {
			continue
		}
		s.edges[idx] = &Edge{
			Index:   oe.Index,
			From:    s.nodes[oe.From.Index],
			To:      s.nodes[oe.To.Index],
			XPoints: slices.Clone(oe.XPoints),
			YPoints: slices.Clone(oe.YPoints),
		}
	}

	if overwrite {
		// Replaced nodes orphan the edges that pointed at them.
		for _, e := range s.edges {
			if n := s.nodes[e.From.Index]; n != nil {
				e.From = n
			}
			if n := s.nodes[e.To.Index]; n != nil {
				e.To = n
			}
		}
	}

	if combinable {
		s.stats.combine(other.stats)
	} else {
		s.statsOK = false
	}
}

// Clone returns a deep copy of the store, including bounds and statistics.
func (s *Store) Clone() *Store {
	out := New()
	out.nodeBound = s.nodeBound
	out.edgeBound = s.edgeBound
	out.stats = s.stats
	out.statsOK = s.statsOK
	for idx, n := range s.nodes {
		cp := *n
		out.nodes[idx] = &cp
	}
	for idx, e := range s.edges {
		out.edges[idx] = &Edge{
			Index:   e.Index,
			From:    out.nodes[e.From.Index],
			To:      out.nodes[e.To.Index],
			XPoints: slices.Clone(e.XPoints),
			YPoints: slices.Clone(e.YPoints),
		}
	}
	return out
}

// ensureStats recomputes statistics when stale. Returns false for an
// empty store.
func (s *Store) ensureStats() bool {
	if len(s.nodes) == 0 {
		s.statsOK = false
		return false
	}
	if s.statsOK {
		return true
	}
	s.stats = Stats{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
	}
	for _, n := range s.nodes {
		s.stats.grow(n)
	}
	s.statsOK = true
	return true
}
