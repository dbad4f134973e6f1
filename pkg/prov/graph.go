package prov

import (
	"errors"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] and [Graph.AddSummary]
	// when the node ID is empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] and [Graph.AddSummary]
	// when a node with the same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSummaryEndpoint is returned by [Graph.AddEdge] when an endpoint is
	// a summary node. Edges connect plain nodes; coarser views are derived
	// through endpoint mapping, never stored.
	ErrSummaryEndpoint = errors.New("edge endpoint must be a plain node")

	// ErrChildHasParent is returned by [Graph.AddSummary] and [Graph.Adopt]
	// when a child already belongs to another summary. Summary membership
	// is a strict tree.
	ErrChildHasParent = errors.New("node already belongs to a summary")

	// ErrNotSummary is returned by [Graph.Adopt] when the parent is a plain
	// node.
	ErrNotSummary = errors.New("parent is not a summary node")
)

// Graph is a provenance graph with dense node and edge indices and a strict
// tree of summary nodes layered over the plain nodes.
//
// The zero value is not usable - use [New] to create a Graph.
// Graph is not safe for concurrent writes without external synchronization.
type Graph struct {
	nodes  []*Node
	edges  []*Edge
	byID   map[string]*Node
}

// New creates an empty provenance graph.
func New() *Graph {
	return &Graph{
		byID: make(map[string]*Node),
	}
}

// =============================================================================
// Construction
// =============================================================================

// AddNode adds a plain node and assigns the next free index.
// The node's Visible flag is forced on; callers hide nodes afterwards when
// needed. Returns ErrInvalidNodeID or ErrDuplicateNodeID on bad input.
func (g *Graph) AddNode(n Node) (*Node, error) {
	if n.ID == "" {
		return nil, ErrInvalidNodeID
	}
	if _, exists := g.byID[n.ID]; exists {
		return nil, ErrDuplicateNodeID
	}
	if n.Kind == KindSummary {
		return nil, ErrNotSummary
	}

	node := &n
	node.Visible = true
	node.index = len(g.nodes)
	node.parent = nil
	node.children = nil
	g.nodes = append(g.nodes, node)
	g.byID[node.ID] = node
	return node, nil
}

// AddSummary adds a summary node grouping the given children and assigns the
// next free index. Children must already belong to the graph and must not
// have a parent yet. Summaries start collapsed.
func (g *Graph) AddSummary(n Node, children ...*Node) (*Node, error) {
	if n.ID == "" {
		return nil, ErrInvalidNodeID
	}
	if _, exists := g.byID[n.ID]; exists {
		return nil, ErrDuplicateNodeID
	}
	for _, c := range children {
		if c.parent != nil {
			return nil, ErrChildHasParent
		}
	}

	node := &n
	node.Kind = KindSummary
	node.Visible = true
	node.Expanded = false
	node.index = len(g.nodes)
	node.parent = nil
	node.children = nil
	g.nodes = append(g.nodes, node)
	g.byID[node.ID] = node

	for _, c := range children {
		c.parent = node
		node.children = append(node.children, c)
	}
	return node, nil
}

// Adopt makes parent the enclosing summary of child.
// Returns ErrNotSummary if parent is plain, or ErrChildHasParent if the
// child is already grouped.
func (g *Graph) Adopt(parent, child *Node) error {
	if !parent.IsSummary() {
		return ErrNotSummary
	}
	if child.parent != nil {
		return ErrChildHasParent
	}
	child.parent = parent
	parent.children = append(parent.children, child)
	return nil
}

// AddEdge adds a directed edge between two existing plain nodes and assigns
// the next free edge index.
func (g *Graph) AddEdge(e Edge) (*Edge, error) {
	from, ok := g.byID[e.From]
	if !ok {
		return nil, ErrUnknownSourceNode
	}
	to, ok := g.byID[e.To]
	if !ok {
		return nil, ErrUnknownTargetNode
	}
	if from.IsSummary() || to.IsSummary() {
		return nil, ErrSummaryEndpoint
	}

	edge := &e
	edge.index = len(g.edges)
	g.edges = append(g.edges, edge)
	return edge, nil
}

// =============================================================================
// Access
// =============================================================================

// NodeCount returns the number of nodes, summary nodes included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns all nodes in index order. The slice is owned by the graph.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns all edges in index order. The slice is owned by the graph.
func (g *Graph) Edges() []*Edge { return g.edges }

// Node returns the node with the given index, or nil if out of range.
func (g *Graph) Node(index int) *Node {
	if index < 0 || index >= len(g.nodes) {
		return nil
	}
	return g.nodes[index]
}

// Edge returns the edge with the given index, or nil if out of range.
func (g *Graph) Edge(index int) *Edge {
	if index < 0 || index >= len(g.edges) {
		return nil
	}
	return g.edges[index]
}

// NodeByID returns the node with the given ID, or nil if unknown.
func (g *Graph) NodeByID(id string) *Node { return g.byID[id] }

// Root returns the summary tree root: the unique parentless summary node.
// Returns nil when the graph has no summary nodes or more than one
// parentless summary.
func (g *Graph) Root() *Node {
	var root *Node
	for _, n := range g.nodes {
		if n.IsSummary() && n.parent == nil {
			if root != nil {
				return nil
			}
			root = n
		}
	}
	return root
}

// SummaryCount returns the number of summary nodes.
func (g *Graph) SummaryCount() int {
	count := 0
	for _, n := range g.nodes {
		if n.IsSummary() {
			count++
		}
	}
	return count
}

// =============================================================================
// Views
// =============================================================================

// Expand marks a summary node as expanded so the frontier descends into it.
// No-op for plain nodes.
func (g *Graph) Expand(n *Node) {
	if n.IsSummary() {
		n.Expanded = true
	}
}

// Collapse marks a summary node as collapsed.
func (g *Graph) Collapse(n *Node) {
	if n.IsSummary() {
		n.Expanded = false
	}
}

// Representative returns the node that stands in for n in the current view:
// the collapsed ancestor nearest the root, or n itself when every ancestor
// is expanded. Returns nil when n or any ancestor is hidden.
func (g *Graph) Representative(n *Node) *Node {
	if n == nil || !n.Visible {
		return nil
	}
	rep := n
	for p := n.parent; p != nil; p = p.parent {
		if !p.Visible {
			return nil
		}
		if !p.Expanded {
			rep = p
		}
	}
	return rep
}

// Frontier returns the nodes a viewer currently sees, in index order:
// plain nodes whose ancestors are all expanded, plus collapsed summary
// nodes standing in for their subtrees.
func (g *Graph) Frontier() []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if g.Representative(n) == n && !(n.IsSummary() && n.Expanded) {
			out = append(out, n)
		}
	}
	return out
}

// FrontierEdges returns the edges of the frontier view: every original edge
// with endpoints replaced by their representatives, self pairs dropped,
// parallel edges deduplicated keeping the lowest-indexed original.
func (g *Graph) FrontierEdges() []MappedEdge {
	return g.mapEdges(g.edges, g.Representative)
}

// =============================================================================
// Summary-local views
// =============================================================================

// childOf returns the immediate child of s on the path from s down to n,
// or nil when n is not a descendant of s.
func childOf(s, n *Node) *Node {
	for p := n; p != nil; p = p.parent {
		if p.parent == s {
			return p
		}
	}
	return nil
}

// InternalEdges returns the edges confined to the summary node s, with
// endpoints mapped to s's immediate children. Edges leaving the subtree are
// excluded; edges whose endpoints fall into the same child are dropped;
// parallel edges are deduplicated keeping the lowest-indexed original.
func (g *Graph) InternalEdges(s *Node) []MappedEdge {
	return g.mapEdges(g.edges, func(n *Node) *Node { return childOf(s, n) })
}

// mapEdges maps edge endpoints through rep, dropping edges with unmapped or
// identical endpoints and deduplicating by endpoint pair. Edge index order
// makes the first edge per pair the lowest-indexed one.
func (g *Graph) mapEdges(edges []*Edge, rep func(*Node) *Node) []MappedEdge {
	var out []MappedEdge
	seen := make(map[[2]int]bool)
	for _, e := range edges {
		from := rep(g.byID[e.From])
		to := rep(g.byID[e.To])
		if from == nil || to == nil || from == to {
			continue
		}
		key := [2]int{from.index, to.index}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, MappedEdge{From: from, To: to, Edge: e})
	}
	return out
}

// =============================================================================
// Tree measures
// =============================================================================

// Depth returns the height of the summary tree under n: 0 when n is plain
// or has no summary children, otherwise one more than the deepest child.
func Depth(n *Node) int {
	if n == nil || !n.IsSummary() {
		return 0
	}
	deepest := 0
	for _, c := range n.children {
		if c.IsSummary() {
			if d := Depth(c) + 1; d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}
