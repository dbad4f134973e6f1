package prov

// Index views expose the graph as plain ints so consumers can depend on a
// small interface instead of this package's node and edge types. The layout
// engine and the persisted-layout reader both run on these.

// RootIndex returns the index of the summary tree root, or -1 when the
// graph has none.
func (g *Graph) RootIndex() int {
	root := g.Root()
	if root == nil {
		return -1
	}
	return root.index
}

// Label returns the display label of the node with the given index, or ""
// when out of range.
func (g *Graph) Label(index int) string {
	n := g.Node(index)
	if n == nil {
		return ""
	}
	return n.DisplayLabel()
}

// SizeHint returns the preferred size of the node with the given index.
// Zero dimensions mean the caller should fall back to its defaults.
func (g *Graph) SizeHint(index int) (width, height float64) {
	n := g.Node(index)
	if n == nil {
		return 0, 0
	}
	return n.Width, n.Height
}

// IsSummary reports whether the node with the given index is a summary.
func (g *Graph) IsSummary(index int) bool {
	n := g.Node(index)
	return n != nil && n.IsSummary()
}

// ParentIndex returns the index of the node's enclosing summary, or -1
// when the node is top-level or the index is out of range.
func (g *Graph) ParentIndex(index int) int {
	n := g.Node(index)
	if n == nil || n.parent == nil {
		return -1
	}
	return n.parent.index
}

// ChildIndices returns the indices of a summary's immediate children in
// insertion order. Nil for plain nodes.
func (g *Graph) ChildIndices(index int) []int {
	n := g.Node(index)
	if n == nil || len(n.children) == 0 {
		return nil
	}
	out := make([]int, len(n.children))
	for i, c := range n.children {
		out[i] = c.index
	}
	return out
}

// FrontierIndices returns the indices of the frontier view in index order.
func (g *Graph) FrontierIndices() []int {
	frontier := g.Frontier()
	out := make([]int, len(frontier))
	for i, n := range frontier {
		out[i] = n.index
	}
	return out
}

// FrontierEdgeCuts returns the frontier view's edges as
// {edge index, source index, target index} triples, endpoints mapped to
// their representatives.
func (g *Graph) FrontierEdgeCuts() [][3]int {
	return cuts(g.FrontierEdges())
}

// EdgeCuts returns the edges confined to the summary with the given index
// as {edge index, source index, target index} triples, endpoints mapped to
// the summary's immediate children. Nil for plain nodes.
func (g *Graph) EdgeCuts(index int) [][3]int {
	n := g.Node(index)
	if n == nil || !n.IsSummary() {
		return nil
	}
	return cuts(g.InternalEdges(n))
}

// EdgeEndpoints returns the raw endpoint indices of the edge with the
// given index. ok is false when the index is out of range.
func (g *Graph) EdgeEndpoints(index int) (from, to int, ok bool) {
	e := g.Edge(index)
	if e == nil {
		return 0, 0, false
	}
	return g.byID[e.From].index, g.byID[e.To].index, true
}

func cuts(edges []MappedEdge) [][3]int {
	if len(edges) == 0 {
		return nil
	}
	out := make([][3]int, len(edges))
	for i, me := range edges {
		out[i] = [3]int{me.Edge.Index(), me.From.Index(), me.To.Index()}
	}
	return out
}
