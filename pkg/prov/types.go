package prov

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// NodeKind distinguishes the PROV-DM node categories and summary nodes.
type NodeKind int

const (
	// KindEntity represents a thing with provenance: a file, dataset, result.
	KindEntity NodeKind = iota
	// KindActivity represents something that occurred over time and acted
	// upon or with entities.
	KindActivity
	// KindAgent represents something that bears responsibility for an
	// activity or entity.
	KindAgent
	// KindSummary represents a group of nodes collapsed into one box.
	// Summary nodes are structural: they never appear as edge endpoints.
	KindSummary
)

// Node kind names used in serialization.
const (
	KindNameEntity   = "entity"
	KindNameActivity = "activity"
	KindNameAgent    = "agent"
	KindNameSummary  = "summary"
)

// String returns the serialized kind name.
func (k NodeKind) String() string {
	switch k {
	case KindActivity:
		return KindNameActivity
	case KindAgent:
		return KindNameAgent
	case KindSummary:
		return KindNameSummary
	default:
		return KindNameEntity
	}
}

// EdgeKind distinguishes the PROV-DM relation types.
type EdgeKind int

const (
	// EdgeDerived: entity was derived from another entity.
	EdgeDerived EdgeKind = iota
	// EdgeUsed: activity used an entity.
	EdgeUsed
	// EdgeGenerated: entity was generated by an activity.
	EdgeGenerated
	// EdgeInformed: activity was informed by another activity.
	EdgeInformed
	// EdgeAttributed: entity was attributed to an agent.
	EdgeAttributed
	// EdgeAssociated: activity was associated with an agent.
	EdgeAssociated
)

// Edge kind names used in serialization.
const (
	EdgeNameDerived    = "derived"
	EdgeNameUsed       = "used"
	EdgeNameGenerated  = "generated"
	EdgeNameInformed   = "informed"
	EdgeNameAttributed = "attributed"
	EdgeNameAssociated = "associated"
)

// String returns the serialized kind name.
func (k EdgeKind) String() string {
	switch k {
	case EdgeUsed:
		return EdgeNameUsed
	case EdgeGenerated:
		return EdgeNameGenerated
	case EdgeInformed:
		return EdgeNameInformed
	case EdgeAttributed:
		return EdgeNameAttributed
	case EdgeAssociated:
		return EdgeNameAssociated
	default:
		return EdgeNameDerived
	}
}

// =============================================================================
// Node
// =============================================================================

// Node is a vertex in the provenance graph. Plain nodes (entity, activity,
// agent) are the leaves of the summary tree; summary nodes group other nodes.
//
// The zero value is not usable on its own - add nodes through [Graph.AddNode]
// or [Graph.AddSummary], which assign the index and wire tree links.
type Node struct {
	ID     string   // Unique identifier within the graph
	Label  string   // Display label (defaults to ID)
	Kind   NodeKind
	Width  float64  // Size hint in layout units, 0 = engine default
	Height float64  // Size hint in layout units, 0 = engine default

	// Visible marks whether the node participates in views at all.
	// Hidden nodes are excluded from the frontier and from exports.
	Visible bool

	// Expanded marks whether a summary node shows its children.
	// Meaningless for plain nodes.
	Expanded bool

	index    int
	parent   *Node
	children []*Node
}

// Index returns the dense index assigned when the node was added.
func (n *Node) Index() int { return n.index }

// Parent returns the enclosing summary node, or nil at the top level.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the immediate children of a summary node. The returned
// slice is owned by the graph and must not be modified. Nil for plain nodes.
func (n *Node) Children() []*Node { return n.children }

// IsSummary reports whether this is a summary node.
func (n *Node) IsSummary() bool { return n.Kind == KindSummary }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge
// =============================================================================

// Edge represents a directed provenance relation between two plain nodes.
// Endpoints are stored as node IDs; use [Graph.NodeByID] to resolve them.
type Edge struct {
	From string
	To   string
	Kind EdgeKind

	index int
}

// Index returns the dense index assigned when the edge was added.
func (e *Edge) Index() int { return e.index }

// =============================================================================
// MappedEdge
// =============================================================================

// MappedEdge is an original edge viewed at a coarser level of the summary
// tree: both endpoints are replaced by the nodes that stand in for them in
// the current view. Parallel originals collapsing onto the same endpoint
// pair are deduplicated; Edge keeps the lowest-indexed original.
type MappedEdge struct {
	From *Node
	To   *Node
	Edge *Edge
}
