package layout

import "math"

// Stats is the aggregate bounding box of a store's node centers plus the
// largest node extents. Whenever valid, XMin <= every node.X <= XMax (and
// the same for Y); the invariant is only suspended between a bulk merge
// and the next query.
type Stats struct {
	XMin, XMax float64
	YMin, YMax float64

	// MaxNodeWidth and MaxNodeHeight are the extents of the widest and
	// tallest node; the aggregate Width/Height formulas use them to cover
	// node half-extents beyond the center bounding box.
	MaxNodeWidth  float64
	MaxNodeHeight float64
}

// Center returns the bounding-box center.
func (st Stats) Center() (x, y float64) {
	return (st.XMin + st.XMax) / 2, (st.YMin + st.YMax) / 2
}

// grow expands the statistics to cover one more node.
func (st *Stats) grow(n *Node) {
	st.XMin = math.Min(st.XMin, n.X)
	st.XMax = math.Max(st.XMax, n.X)
	st.YMin = math.Min(st.YMin, n.Y)
	st.YMax = math.Max(st.YMax, n.Y)
	st.MaxNodeWidth = math.Max(st.MaxNodeWidth, n.Width)
	st.MaxNodeHeight = math.Max(st.MaxNodeHeight, n.Height)
}

// combine merges another box pessimistically: min of mins, max of maxes.
// Only meaningful when the two boxes are disjoint; overlapping stores
// must recompute instead.
func (st *Stats) combine(other Stats) {
	st.XMin = math.Min(st.XMin, other.XMin)
	st.XMax = math.Max(st.XMax, other.XMax)
	st.YMin = math.Min(st.YMin, other.YMin)
	st.YMax = math.Max(st.YMax, other.YMax)
	st.MaxNodeWidth = math.Max(st.MaxNodeWidth, other.MaxNodeWidth)
	st.MaxNodeHeight = math.Max(st.MaxNodeHeight, other.MaxNodeHeight)
}

// disjoint reports whether the two center bounding boxes do not intersect.
func (st Stats) disjoint(other Stats) bool {
	overlapX := st.XMin <= other.XMax && other.XMin <= st.XMax
	overlapY := st.YMin <= other.YMax && other.YMin <= st.YMax
	return !(overlapX && overlapY)
}
