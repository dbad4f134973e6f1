// Package layout provides the mutable geometry store produced by layout
// computations.
//
// # Overview
//
// A [Store] holds one position/size box per laid-out node and one polyline
// per laid-out edge, keyed by the graph's dense indices. Stores are built
// bottom-up: the engine computes one store per summary node, then merges
// child stores into their parent after rescaling and recentering them.
//
// # Core Types
//
//   - [Store]: mutable node/edge geometry with lazy aggregate statistics
//   - [Node]: center position and size of one graph node
//   - [Edge]: control-point polyline of one graph edge
//   - [Stats]: bounding box and maximum node extents
//
// # Coordinate Space
//
// Coordinates are float64 in a screen-like space: Y grows downward, sizes
// are positive, positions are node centers. One unit is one typographic
// point (72 per inch); the engine converts external tool output into this
// space on import.
//
// # Geometry Operations
//
//	st.Translate(dx, dy)            // shift everything
//	st.ScaleAround(sx, sy, px, py)  // scale positions, sizes, control points
//	st.CenterAt(x, y)               // move the bounding-box center
//	dst.Merge(src, false)           // import absent entries, keep existing ones
//
// Statistics are maintained incrementally on single inserts and transforms,
// and recomputed lazily after bulk merges.
//
// # Persistence
//
// Stores round-trip through a small XML document (see [Marshal] and
// [Unmarshal]); positions survive the round trip bit-identically.
//
// # Concurrency
//
// A Store is owned by one computation at a time and is not safe for
// concurrent mutation. Concurrent readers must synchronize externally.
package layout
