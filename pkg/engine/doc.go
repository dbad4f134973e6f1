// Package engine computes graph layouts through pluggable strategies.
//
// # Overview
//
// The engine consumes a summarized provenance graph through the narrow
// [Graph] interface and produces geometry in a [layout.Store]. Three
// strategies ship with the package:
//
//   - hierarchical: lays out each summary node's immediate children in
//     its own external tool run, bottom-up and in parallel, then folds
//     child layouts into their parents' coordinate space
//   - flat: one external tool run over the whole visible frontier
//   - radial: a geometric tree layout on concentric rings, no subprocess
//
// # Algorithms
//
// Strategies implement [Algorithm]. Initialize computes a layout bounded
// by a recursion depth (0 means unbounded) and binds the algorithm to the
// graph; Update then expands single summary nodes incrementally into an
// existing store. Compute is the unbounded whole-graph entry.
//
// Use [New] to construct a strategy by registry name:
//
//	alg, err := engine.New(engine.Options{Strategy: "hierarchical", Workers: 4})
//	store, err := alg.Initialize(ctx, g, 2)
//
// # Scheduling
//
// The hierarchical strategy builds a task tree mirroring the summary
// tree. Leaf tasks enqueue immediately; a parent is enqueued by whichever
// worker deposits its last child result. A fixed worker pool drains the
// queue; each worker owns a cloned invoker so at most one subprocess runs
// per worker. The first error cancels the pool and kills in-flight
// subprocesses through the context.
//
// # Coordinates
//
// All geometry is in internal units (72 per inch), y growing downward;
// see [layout] and [dot] for the conversion at the tool boundary.
package engine
