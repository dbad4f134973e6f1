package engine

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/observability"
)

func init() {
	Register("radial", func(opts Options) (Algorithm, error) {
		return &radial{
			progress: opts.Progress,
			logger:   opts.Logger,
		}, nil
	})
}

const (
	// radialArc is the arc length budgeted per leaf on its ring.
	radialArc = layout.DefaultNodeWidth + 2*layout.Margin

	// radialStep is the minimum spacing between consecutive rings.
	radialStep = 2 * layout.DefaultPlaceholderHeight
)

// radial draws the summary tree as concentric rings: the root sits at
// the origin, each tree level forms a ring, and every subtree owns an
// angular sector proportional to its leaf count. No external tool runs;
// the whole layout is computed in process, which makes it the cheapest
// overview of a large graph.
type radial struct {
	progress ProgressFunc
	logger   *log.Logger

	g        Graph
	bound    int
	expanded map[int]bool
}

func (r *radial) Name() string { return "radial" }

// ZoomOptimized is false: rings share one coordinate scale.
func (r *radial) ZoomOptimized() bool { return false }

func (r *radial) Initialize(ctx context.Context, g Graph, depth int) (*layout.Store, error) {
	if err := errors.ValidateDepth(depth); err != nil {
		return nil, err
	}
	r.g = g
	r.bound = depth
	r.expanded = make(map[int]bool)
	return r.run(ctx, g)
}

func (r *radial) Compute(ctx context.Context, g Graph) (*layout.Store, error) {
	r.g = g
	r.bound = 0
	r.expanded = make(map[int]bool)
	return r.run(ctx, g)
}

// Rebind attaches a persisted layout, rebuilding the expanded set from
// the store: a summary with a child already placed was open when the
// store was written. The depth bound resets to one so visibility is
// carried entirely by that set.
func (r *radial) Rebind(g Graph, store *layout.Store) {
	r.g = g
	r.bound = 1
	r.expanded = make(map[int]bool)
	for i := range g.NodeCount() {
		if !g.IsSummary(i) {
			continue
		}
		for _, c := range g.ChildIndices(i) {
			if store.Node(c) != nil {
				r.expanded[i] = true
				break
			}
		}
	}
}

// Update reveals the summary node's children and recomputes the rings.
// Sectors are a global partition, so expansion re-balances the whole
// picture; the recomputation is in-process and cheap. Ancestors hidden
// below the depth bound are revealed along the way.
func (r *radial) Update(ctx context.Context, store *layout.Store, summary int) error {
	g := r.g
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "radial strategy is not bound to a graph, call Initialize first")
	}
	if summary < 0 || summary >= g.NodeCount() {
		return errors.New(errors.ErrCodeIndexRange, "node index %d outside graph range [0,%d)", summary, g.NodeCount())
	}
	if !g.IsSummary(summary) {
		return errors.New(errors.ErrCodeInvalidInput, "node %d is not a summary node", summary)
	}

	for n := summary; n >= 0; n = g.ParentIndex(n) {
		if g.IsSummary(n) {
			r.expanded[n] = true
		}
	}

	fresh, err := r.run(ctx, g)
	if err != nil {
		return err
	}
	store.Reset()
	store.Merge(fresh, false)
	return nil
}

func (r *radial) run(ctx context.Context, g Graph) (*layout.Store, error) {
	start := time.Now()
	hooks := observability.Engine()
	hooks.OnRunStart(ctx, r.Name(), g.NodeCount())

	store, err := r.compute(ctx, g)

	hooks.OnRunComplete(ctx, r.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if r.progress != nil {
		r.progress(1, 1, "")
	}
	r.logger.Info("computed radial layout",
		"nodes", store.NodeCount(), "edges", store.EdgeCount(),
		"duration", time.Since(start))
	return store, nil
}

func (r *radial) compute(ctx context.Context, g Graph) (*layout.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCanceled, err, "layout interrupted")
	}

	w := &radialWalk{
		g:        g,
		bound:    r.bound,
		expanded: r.expanded,
		store:    layout.NewFor(g),
		leaves:   make(map[int]int),
	}

	// Top-level entries: the tree root plus any disconnected parentless
	// nodes. An unrooted graph degenerates to one ring of every node.
	root := g.RootIndex()
	var entries []int
	if root >= 0 {
		entries = append(entries, root)
	}
	for i := range g.NodeCount() {
		if i != root && g.ParentIndex(i) < 0 {
			entries = append(entries, i)
		}
	}
	if len(entries) == 0 {
		return w.store, nil
	}

	total, deepest := 0, 0
	for _, e := range entries {
		depth := 1
		if e == root {
			depth = 0
		}
		l, d := w.measure(e, depth)
		total += l
		deepest = max(deepest, d)
	}

	// Ring spacing grows with the leaf population so the outermost ring
	// keeps one arc slot per leaf.
	w.step = radialStep
	if deepest > 0 && total > 0 {
		w.step = max(w.step, float64(total)*radialArc/(2*math.Pi*float64(deepest)))
	}

	angle := 0.0
	for _, e := range entries {
		slice := 2 * math.Pi * float64(w.leaves[e]) / float64(total)
		depth := 1
		if e == root {
			depth = 0
		}
		w.place(e, depth, angle, angle+slice)
		angle += slice
	}

	// Raw edges between visible nodes, drawn as straight lines.
	for i := range g.EdgeCount() {
		from, to, ok := g.EdgeEndpoints(i)
		if !ok || w.store.Node(from) == nil || w.store.Node(to) == nil {
			continue
		}
		if _, err := w.store.AddEdge(i, from, to, nil, nil); err != nil {
			return nil, err
		}
	}
	return w.store, nil
}

// radialWalk carries the per-run state of one ring computation.
type radialWalk struct {
	g        Graph
	bound    int
	expanded map[int]bool
	store    *layout.Store

	step   float64
	leaves map[int]int
}

// open reports whether the node's children are shown: inside the depth
// bound, or explicitly expanded past it.
func (w *radialWalk) open(n, depth int) bool {
	return w.bound == 0 || depth < w.bound || w.expanded[n]
}

// measure fills w.leaves with visible-leaf counts and returns the
// node's count together with the deepest visible level.
func (w *radialWalk) measure(n, depth int) (count, deepest int) {
	deepest = depth
	if w.open(n, depth) {
		for _, c := range w.g.ChildIndices(n) {
			cl, cd := w.measure(c, depth+1)
			count += cl
			deepest = max(deepest, cd)
		}
	}
	if count == 0 {
		count = 1
	}
	w.leaves[n] = count
	return count, deepest
}

// place positions the node at the midpoint of its sector on the ring
// for its depth, then splits the sector among its children by leaf
// count.
func (w *radialWalk) place(n, depth int, lo, hi float64) {
	theta := (lo + hi) / 2
	var pos r2.Vec
	if r := w.step * float64(depth); r > 0 {
		pos = r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)}.Scale(r)
	}

	width, height := nodeSize(w.g, n)
	w.store.AddNode(layout.Node{Index: n, X: pos.X, Y: pos.Y, Width: width, Height: height})

	if !w.open(n, depth) {
		return
	}
	children := w.g.ChildIndices(n)
	if len(children) == 0 {
		return
	}

	angle := lo
	span := hi - lo
	for _, c := range children {
		slice := span * float64(w.leaves[c]) / float64(w.leaves[n])
		w.place(c, depth+1, angle, angle+slice)
		angle += slice
	}
}
