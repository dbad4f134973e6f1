package engine

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/provgraph/provis/pkg/engine/dot"
	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/observability"
)

func init() {
	Register("hierarchical", func(opts Options) (Algorithm, error) {
		inv, err := newInvoker(opts)
		if err != nil {
			return nil, err
		}
		return &hierarchical{
			inv:      inv,
			tool:     toolLabel(opts),
			workers:  opts.Workers,
			zoom:     opts.Zoom,
			progress: opts.Progress,
			logger:   opts.Logger,
		}, nil
	})
}

// hierarchical lays a summarized graph out bottom-up. Every summary node
// becomes one task that lays out its direct children with the external
// tool; finished child layouts are embedded into the boxes their parent
// reserved for them. Tasks with no pending children run concurrently on
// a bounded worker pool.
type hierarchical struct {
	inv      Invoker
	tool     string
	workers  int
	zoom     bool
	progress ProgressFunc
	logger   *log.Logger

	g Graph // bound by Initialize or Compute
}

func (h *hierarchical) Name() string { return "hierarchical" }

func (h *hierarchical) ZoomOptimized() bool { return h.zoom }

func (h *hierarchical) Initialize(ctx context.Context, g Graph, depth int) (*layout.Store, error) {
	if err := errors.ValidateDepth(depth); err != nil {
		return nil, err
	}
	h.g = g
	return h.run(ctx, g, depth)
}

func (h *hierarchical) Compute(ctx context.Context, g Graph) (*layout.Store, error) {
	h.g = g
	return h.run(ctx, g, 0)
}

// Rebind attaches a persisted layout. Updates read their target boxes
// from the store, so binding the graph restores everything an update
// needs.
func (h *hierarchical) Rebind(g Graph, store *layout.Store) { h.g = g }

// Update expands one summary node into an existing layout. The node's
// children are laid out as a single task and squeezed into the box the
// earlier run reserved for the node; nothing else moves.
//
// When the node itself has no box yet (it was hidden below the depth
// bound) the expansion escalates to the nearest ancestor that has one.
func (h *hierarchical) Update(ctx context.Context, store *layout.Store, summary int) error {
	g := h.g
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "hierarchical strategy is not bound to a graph, call Initialize first")
	}
	if summary < 0 || summary >= g.NodeCount() {
		return errors.New(errors.ErrCodeIndexRange, "node index %d outside graph range [0,%d)", summary, g.NodeCount())
	}
	if !g.IsSummary(summary) {
		return errors.New(errors.ErrCodeInvalidInput, "node %d is not a summary node", summary)
	}

	// Escalate to the nearest enclosing node that the store knows.
	target := summary
	for store.Node(target) == nil {
		parent := g.ParentIndex(target)
		if parent < 0 {
			return errors.New(errors.ErrCodeInvalidLayout, "no layout box for summary %d or any of its ancestors", summary)
		}
		target = parent
	}
	box := *store.Node(target)

	all, leaves := buildTasks(g, target, 1)
	sub, err := h.schedule(ctx, g, all, leaves)
	if err != nil {
		return err
	}

	fitInto(sub, box, h.zoom)
	store.Merge(sub, false)

	h.logger.Debug("expanded summary in place",
		"summary", summary, "target", target, "nodes", sub.NodeCount())
	return nil
}

// =============================================================================
// Task Tree
// =============================================================================

// task is one node of the layout task tree. It lays out the children of
// one summary node once every child task has deposited its result.
type task struct {
	summary int
	depth   int
	parent  *task

	// expected is fixed after construction; results is guarded by mu
	// until the task is enqueued, after which the depositing send
	// publishes it to the running worker.
	expected int
	mu       sync.Mutex
	results  map[int]*layout.Store
}

// buildTasks mirrors the summary tree rooted at root into a task tree,
// bounded by maxDepth (0 = unbounded). It returns all tasks and the
// leaves that are immediately runnable.
func buildTasks(g Graph, root, maxDepth int) (all, leaves []*task) {
	rootTask := &task{summary: root, results: make(map[int]*layout.Store)}
	all = []*task{rootTask}

	stack := []*task{rootTask}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range g.ChildIndices(t.summary) {
			if !g.IsSummary(child) {
				continue
			}
			if maxDepth != 0 && t.depth+1 >= maxDepth {
				continue
			}
			ct := &task{
				summary: child,
				depth:   t.depth + 1,
				parent:  t,
				results: make(map[int]*layout.Store),
			}
			t.expected++
			all = append(all, ct)
			stack = append(stack, ct)
		}
	}

	for _, t := range all {
		if t.expected == 0 {
			leaves = append(leaves, t)
		}
	}
	return all, leaves
}

// deposit records a finished child layout with the parent task and
// enqueues the parent when the last missing child arrives. Exactly one
// depositor observes the count reaching expected, so the parent is
// enqueued exactly once.
func deposit(queue chan<- *task, t *task, store *layout.Store) {
	p := t.parent
	p.mu.Lock()
	p.results[t.summary] = store
	ready := len(p.results) == p.expected
	p.mu.Unlock()

	if ready {
		queue <- p
	}
}

// =============================================================================
// Scheduling
// =============================================================================

func (h *hierarchical) run(ctx context.Context, g Graph, depth int) (*layout.Store, error) {
	start := time.Now()
	hooks := observability.Engine()
	hooks.OnRunStart(ctx, h.Name(), g.NodeCount())

	store, err := h.runBounded(ctx, g, depth)

	hooks.OnRunComplete(ctx, h.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	h.logger.Info("computed hierarchical layout",
		"nodes", store.NodeCount(), "edges", store.EdgeCount(),
		"depth", depth, "duration", time.Since(start))
	return store, nil
}

func (h *hierarchical) runBounded(ctx context.Context, g Graph, depth int) (*layout.Store, error) {
	root := g.RootIndex()
	if root < 0 {
		// Unsummarized graph: a single pass over the visible frontier.
		store, err := h.invoke(ctx, h.inv.Clone(), frontierProblem(g))
		if err == nil && h.progress != nil {
			h.progress(1, 1, "")
		}
		return store, err
	}

	all, leaves := buildTasks(g, root, depth)
	return h.schedule(ctx, g, all, leaves)
}

// schedule runs the task tree on a bounded worker pool and returns the
// root task's layout. Runnable tasks flow through a channel sized for
// the whole tree, so sends never block; the worker that completes the
// root closes the channel to release the rest of the pool.
func (h *hierarchical) schedule(ctx context.Context, g Graph, all, leaves []*task) (*layout.Store, error) {
	total := len(all)
	queue := make(chan *task, total)
	for _, t := range leaves {
		queue <- t
	}

	var (
		done   atomic.Int64
		result *layout.Store
	)

	group, gctx := errgroup.WithContext(ctx)
	for range min(h.workers, total) {
		inv := h.inv.Clone()
		group.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return errors.Wrap(errors.ErrCodeCanceled, gctx.Err(), "layout interrupted")
				case t, ok := <-queue:
					if !ok {
						return nil
					}
					store, err := h.runTask(gctx, inv, g, t)
					if err != nil {
						return err
					}
					if h.progress != nil {
						h.progress(int(done.Add(1)), total, g.Label(t.summary))
					}
					if t.parent == nil {
						result = store
						close(queue)
						continue
					}
					deposit(queue, t, store)
				}
			}
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (h *hierarchical) runTask(ctx context.Context, inv Invoker, g Graph, t *task) (*layout.Store, error) {
	hooks := observability.Engine()
	start := time.Now()
	hooks.OnTaskStart(ctx, h.Name(), t.summary)

	store, err := h.layoutChildren(ctx, inv, g, t)

	hooks.OnTaskComplete(ctx, h.Name(), t.summary, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("layout task finished",
		"summary", t.summary, "depth", t.depth,
		"nodes", store.NodeCount(), "duration", time.Since(start))
	return store, nil
}

// layoutChildren lays out the direct children of t's summary node as one
// tool run, then embeds every deposited child layout into the box the
// run reserved for it.
func (h *hierarchical) layoutChildren(ctx context.Context, inv Invoker, g Graph, t *task) (*layout.Store, error) {
	children := g.ChildIndices(t.summary)
	p := dot.Problem{Nodes: make([]dot.Node, 0, len(children))}
	for _, child := range children {
		width, height := h.childSize(g, t, child)
		p.Nodes = append(p.Nodes, dot.Node{Index: child, Width: width, Height: height})
	}
	for _, cut := range g.EdgeCuts(t.summary) {
		p.Edges = append(p.Edges, dot.Edge{Index: cut[0], From: cut[1], To: cut[2]})
	}

	box, err := h.invoke(ctx, inv, p)
	if err != nil {
		return nil, err
	}

	for child, cs := range t.results {
		node := box.Node(child)
		if node == nil {
			return nil, errors.New(errors.ErrCodeInvalidLayout,
				"child %d missing from box layout of summary %d", child, t.summary)
		}
		fitInto(cs, *node, h.zoom)
		box.Merge(cs, false)
	}
	return box, nil
}

// childSize returns the size to reserve for one child in its parent's
// box problem. A finished child layout takes its computed extent, or the
// canonical placeholder size in zoom mode so every level renders at the
// same scale. Everything else takes the node default.
func (h *hierarchical) childSize(g Graph, t *task, child int) (width, height float64) {
	cs, ok := t.results[child]
	if !ok || cs.NodeCount() == 0 {
		return nodeSize(g, child)
	}
	if h.zoom {
		return layout.DefaultPlaceholderWidth, layout.DefaultPlaceholderHeight
	}
	return cs.Width(), cs.Height()
}

func (h *hierarchical) invoke(ctx context.Context, inv Invoker, p dot.Problem) (*layout.Store, error) {
	start := time.Now()
	store, err := inv.Run(ctx, p)
	observability.Engine().OnToolRun(ctx, h.tool, time.Since(start), err)
	return store, err
}

// =============================================================================
// Fitting
// =============================================================================

// fitInto rescales a finished child layout to the box reserved for it
// and moves it there. Zoom mode scales uniformly so the child keeps its
// aspect ratio inside the canonical box; otherwise the box was reserved
// at the child's own extent and the correction stays close to identity.
func fitInto(cs *layout.Store, box layout.Node, zoom bool) {
	w, h := cs.Width(), cs.Height()
	if w <= 0 || h <= 0 {
		cs.CenterAt(box.X, box.Y)
		return
	}
	sx := box.Width / w
	sy := box.Height / h
	if zoom {
		s := min(sx, sy)
		sx, sy = s, s
	}
	cs.ScaleAround(sx, sy, 0, 0)
	cs.CenterAt(box.X, box.Y)
}

// toolLabel names the external tool for hooks and logs.
func toolLabel(opts Options) string {
	if opts.Invoker != nil {
		return "custom"
	}
	if opts.ToolPath != "" {
		return filepath.Base(opts.ToolPath)
	}
	return opts.Tool
}
