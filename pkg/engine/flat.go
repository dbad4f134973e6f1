package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/observability"
)

func init() {
	Register("flat", func(opts Options) (Algorithm, error) {
		inv, err := newInvoker(opts)
		if err != nil {
			return nil, err
		}
		return &flat{
			inv:      inv,
			tool:     toolLabel(opts),
			progress: opts.Progress,
			logger:   opts.Logger,
		}, nil
	})
}

// flat ignores the summary hierarchy and lays out the visible frontier
// in a single tool run. Summary nodes on the frontier appear as
// placeholder boxes; expansion recomputes the whole picture.
type flat struct {
	inv      Invoker
	tool     string
	progress ProgressFunc
	logger   *log.Logger

	g Graph
}

func (f *flat) Name() string { return "flat" }

// ZoomOptimized is false: a flat layout has no nested levels to rescale.
func (f *flat) ZoomOptimized() bool { return false }

// Initialize lays out the frontier and binds the graph. The depth bound
// only limits recursion, so a flat layout accepts and ignores it.
func (f *flat) Initialize(ctx context.Context, g Graph, depth int) (*layout.Store, error) {
	if err := errors.ValidateDepth(depth); err != nil {
		return nil, err
	}
	f.g = g
	return f.run(ctx, g)
}

func (f *flat) Compute(ctx context.Context, g Graph) (*layout.Store, error) {
	f.g = g
	return f.run(ctx, g)
}

// Rebind attaches a persisted layout. Updates recompute the frontier
// from the graph, whose visibility the caller has restored.
func (f *flat) Rebind(g Graph, store *layout.Store) { f.g = g }

// Update recomputes the frontier, which the caller has already expanded,
// and replaces the store's geometry with the fresh run.
func (f *flat) Update(ctx context.Context, store *layout.Store, summary int) error {
	g := f.g
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "flat strategy is not bound to a graph, call Initialize first")
	}
	if summary < 0 || summary >= g.NodeCount() {
		return errors.New(errors.ErrCodeIndexRange, "node index %d outside graph range [0,%d)", summary, g.NodeCount())
	}
	if !g.IsSummary(summary) {
		return errors.New(errors.ErrCodeInvalidInput, "node %d is not a summary node", summary)
	}

	fresh, err := f.run(ctx, g)
	if err != nil {
		return err
	}
	store.Reset()
	store.Merge(fresh, false)
	return nil
}

func (f *flat) run(ctx context.Context, g Graph) (*layout.Store, error) {
	start := time.Now()
	hooks := observability.Engine()
	hooks.OnRunStart(ctx, f.Name(), g.NodeCount())

	p := frontierProblem(g)
	toolStart := time.Now()
	store, err := f.inv.Clone().Run(ctx, p)
	hooks.OnToolRun(ctx, f.tool, time.Since(toolStart), err)

	hooks.OnRunComplete(ctx, f.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if f.progress != nil {
		f.progress(1, 1, "")
	}
	f.logger.Info("computed flat layout",
		"nodes", store.NodeCount(), "edges", store.EdgeCount(),
		"duration", time.Since(start))
	return store, nil
}
