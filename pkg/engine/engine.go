package engine

import (
	"context"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/provgraph/provis/pkg/engine/dot"
	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
)

// =============================================================================
// Consumed Interfaces
// =============================================================================

// Graph is the engine's view of a summarized graph: dense integer indices
// for nodes and edges, a strict summary tree, and edge views with
// endpoints mapped to the visible level. *prov.Graph satisfies it.
//
// Edge cut triples are {edge index, source index, target index}.
type Graph interface {
	NodeCount() int
	EdgeCount() int

	// RootIndex returns the summary tree root, or -1 when the graph is
	// not summarized.
	RootIndex() int

	Label(index int) string
	SizeHint(index int) (width, height float64)
	IsSummary(index int) bool
	ParentIndex(index int) int
	ChildIndices(index int) []int
	EdgeEndpoints(index int) (from, to int, ok bool)

	// FrontierIndices lists the currently visible nodes; FrontierEdgeCuts
	// lists the visible edges with endpoints mapped to their
	// representatives.
	FrontierIndices() []int
	FrontierEdgeCuts() [][3]int

	// EdgeCuts lists the edges confined to one summary, endpoints mapped
	// to its immediate children.
	EdgeCuts(index int) [][3]int
}

// Invoker runs one external layout pass. *dot.Runner satisfies it through
// the adapter installed by [Options.ValidateAndSetDefaults]; tests inject
// fakes.
type Invoker interface {
	Run(ctx context.Context, p dot.Problem) (*layout.Store, error)

	// Clone returns an invoker for exclusive use by one worker, sharing
	// process accounting with the original.
	Clone() Invoker
}

type dotInvoker struct {
	r *dot.Runner
}

func (d dotInvoker) Run(ctx context.Context, p dot.Problem) (*layout.Store, error) {
	return d.r.Run(ctx, p)
}

func (d dotInvoker) Clone() Invoker {
	return dotInvoker{r: d.r.Clone()}
}

// =============================================================================
// Algorithm Interface
// =============================================================================

// ProgressFunc is called after every finished layout task.
type ProgressFunc func(done, total int, label string)

// Algorithm is one layout strategy.
//
// Initialize computes the layout down to the given recursion depth
// (0 = unbounded) and binds the algorithm to the graph; Update then
// works incrementally against that graph. Compute is the unbounded
// whole-graph entry. Algorithms are not safe for concurrent use.
type Algorithm interface {
	// Name returns the registry name of the strategy.
	Name() string

	// Initialize computes a layout for the graph bounded by depth and
	// binds the algorithm to the graph for later updates.
	Initialize(ctx context.Context, g Graph, depth int) (*layout.Store, error)

	// Update expands the summary node with the given index into the
	// store, reusing existing geometry where the strategy allows.
	Update(ctx context.Context, store *layout.Store, summary int) error

	// Compute lays out the whole graph without a depth bound.
	Compute(ctx context.Context, g Graph) (*layout.Store, error)

	// ZoomOptimized reports whether child layouts are rescaled to a
	// canonical placeholder size (uniform zoom) instead of their native
	// extent.
	ZoomOptimized() bool
}

// Rebinder is implemented by strategies that can attach to a graph and
// a store produced by an earlier run, so a persisted layout can be
// updated in place without recomputing it. All built-in strategies
// implement it.
type Rebinder interface {
	Rebind(g Graph, store *layout.Store)
}

// =============================================================================
// Options
// =============================================================================

// DefaultStrategy is the strategy used when none is configured.
const DefaultStrategy = "hierarchical"

// Options configures strategy construction. The zero value selects the
// hierarchical strategy with the dot tool and one worker per CPU.
type Options struct {
	// Strategy is the registry name: hierarchical, flat, or radial.
	Strategy string

	// Tool is the external layout tool resolved through PATH. Ignored
	// when ToolPath or Invoker is set.
	Tool string

	// ToolPath pins an absolute tool binary, bypassing PATH.
	ToolPath string

	// Workers bounds the layout worker pool. 0 means GOMAXPROCS.
	Workers int

	// Zoom keeps summary children at the canonical placeholder size so
	// every level renders at the same scale.
	Zoom bool

	// Progress, when set, is called after every finished task.
	Progress ProgressFunc

	// Logger defaults to log.Default().
	Logger *log.Logger

	// Invoker overrides the external tool runner. Used by tests.
	Invoker Invoker
}

// ValidateAndSetDefaults validates the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if err := errors.ValidateStrategyName(o.Strategy); err != nil {
		return err
	}

	if o.ToolPath != "" {
		if err := errors.ValidateToolPath(o.ToolPath); err != nil {
			return err
		}
	} else {
		if o.Tool == "" {
			o.Tool = dot.DefaultTool
		}
		if err := errors.ValidateToolName(o.Tool); err != nil {
			return err
		}
	}

	if err := errors.ValidateWorkers(o.Workers); err != nil {
		return err
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}

	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// newInvoker builds the external tool invoker for strategies that need
// one, verifying the tool synchronously so a missing binary surfaces as a
// configuration error before any task runs.
func newInvoker(opts Options) (Invoker, error) {
	if opts.Invoker != nil {
		return opts.Invoker, nil
	}
	if opts.ToolPath != "" {
		r, err := dot.NewRunnerAt(opts.ToolPath, opts.Logger)
		if err != nil {
			return nil, err
		}
		return dotInvoker{r: r}, nil
	}
	if _, err := dot.ResolveTool(opts.Tool); err != nil {
		return nil, err
	}
	return dotInvoker{r: dot.NewRunner(opts.Tool, opts.Logger)}, nil
}

// =============================================================================
// Strategy Registry
// =============================================================================

// Constructor builds a strategy from validated options.
type Constructor func(opts Options) (Algorithm, error)

var registry = struct {
	mu sync.RWMutex
	m  map[string]Constructor
}{m: make(map[string]Constructor)}

// Register adds a strategy constructor under a name. Strategies shipped
// with the package register themselves; external strategies may register
// at startup.
func Register(name string, c Constructor) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.m[name] = c
}

// Algorithms returns the registered strategy names, sorted.
func Algorithms() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New constructs a strategy by registry name.
func New(opts Options) (Algorithm, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	registry.mu.RLock()
	ctor := registry.m[opts.Strategy]
	registry.mu.RUnlock()
	if ctor == nil {
		return nil, errors.New(errors.ErrCodeInvalidStrategy,
			"unknown strategy %q (have: %s)", opts.Strategy, strings.Join(Algorithms(), ", "))
	}
	return ctor(opts)
}

// =============================================================================
// Shared Helpers
// =============================================================================

// nodeSize returns the size to lay a node out at: its hint when present,
// otherwise the plain or placeholder default.
func nodeSize(g Graph, index int) (width, height float64) {
	width, height = g.SizeHint(index)
	if width <= 0 {
		width = layout.DefaultNodeWidth
		if g.IsSummary(index) {
			width = layout.DefaultPlaceholderWidth
		}
	}
	if height <= 0 {
		height = layout.DefaultNodeHeight
		if g.IsSummary(index) {
			height = layout.DefaultPlaceholderHeight
		}
	}
	return width, height
}

// frontierProblem serializes the currently visible graph as one layout
// problem: every frontier node with its size, every frontier edge cut.
func frontierProblem(g Graph) dot.Problem {
	indices := g.FrontierIndices()
	p := dot.Problem{Nodes: make([]dot.Node, 0, len(indices))}
	for _, index := range indices {
		w, h := nodeSize(g, index)
		p.Nodes = append(p.Nodes, dot.Node{Index: index, Width: w, Height: h})
	}
	for _, cut := range g.FrontierEdgeCuts() {
		p.Edges = append(p.Edges, dot.Edge{Index: cut[0], From: cut[1], To: cut[2]})
	}
	return p
}
