package dot

import (
	"bytes"
	"context"
	stderrors "errors"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
)

// DefaultTool is the layout tool used when none is configured.
const DefaultTool = "dot"

// ScaleTolerance bounds how far the tool's reported scale may drift from
// 1 before a warning is logged. Fixed node sizes should keep the tool
// from scaling at all.
const ScaleTolerance = 0.01

// =============================================================================
// Tool Verification
// =============================================================================

// toolCache remembers PATH lookups that succeeded. Lookups that fail are
// retried on the next call.
type toolCache struct {
	mu    sync.Mutex
	paths map[string]string
}

var tools = &toolCache{paths: make(map[string]string)}

func (c *toolCache) resolve(tool string) (string, error) {
	if err := errors.ValidateToolName(tool); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if path, ok := c.paths[tool]; ok {
		return path, nil
	}
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeToolNotFound, err, "layout tool %q not on PATH", tool)
	}
	c.paths[tool] = path
	return path, nil
}

// ResolveTool returns the absolute path of a layout tool, consulting PATH
// on the first call and a cache afterwards.
func ResolveTool(tool string) (string, error) {
	return tools.resolve(tool)
}

// ResetToolCache clears the verified-tool cache. Intended for tests.
func ResetToolCache() {
	tools.mu.Lock()
	defer tools.mu.Unlock()
	clear(tools.paths)
}

// =============================================================================
// Runner
// =============================================================================

// Runner runs one external layout tool. Create one per worker via
// [Runner.Clone]; clones share the in-flight counter.
type Runner struct {
	tool     string
	path     string
	logger   *log.Logger
	inflight *atomic.Int64
}

// NewRunner creates a runner for the given tool name, resolved through
// PATH on first use. An empty tool selects [DefaultTool]; a nil logger
// selects [log.Default].
func NewRunner(tool string, logger *log.Logger) *Runner {
	if tool == "" {
		tool = DefaultTool
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		tool:     tool,
		logger:   logger,
		inflight: new(atomic.Int64),
	}
}

// NewRunnerAt creates a runner pinned to an explicit tool binary,
// bypassing PATH resolution.
func NewRunnerAt(path string, logger *log.Logger) (*Runner, error) {
	if err := errors.ValidateToolPath(path); err != nil {
		return nil, err
	}
	r := NewRunner(filepath.Base(path), logger)
	r.path = path
	return r, nil
}

// Clone returns an independent runner sharing the in-flight counter.
func (r *Runner) Clone() *Runner {
	cp := *r
	return &cp
}

// Tool returns the tool name this runner invokes.
func (r *Runner) Tool() string { return r.tool }

// InFlight returns the number of tool processes currently running across
// this runner and all its clones.
func (r *Runner) InFlight() int64 { return r.inflight.Load() }

// Run lays out one problem: renders it to DOT, runs the tool, and parses
// the plain output into a store in internal coordinates. An empty problem
// returns an empty store without starting a process.
func (r *Runner) Run(ctx context.Context, p Problem) (*layout.Store, error) {
	if len(p.Nodes) == 0 {
		return layout.New(), nil
	}

	bin := r.path
	if bin == "" {
		var err error
		if bin, err = tools.resolve(r.tool); err != nil {
			return nil, err
		}
	}

	cmd := exec.CommandContext(ctx, bin, "-Tplain")
	cmd.Stdin = bytes.NewReader(Marshal(p))
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	r.inflight.Add(1)
	runErr := cmd.Run()
	r.inflight.Add(-1)

	if runErr != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "%s interrupted", r.tool)
		}
		var exitErr *exec.ExitError
		if stderrors.As(runErr, &exitErr) {
			return nil, &errors.ToolExitError{
				Tool:     r.tool,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(errBuf.String()),
			}
		}
		return nil, errors.Wrap(errors.ErrCodeToolFailed, runErr, "run %s", r.tool)
	}

	plain, err := parsePlain(out.Bytes())
	if err != nil {
		return nil, err
	}
	return r.convert(plain, p)
}

// convert maps plain output back onto the problem's indices and into
// internal coordinates: points instead of inches, y axis flipped.
func (r *Runner) convert(plain *plainOutput, p Problem) (*layout.Store, error) {
	if math.Abs(plain.Scale-1) > ScaleTolerance {
		r.logger.Warn("layout tool scaled its output", "tool", r.tool, "scale", plain.Scale)
	}

	nodeIndex := make(map[string]int, len(p.Nodes))
	for _, n := range p.Nodes {
		nodeIndex[strconv.Itoa(n.Index)] = n.Index
	}
	edgeIndex := make(map[[2]int]int, len(p.Edges))
	for _, e := range p.Edges {
		key := [2]int{e.From, e.To}
		if _, dup := edgeIndex[key]; !dup {
			edgeIndex[key] = e.Index
		}
	}

	s := layout.New()
	for _, pn := range plain.Nodes {
		index, ok := nodeIndex[pn.ID]
		if !ok {
			return nil, errors.New(errors.ErrCodePlainParse, "%s emitted unknown node %q", r.tool, pn.ID)
		}
		s.AddNode(layout.Node{
			Index:  index,
			X:      pn.X * PointsPerInch,
			Y:      -pn.Y * PointsPerInch,
			Width:  pn.Width * PointsPerInch,
			Height: pn.Height * PointsPerInch,
		})
	}
	for _, n := range p.Nodes {
		if s.Node(n.Index) == nil {
			return nil, errors.New(errors.ErrCodePlainParse, "%s output is missing node %d", r.tool, n.Index)
		}
	}

	for _, pe := range plain.Edges {
		from, ok := nodeIndex[pe.From]
		if !ok {
			return nil, errors.New(errors.ErrCodePlainParse, "%s emitted edge with unknown tail %q", r.tool, pe.From)
		}
		to, ok := nodeIndex[pe.To]
		if !ok {
			return nil, errors.New(errors.ErrCodePlainParse, "%s emitted edge with unknown head %q", r.tool, pe.To)
		}
		index, ok := edgeIndex[[2]int{from, to}]
		if !ok {
			return nil, errors.New(errors.ErrCodePlainParse, "%s emitted unknown edge %q -> %q", r.tool, pe.From, pe.To)
		}
		xs := make([]float64, len(pe.XPoints))
		ys := make([]float64, len(pe.YPoints))
		for i := range pe.XPoints {
			xs[i] = pe.XPoints[i] * PointsPerInch
			ys[i] = -pe.YPoints[i] * PointsPerInch
		}
		if _, err := s.AddEdge(index, from, to, xs, ys); err != nil {
			return nil, err
		}
	}

	return s, nil
}
