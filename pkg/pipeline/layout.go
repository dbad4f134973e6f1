package pipeline

import (
	"context"

	"github.com/provgraph/provis/pkg/engine"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/prov"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout runs the configured strategy on the graph without
// caching. This is the unified entry point for generating geometry; the
// [Runner] wraps it with cache lookups.
//
// A depth of 0 lays out the whole summary tree; a positive depth stops
// the recursion there, leaving deeper summaries as placeholders.
func ComputeLayout(ctx context.Context, g *prov.Graph, opts Options) (*layout.Store, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	alg, err := engine.New(opts.engineOptions())
	if err != nil {
		return nil, err
	}
	return alg.Initialize(ctx, g, opts.Depth)
}
