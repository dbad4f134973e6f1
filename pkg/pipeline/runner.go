package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/provgraph/provis/pkg/archive"
	"github.com/provgraph/provis/pkg/cache"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/observability"
	"github.com/provgraph/provis/pkg/prov"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Archive, when set, records every Execute call as a run.
	// Left nil, runs are not recorded.
	Archive archive.Store
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete layout → export pipeline with caching, and
// records the run when an archive is attached.
func (r *Runner) Execute(ctx context.Context, g *prov.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Graph hash keys the layout cache and labels archive records.
	if graphData, err := prov.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	// Stage 1: Layout
	layoutStart := time.Now()
	store, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Store = store
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = store.NodeCount()
	result.Stats.EdgeCount = store.EdgeCount()
	result.Stats.Width = store.Width()
	result.Stats.Height = store.Height()
	result.CacheInfo.LayoutHit = layoutHit

	if data, err := layout.Marshal(store, opts.Strategy); err == nil {
		result.Layout = data
	}

	r.Logger.Info("computed layout",
		"nodes", store.NodeCount(),
		"edges", store.EdgeCount(),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Export
	exportStart := time.Now()
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, store, g, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported artifacts",
		"formats", opts.Formats,
		"cached", exportHit,
		"duration", result.Stats.ExportTime)

	r.RecordRun(ctx, result, opts)

	return result, nil
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info. Refresh bypasses the lookup but still stores the fresh
// result.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *prov.Graph, opts Options) (*layout.Store, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	graphData, _ := prov.MarshalGraph(g)
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			store, _, err := layout.Unmarshal(data, layout.ReadOptions{Graph: g})
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return store, true, nil
			}
			// A stale or corrupt entry falls through to recompute.
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	store, err := ComputeLayout(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := layout.Marshal(store, opts.Strategy); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return store, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *prov.Graph, opts Options) (*layout.Store, error) {
	store, _, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	return store, err
}

// ExportWithCacheInfo generates artifacts with caching and returns cache
// hit info. The export stage only counts as a hit when every requested
// format is cached.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, store *layout.Store, g *prov.Graph, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForExport(); err != nil {
		return nil, false, err
	}

	// Artifact keys hash the layout document, so geometry changes
	// invalidate artifacts even for an unchanged graph.
	layoutData, err := layout.Marshal(store, opts.Strategy)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	allCached := !opts.Refresh
	artifacts := make(map[string][]byte)

	if allCached {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := ExportArtifacts(store, g, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Export is a convenience wrapper that calls ExportWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Export(ctx context.Context, store *layout.Store, g *prov.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ExportWithCacheInfo(ctx, store, g, opts)
	return artifacts, err
}

// RecordRun stores the run in the archive and fills in result.RunID.
// It is a no-op without an attached archive. Archive failures are logged,
// never fatal: the layout already succeeded. Execute records automatically;
// callers that only compute a layout can record explicitly.
func (r *Runner) RecordRun(ctx context.Context, result *Result, opts Options) {
	if r.Archive == nil {
		return
	}

	run := archive.NewRun(result.GraphHash)
	run.GraphName = opts.GraphName
	run.Strategy = opts.Strategy
	run.Tool = opts.Tool
	run.Depth = opts.Depth
	run.Zoom = opts.Zoom
	run.Workers = opts.Workers
	run.Nodes = result.Stats.NodeCount
	run.Edges = result.Stats.EdgeCount
	run.Width = result.Stats.Width
	run.Height = result.Stats.Height
	run.Duration = result.Stats.LayoutTime
	run.CacheHit = result.CacheInfo.LayoutHit
	run.Layout = result.Layout

	if err := r.Archive.Put(ctx, run); err != nil {
		r.Logger.Warn("record run", "err", err)
		return
	}
	result.RunID = run.ID
}

// Close releases resources held by the runner: the cache, and the
// archive when one is attached.
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Archive != nil {
		if err := r.Archive.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
