package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/provgraph/provis/pkg/cache"
	"github.com/provgraph/provis/pkg/config"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/pipeline"
	"github.com/provgraph/provis/pkg/prov"
)

// layoutCommand creates the layout command for computing graph layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		useTUI     bool
		useArchive bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a layout for a provenance graph",
		Long: `Compute a layout for a provenance graph.

The layout command reads a graph document, collapses it to the requested
depth, and computes geometry for every visible node and edge. The result
is a layout document (default: <input>.layout.xml, or JSON with -o
file.json) that 'expand' can grow in place and 'export' can render.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			mergeEngineConfig(cmd, &opts, cfg.Engine)
			return c.runLayout(cmd.Context(), args[0], opts, cfg, output, noCache, useTUI, useArchive)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.xml)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached layout exists")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "show live progress while tasks run")
	cmd.Flags().BoolVar(&useArchive, "archive", false, "record the run in the configured archive")
	cmd.Flags().StringVar(&opts.GraphName, "name", "", "graph name for the archive record (default: input file name)")

	// Engine flags
	engineFlags(cmd, &opts)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, cfg config.Config, output string, noCache, useTUI, useArchive bool) error {
	g, err := prov.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if useArchive {
		arch, err := newArchive(ctx, cfg.Archive)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		runner.Archive = arch
	}

	opts.Logger = c.Logger
	if opts.GraphName == "" {
		opts.GraphName = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	start := time.Now()
	var (
		store    *layout.Store
		cacheHit bool
	)
	if useTUI {
		store, cacheHit, err = c.runLayoutTUI(ctx, runner, g, opts)
	} else {
		store, cacheHit, err = c.runLayoutSpinner(ctx, runner, g, opts)
	}
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.xml"
	}

	if err := layout.WriteFile(store, opts.Strategy, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(store.NodeCount(), store.EdgeCount(), cacheHit)
	if useArchive {
		recordLayoutRun(ctx, runner, g, store, opts, cacheHit, time.Since(start))
	}
	printNewline()
	printNextStep("Render", fmt.Sprintf("provis export %s %s", input, outputPath))

	return nil
}

// runLayoutSpinner computes the layout behind the terminal spinner.
func (c *CLI) runLayoutSpinner(ctx context.Context, runner *pipeline.Runner, g *prov.Graph, opts pipeline.Options) (*layout.Store, bool, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Strategy))
	spinner.Start()

	store, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, false, err
	}
	spinner.Stop()
	return store, cacheHit, nil
}

// recordLayoutRun archives a layout-only run, mirroring what the runner
// records for a full pipeline execution.
func recordLayoutRun(ctx context.Context, runner *pipeline.Runner, g *prov.Graph, store *layout.Store, opts pipeline.Options, cacheHit bool, elapsed time.Duration) {
	result := &pipeline.Result{
		Store: store,
		Stats: pipeline.Stats{
			NodeCount:  store.NodeCount(),
			EdgeCount:  store.EdgeCount(),
			Width:      store.Width(),
			Height:     store.Height(),
			LayoutTime: elapsed,
		},
		CacheInfo: pipeline.CacheInfo{LayoutHit: cacheHit},
	}
	if data, err := prov.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}
	if data, err := layout.Marshal(store, opts.Strategy); err == nil {
		result.Layout = data
	}
	runner.RecordRun(ctx, result, opts)
	if result.RunID != "" {
		printDetail("Run: %s", result.RunID)
	}
}
