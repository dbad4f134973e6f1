package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provgraph/provis/pkg/engine"
	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/pipeline"
	"github.com/provgraph/provis/pkg/prov"
)

// expandCommand creates the expand command for growing a saved layout.
func (c *CLI) expandCommand() *cobra.Command {
	var (
		node   int
		output string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "expand [graph.json] [layout.xml]",
		Short: "Expand a summary node in a saved layout",
		Long: `Expand a summary node in a saved layout.

The expand command reloads a layout document together with the graph it
was computed from, opens one collapsed summary node, and lays out the
newly visible children inside the box the summary occupied. Geometry
outside that box stays put.

The strategy recorded in the layout document decides how children are
placed. Pass the same --zoom the layout was computed with.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			mergeEngineConfig(cmd, &opts, cfg.Engine)
			return c.runExpand(cmd.Context(), args[0], args[1], opts, node, output)
		},
	}

	cmd.Flags().IntVarP(&node, "node", "n", -1, "index of the summary node to expand (required)")
	_ = cmd.MarkFlagRequired("node")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: rewrite the input layout)")
	cmd.Flags().StringVar(&opts.Tool, "tool", "", "layout tool resolved through PATH (default: dot)")
	cmd.Flags().StringVar(&opts.ToolPath, "tool-path", "", "absolute path to the layout tool binary")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "layout worker pool size (0 = one per CPU)")
	cmd.Flags().BoolVar(&opts.Zoom, "zoom", false, "keep expanded summaries at placeholder scale")

	return cmd
}

// runExpand opens one summary in a persisted layout and writes it back.
func (c *CLI) runExpand(ctx context.Context, graphPath, layoutPath string, opts pipeline.Options, index int, output string) error {
	g, err := prov.ReadGraphFile(graphPath)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", graphPath, err)
	}
	store, algorithm, err := layout.ReadFile(layoutPath, layout.ReadOptions{Graph: g})
	if err != nil {
		return fmt.Errorf("load layout %s: %w", layoutPath, err)
	}

	// The document stores geometry, not visibility. A summary with a child
	// already placed was open when the layout was written.
	reopenExpanded(g, store)

	n := g.Node(index)
	if n == nil {
		return errors.New(errors.ErrCodeIndexRange, "no node with index %d (graph has %d nodes)", index, g.NodeCount())
	}
	if !n.IsSummary() {
		return errors.New(errors.ErrCodeInvalidInput, "node %d (%s) is not a summary", index, n.Label)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = layoutPath
	}

	if n.Expanded {
		printInfo("Node %d (%s) is already expanded", index, n.Label)
		if outputPath != layoutPath {
			if err := layout.WriteFile(store, algorithm, outputPath); err != nil {
				return fmt.Errorf("write output %s: %w", outputPath, err)
			}
			printFile(outputPath)
		}
		return nil
	}

	alg, err := engine.New(engine.Options{
		Strategy: algorithm,
		Tool:     opts.Tool,
		ToolPath: opts.ToolPath,
		Workers:  opts.Workers,
		Zoom:     opts.Zoom,
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}
	rebinder, ok := alg.(engine.Rebinder)
	if !ok {
		return errors.New(errors.ErrCodeInvalidStrategy, "strategy %q cannot update a saved layout", algorithm)
	}
	rebinder.Rebind(g, store)

	nodesBefore := store.NodeCount()
	edgesBefore := store.EdgeCount()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Expanding %s...", n.Label))
	spinner.Start()

	g.Expand(n)
	if err := alg.Update(ctx, store, index); err != nil {
		g.Collapse(n)
		spinner.StopWithError("Expand failed")
		return fmt.Errorf("expand node %d: %w", index, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := layout.WriteFile(store, algorithm, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Expanded %s", n.Label)
	printFile(outputPath)
	printDetail("+%d nodes, +%d edges", store.NodeCount()-nodesBefore, store.EdgeCount()-edgesBefore)
	printStats(store.NodeCount(), store.EdgeCount(), false)

	return nil
}

// reopenExpanded restores frontier state from persisted geometry. A
// summary placed in the store as a node was collapsed when the layout was
// written; one with a child placed (or a child summary that was itself
// reopened) was open. The geometry wins over any expansion flags the graph
// file carries. Children always have lower indices than the summary
// grouping them, so one forward pass settles the nesting.
func reopenExpanded(g *prov.Graph, store *layout.Store) {
	for _, n := range g.Nodes() {
		if !n.IsSummary() {
			continue
		}
		if store.Node(n.Index()) != nil {
			g.Collapse(n)
			continue
		}
		for _, child := range n.Children() {
			if store.Node(child.Index()) != nil || (child.IsSummary() && child.Expanded) {
				g.Expand(n)
				break
			}
		}
	}
}
