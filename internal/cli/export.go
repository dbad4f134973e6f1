package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/provgraph/provis/pkg/config"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/pipeline"
	"github.com/provgraph/provis/pkg/prov"
)

// exportCommand creates the export command for rendering artifacts.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "export [graph.json] [layout.xml]",
		Short: "Render a layout to output formats",
		Long: `Render a layout to output formats.

With only a graph the layout is computed first (or served from cache).
With a graph and a saved layout document the stored geometry is reused
as is, including every expansion applied to it since.

Formats: dot, svg, png, pdf, snapshot (geometry-only SVG), and xml (the
layout document itself). PNG and PDF need rsvg-convert on PATH.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			mergeEngineConfig(cmd, &opts, cfg.Engine)
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			layoutPath := ""
			if len(args) == 2 {
				layoutPath = args[1]
			}
			return c.runExport(cmd.Context(), args[0], layoutPath, opts, cfg, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, pdf, snapshot, xml (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-render even when cached artifacts exist")

	// Render flags
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "snapshot theme: light (default), dark")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label nodes with kind and full identifier")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG resolution multiplier (default: 2)")

	// Engine flags, for the compute path
	engineFlags(cmd, &opts)

	return cmd
}

// runExport renders artifacts from a computed or saved layout.
func (c *CLI) runExport(ctx context.Context, graphPath, layoutPath string, opts pipeline.Options, cfg config.Config, output string, noCache bool) error {
	g, err := prov.ReadGraphFile(graphPath)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", graphPath, err)
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	var (
		artifacts map[string][]byte
		cacheHit  bool
	)
	if layoutPath == "" {
		artifacts, cacheHit, err = c.exportComputed(ctx, runner, g, opts)
	} else {
		artifacts, cacheHit, err = c.exportSaved(ctx, runner, g, layoutPath, opts)
	}
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     graphPath,
		output:    output,
		cacheHit:  cacheHit,
	})
}

// exportComputed runs the full pipeline: layout, then artifacts, both
// cached.
func (c *CLI) exportComputed(ctx context.Context, runner *pipeline.Runner, g *prov.Graph, opts pipeline.Options) (map[string][]byte, bool, error) {
	opts.SetLayoutDefaults()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Strategy))
	spinner.Start()

	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return nil, false, err
	}
	spinner.Stop()

	return result.Artifacts, result.CacheInfo.LayoutHit && result.CacheInfo.ExportHit, nil
}

// exportSaved renders from a persisted layout document without touching
// its geometry.
func (c *CLI) exportSaved(ctx context.Context, runner *pipeline.Runner, g *prov.Graph, layoutPath string, opts pipeline.Options) (map[string][]byte, bool, error) {
	store, algorithm, err := layout.ReadFile(layoutPath, layout.ReadOptions{Graph: g})
	if err != nil {
		return nil, false, fmt.Errorf("load layout %s: %w", layoutPath, err)
	}

	// Rendering reads labels from the frontier, which has to match the
	// geometry: reopen what was expanded when the layout was written.
	reopenExpanded(g, store)
	opts.Strategy = algorithm

	spinner := newSpinnerWithContext(ctx, "Rendering layout...")
	spinner.Start()

	artifacts, cacheHit, err := runner.ExportWithCacheInfo(ctx, store, g, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return nil, false, err
	}
	spinner.Stop()

	return artifacts, cacheHit, nil
}

// =============================================================================
// Artifact Writing
// =============================================================================

// artifactWriteParams bundles everything writeArtifacts needs to place
// rendered artifacts on disk.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes rendered artifacts to their output files. A
// single format goes to the -o path as given; multiple formats share a
// base path and get one file per format extension.
func writeArtifacts(p artifactWriteParams) error {
	written := make([]string, 0, len(p.formats))

	if len(p.formats) == 1 {
		format := p.formats[0]
		path := p.output
		if path == "" {
			path = basePath("", p.input) + "." + format
		}
		if err := writeArtifact(p.artifacts[format], format, path); err != nil {
			return err
		}
		written = append(written, path)
	} else {
		base := basePath(p.output, p.input)
		for _, format := range p.formats {
			path := base + "." + format
			if err := writeArtifact(p.artifacts[format], format, path); err != nil {
				return err
			}
			written = append(written, path)
		}
	}

	// Nothing to announce when the artifact itself went to stdout.
	if p.output == "-" {
		return nil
	}

	printSuccess("Export complete")
	for _, path := range written {
		printFile(path)
	}
	if p.cacheHit {
		printDetail("served from cache")
	}
	return nil
}

// writeArtifact writes one artifact, failing loudly when the pipeline
// did not produce the requested format.
func writeArtifact(data []byte, format, path string) error {
	if data == nil {
		return fmt.Errorf("no %s artifact was produced", format)
	}
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. If output ends
// in a format extension, that extension is stripped, so -o graph.svg and
// -f svg,png produce graph.svg and graph.png.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method, making
// os.Stdout usable where a WriteCloser is needed.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. "-" selects
// stdout; otherwise the file is created, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
