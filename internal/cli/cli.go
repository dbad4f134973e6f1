// Package cli implements the provis command-line interface.
//
// The CLI wraps the layout pipeline for terminal use: computing layouts
// from provenance graph files, expanding persisted layouts in place,
// exporting artifacts, serving the HTTP facade, and managing the cache
// and run archive. Commands are built with cobra; output styling uses
// lipgloss and logging uses charmbracelet/log.
//
// # Commands
//
//   - layout: compute a layout for a graph file and write the layout document
//   - expand: expand one summary node of a persisted layout in place
//   - serve: compute a layout and serve it over HTTP
//   - export: render a graph (or a persisted layout) to output formats
//   - cache: inspect and clear the layout cache
//   - runs: browse the run archive
//   - algorithms: list strategies and layout tools
//
// Configuration comes from the TOML file loaded by pkg/config; flags a
// command declares override the file values.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/provgraph/provis/pkg/archive"
	"github.com/provgraph/provis/pkg/buildinfo"
	"github.com/provgraph/provis/pkg/cache"
	"github.com/provgraph/provis/pkg/config"
	"github.com/provgraph/provis/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "provis"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location. Bound to
	// the root --config flag.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "provis",
		Short:        "Provis lays out provenance graphs level by level",
		Long:         `Provis computes navigable layouts for summarized provenance graphs. A graph is laid out down to a chosen depth, collapsed summaries can be expanded in place later, and the result renders to DOT, SVG, and image formats or serves over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default "+config.DefaultPath()+")")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.expandCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.algorithmsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configured or default config file.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.ConfigPath)
}

// =============================================================================
// Backend Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
// The caller owns the runner and must Close it.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache picks the cache backend. --no-cache and backend "none" both
// disable caching entirely.
func newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == "redis" {
		return cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}
	return cache.NewFileCache(cfg.Dir)
}

// newArchive opens the configured run archive. Backend "none" yields a
// nil store, which the pipeline treats as recording disabled.
func newArchive(ctx context.Context, cfg config.Archive) (archive.Store, error) {
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "memory":
		return archive.NewMemoryStore(), nil
	case "mongo":
		return archive.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	default:
		return archive.NewSQLiteStore(cfg.Path)
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// engineFlags registers the strategy selection flags shared by the
// commands that run the engine.
func engineFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", "", "layout strategy: hierarchical (default), flat, radial")
	cmd.Flags().StringVar(&opts.Tool, "tool", "", "layout tool resolved through PATH (default: dot)")
	cmd.Flags().StringVar(&opts.ToolPath, "tool-path", "", "absolute path to the layout tool binary")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "layout worker pool size (0 = one per CPU)")
	cmd.Flags().IntVarP(&opts.Depth, "depth", "d", 0, "summary recursion depth (0 = unbounded)")
	cmd.Flags().BoolVar(&opts.Zoom, "zoom", false, "keep expanded summaries at placeholder scale")
}

// mergeEngineConfig fills engine options the user left at their flag
// defaults from the config file.
func mergeEngineConfig(cmd *cobra.Command, opts *pipeline.Options, cfg config.Engine) {
	flags := cmd.Flags()
	if !flags.Changed("strategy") {
		opts.Strategy = cfg.Strategy
	}
	if !flags.Changed("tool") {
		opts.Tool = cfg.Tool
	}
	if !flags.Changed("tool-path") {
		opts.ToolPath = cfg.ToolPath
	}
	if !flags.Changed("workers") {
		opts.Workers = cfg.Workers
	}
	if !flags.Changed("depth") {
		opts.Depth = cfg.Depth
	}
	if !flags.Changed("zoom") {
		opts.Zoom = cfg.Zoom
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
