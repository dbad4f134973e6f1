// Package pipeline provides the core layout-and-export pipeline for provis.
//
// This package implements the complete load → layout → export flow that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: Run the configured strategy on the provenance graph,
//     producing a geometry store.
//  2. Export: Generate output artifacts in various formats
//     (DOT, SVG, PNG, PDF, geometry snapshot, layout document).
//
// Each stage can be run independently or as part of the complete
// pipeline. Both stages are cached: layouts by graph hash plus layout
// options, artifacts by layout hash plus export options.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Strategy: "hierarchical",
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Layout only
//	store, err := runner.ComputeLayout(ctx, g, opts)
//
//	// Export with an existing layout
//	artifacts, err := runner.Export(ctx, store, g, opts)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/provgraph/provis/pkg/cache"
	"github.com/provgraph/provis/pkg/engine"
	"github.com/provgraph/provis/pkg/engine/dot"
	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the PNG resolution multiplier. 2.0 produces 2x
	// images suitable for high-DPI displays.
	DefaultScale = 2.0

	// DefaultTheme is the default snapshot color scheme.
	DefaultTheme = "light"
)

// Format constants for output formats.
const (
	FormatDOT      = "dot"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatSnapshot = "snapshot"
	FormatXML      = "xml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = []string{
	FormatDOT,
	FormatSVG,
	FormatPNG,
	FormatPDF,
	FormatSnapshot,
	FormatXML,
}

// ValidThemes is the set of supported snapshot themes.
var ValidThemes = []string{"light", "dark"}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout-and-export pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// GraphName labels the run in the archive. Optional.
	GraphName string `json:"graph_name,omitempty"`

	// Layout options
	Strategy string `json:"strategy,omitempty"`
	Tool     string `json:"tool,omitempty"`
	ToolPath string `json:"tool_path,omitempty"`
	Workers  int    `json:"workers,omitempty"`
	Depth    int    `json:"depth,omitempty"`
	Zoom     bool   `json:"zoom,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`

	// Export options
	Formats  []string `json:"formats,omitempty"`
	Theme    string   `json:"theme,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger         `json:"-"`
	Progress engine.ProgressFunc `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// GraphHash is the content hash of the graph.
	GraphHash string

	// Store is the computed geometry.
	Store *layout.Store

	// Layout is the serialized layout document for Store.
	Layout []byte

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo

	// RunID is the archive record ID, empty when no archive is attached.
	RunID string
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Width      float64
	Height     float64
	LayoutTime time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	ExportHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, ValidFormats); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a snapshot theme is valid.
func ValidateTheme(theme string) error {
	if !slices.Contains(ValidThemes, theme) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown theme %q (want light or dark)", theme)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times
// has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForExport(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation. Defaults
// are resolved here, before cache keys are derived, so equivalent option
// sets land on the same cache entry.
func (o *Options) SetLayoutDefaults() {
	if o.Strategy == "" {
		o.Strategy = engine.DefaultStrategy
	}
	if o.Tool == "" && o.ToolPath == "" {
		o.Tool = dot.DefaultTool
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateStrategyName(o.Strategy); err != nil {
		return err
	}
	if err := errors.ValidateWorkers(o.Workers); err != nil {
		return err
	}
	return errors.ValidateDepth(o.Depth)
}

// SetExportDefaults sets default values for artifact generation.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForExport validates and sets defaults for artifact generation.
func (o *Options) ValidateForExport() error {
	o.SetExportDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateTheme(o.Theme)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy: o.Strategy,
		Tool:     o.Tool,
		Depth:    o.Depth,
		Zoom:     o.Zoom,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Theme:    o.Theme,
		Detailed: o.Detailed,
		Scale:    o.Scale,
	}
}

// engineOptions translates pipeline options into strategy construction
// options.
func (o *Options) engineOptions() engine.Options {
	return engine.Options{
		Strategy: o.Strategy,
		Tool:     o.Tool,
		ToolPath: o.ToolPath,
		Workers:  o.Workers,
		Zoom:     o.Zoom,
		Progress: o.Progress,
		Logger:   o.Logger,
	}
}
