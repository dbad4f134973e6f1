package pipeline

import (
	"bytes"
	"fmt"

	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/export"
	"github.com/provgraph/provis/pkg/layout"
	"github.com/provgraph/provis/pkg/prov"
)

// =============================================================================
// Artifact Generation
// =============================================================================

// ExportArtifacts renders the requested formats without caching.
//
// The graph supplies structure (frontier view, labels, node kinds); the
// store supplies geometry. Formats dot/svg/png/pdf render the frontier
// through Graphviz, snapshot draws the store geometry directly, and xml
// is the persisted layout document itself.
func ExportArtifacts(store *layout.Store, g *prov.Graph, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}

	needsDOT := false
	for _, format := range opts.Formats {
		switch format {
		case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
			needsDOT = true
		}
	}
	var dotSrc string
	if needsDOT {
		dotSrc = export.ToDOT(g, export.DOTOptions{Detailed: opts.Detailed})
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dotSrc)
		case FormatSVG:
			data, err = export.RenderSVG(dotSrc)
		case FormatPNG:
			data, err = export.RenderPNG(dotSrc, opts.Scale)
		case FormatPDF:
			data, err = export.RenderPDF(dotSrc)
		case FormatSnapshot:
			data, err = snapshotSVG(store, g, opts)
		case FormatXML:
			data, err = layout.Marshal(store, opts.Strategy)
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported export format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// snapshotSVG draws the store geometry with labels and summary markers
// resolved through the graph.
func snapshotSVG(store *layout.Store, g *prov.Graph, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	err := export.Snapshot(&buf, store, export.SnapshotOptions{
		Theme: opts.Theme,
		Label: func(index int) string {
			if n := g.Node(index); n != nil {
				return n.DisplayLabel()
			}
			return ""
		},
		Summary: func(index int) bool {
			n := g.Node(index)
			return n != nil && n.IsSummary()
		},
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
