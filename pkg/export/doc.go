// Package export turns provenance graphs and computed layouts into
// shareable artifacts.
//
// # Overview
//
// This package produces two families of output. The first renders the
// graph structure itself: [ToDOT] emits Graphviz DOT for the current
// frontier view, and [RenderSVG], [RenderPDF] and [RenderPNG] turn that
// DOT into images. The second renders computed geometry: [Snapshot]
// draws the exact node positions and edge routes held by a
// [github.com/provgraph/provis/pkg/layout.Store], which is useful for
// inspecting what a layout run actually produced.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := export.ToDOT(g, export.DOTOptions{Detailed: false})
//	svg, err := export.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := export.RenderPDF(dot)
//	png, err := export.RenderPNG(dot, 2.0)  // 2x scale
//
// To draw computed geometry instead of re-running Graphviz:
//
//	err := export.Snapshot(w, store, export.SnapshotOptions{Theme: "dark"})
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// Nodes take the conventional provenance shapes: entities render as
// yellow ellipses, activities as blue boxes, agents as orange houses.
// Collapsed summary nodes render as dashed grey boxes so grouped
// regions are recognizable at a glance.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering and [github.com/ajstarks/svgo] for geometry snapshots. PDF
// and PNG conversion requires librsvg (rsvg-convert).
package export
