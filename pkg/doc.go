// Package pkg provides the core libraries for Provis provenance visualization.
//
// # Overview
//
// Provis lays out provenance graphs level by level: a graph is summarized
// into a hierarchy of groups, laid out down to a chosen depth, and collapsed
// summaries can be expanded in place without recomputing the rest of the
// picture. The pkg directory is organized into four main areas:
//
//  1. [prov] - The provenance graph model (nodes, edges, summary hierarchy)
//  2. [engine] - Layout strategies and the Graphviz tool driver
//  3. [layout] - Layout geometry store and persisted layout documents
//  4. [pipeline] - Orchestration (load → layout → export) with caching
//
// # Architecture
//
// The typical data flow through Provis:
//
//	Provenance graph file (JSON)
//	         ↓
//	    [prov] package (graph model + summary frontier)
//	         ↓
//	    [engine] package (strategy + parallel Graphviz runs)
//	         ↓
//	    [layout] package (geometry store, XML/JSON documents)
//	         ↓
//	    [export] package (DOT/SVG/PNG/PDF/snapshot output)
//
// # Quick Start
//
// Load a graph, compute a layout, and render it:
//
//	import (
//	    "context"
//	    "github.com/provgraph/provis/pkg/engine"
//	    "github.com/provgraph/provis/pkg/export"
//	    "github.com/provgraph/provis/pkg/prov"
//	)
//
//	// 1. Load the provenance graph
//	g, _ := prov.ReadGraphFile("build.json")
//
//	// 2. Pick a strategy and lay out down to depth 1
//	alg, _ := engine.New(engine.Options{Strategy: engine.DefaultStrategy})
//	store, _ := alg.Initialize(context.Background(), g, 1)
//
//	// 3. Expand one summary in place
//	n := g.Node(4)
//	g.Expand(n)
//	_ = alg.Update(context.Background(), store, n.Index())
//
//	// 4. Render to SVG
//	dot := export.ToDOT(g, export.DOTOptions{})
//	svg, _ := export.RenderSVG(dot)
//
// # Main Packages
//
// ## Graph Model
//
// [prov] - Provenance graphs in PROV-DM terms: entities, activities, and
// agents connected by typed relations. Summary nodes group subtrees; the
// expanded/collapsed state of the summaries defines the frontier, the set of
// nodes a viewer currently sees. JSON serialization with stable fingerprints
// for cache keys.
//
// ## Layout
//
// [engine] - Layout algorithms behind a common interface. The hierarchical
// strategy lays out each summary's children in isolation and composes the
// pieces; flat ignores the hierarchy; radial arranges levels on rings.
// Strategies fan independent Graphviz runs out over a worker pool.
//
// [engine/dot] - The Graphviz side: builds DOT input, resolves and invokes
// the layout tool, and parses plain-format output back into geometry.
//
// [layout] - The geometry store shared by all strategies: node boxes and
// edge polylines indexed by graph position, with extent statistics and
// affine transforms. Persists to an XML document (or a JSON rendition) and
// reads either back, verifying indices against the owning graph.
//
// ## Orchestration
//
// [pipeline] - The layout-and-export pipeline used by CLI and API. Validates
// options, keys work by graph fingerprint, consults the cache before
// computing, and records finished runs in the archive.
//
// [export] - Output generation: DOT text for the current frontier, SVG via
// Graphviz, geometry-only SVG snapshots with light/dark themes, and PDF/PNG
// conversion through rsvg-convert.
//
// ## Infrastructure
//
// [cache] - Artifact cache keyed by graph and option fingerprints. File
// backend for the CLI, Redis for shared deployments, and a null backend
// that disables caching.
//
// [archive] - Run archive recording layout runs with their parameters and
// results. SQLite for local use, MongoDB for shared deployments, memory for
// tests.
//
// [config] - TOML configuration file handling with defaults and validation.
//
// [errors] - Coded errors shared across packages; codes survive wrapping
// and map to HTTP status codes in the API.
//
// [observability] - Progress and event hooks the engine reports through.
//
// [buildinfo] - Build-time version information injected via ldflags.
//
// # Common Workflows
//
// Compute through the pipeline with caching:
//
//	runner := pipeline.NewRunner(cache, keyer, logger)
//	result, _ := runner.Execute(ctx, g, pipeline.Options{
//	    Strategy: "hierarchical",
//	    Depth:    1,
//	    Formats:  []string{"svg"},
//	})
//
// Persist a layout and reopen it later:
//
//	_ = layout.WriteFile(store, "hierarchical", "run.layout.xml")
//	store, algorithm, _ := layout.ReadFile("run.layout.xml", layout.ReadOptions{Graph: g})
//
// Serve a layout session over HTTP:
//
//	srv := api.New(g, store, alg, logger)
//	http.ListenAndServe(":8080", srv.Handler())
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/engine/...     # Specific package
//	go test -run Example         # Examples only
//
// [prov]: https://pkg.go.dev/github.com/provgraph/provis/pkg/prov
// [engine]: https://pkg.go.dev/github.com/provgraph/provis/pkg/engine
// [engine/dot]: https://pkg.go.dev/github.com/provgraph/provis/pkg/engine/dot
// [layout]: https://pkg.go.dev/github.com/provgraph/provis/pkg/layout
// [pipeline]: https://pkg.go.dev/github.com/provgraph/provis/pkg/pipeline
// [export]: https://pkg.go.dev/github.com/provgraph/provis/pkg/export
// [cache]: https://pkg.go.dev/github.com/provgraph/provis/pkg/cache
// [archive]: https://pkg.go.dev/github.com/provgraph/provis/pkg/archive
// [config]: https://pkg.go.dev/github.com/provgraph/provis/pkg/config
// [errors]: https://pkg.go.dev/github.com/provgraph/provis/pkg/errors
// [observability]: https://pkg.go.dev/github.com/provgraph/provis/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/provgraph/provis/pkg/buildinfo
package pkg
