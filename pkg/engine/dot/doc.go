// Package dot drives an external Graphviz layout process.
//
// # Overview
//
// This package is the bridge between the layout engine and the Graphviz
// command-line tools (dot, neato, fdp, ...). It renders a layout problem
// to DOT source, runs the tool with plain-text output, and parses the
// result back into a [layout.Store].
//
// # Problem Format
//
// A [Problem] names its nodes by integer index. The generated DOT uses
// those indices as quoted node names and requests fixed node sizes, so
// the tool decides positions but never dimensions:
//
//	digraph G {
//	  node [shape=box, fixedsize=true, label=""];
//	  "0" [width=0.75, height=0.5];
//	  "1" [width=0.75, height=0.5];
//	  "0" -> "1";
//	}
//
// # Coordinate Conversion
//
// Graphviz plain output is inch-based with the y axis pointing up.
// Internal geometry is point-based (72 per inch) with y pointing down,
// so every imported coordinate is multiplied by [PointsPerInch] and y
// is negated.
//
// # Tool Verification
//
// Tool binaries are resolved through PATH once and cached; see
// [ResolveTool]. Failed lookups are not cached, so installing the tool
// mid-process is picked up on the next call.
//
// # Concurrency
//
// A [Runner] is not safe for concurrent use. Workers that run layout
// passes in parallel each take their own [Runner.Clone]; clones share
// the in-flight process counter, so [Runner.InFlight] observes the
// whole pool.
package dot
