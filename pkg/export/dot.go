package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/provgraph/provis/pkg/prov"
)

// DOTOptions configures DOT generation.
type DOTOptions struct {
	// Detailed includes node kinds and summary child counts in labels.
	// When false, only the display label is shown.
	Detailed bool
}

// Fill colors follow the conventional PROV diagram palette.
const (
	fillEntity   = "#FFFC87"
	fillActivity = "#9FB1FC"
	fillAgent    = "#FDB266"
	fillSummary  = "lightgrey"
)

// ToDOT converts the graph's current frontier view to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF],
// or [RenderPNG], or saved for external Graphviz tooling.
//
// Only frontier nodes appear: children of collapsed summaries are folded
// into their representative, and edges between folded nodes are mapped to
// the representatives (parallel edges deduplicated). Expanding or
// collapsing summaries on the graph and calling ToDOT again produces the
// matching coarser or finer diagram.
func ToDOT(g *prov.Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph provenance {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Frontier() {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.FrontierEdges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From.ID, e.To.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *prov.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}
	if n.IsSummary() {
		return fmt.Sprintf("%s\n%d children", label, len(n.Children()))
	}
	return label + "\n" + n.Kind.String()
}

func fmtAttrs(n *prov.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsSummary():
		attrs = append(attrs, "shape=box", "style=\"rounded,filled,dashed\"", "fillcolor="+fillSummary)
	case n.Kind == prov.KindActivity:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", fmt.Sprintf("fillcolor=%q", fillActivity))
	case n.Kind == prov.KindAgent:
		attrs = append(attrs, "shape=house", "style=filled", fmt.Sprintf("fillcolor=%q", fillAgent))
	default:
		attrs = append(attrs, "shape=ellipse", "style=filled", fmt.Sprintf("fillcolor=%q", fillEntity))
	}
	return attrs
}
