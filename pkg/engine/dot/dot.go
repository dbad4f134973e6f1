package dot

import (
	"bytes"
	"fmt"
	"strconv"
)

// PointsPerInch converts between internal layout units (points) and the
// tool's inch-based plain output.
const PointsPerInch = 72.0

// Node is one layout subject: a graph node index plus its fixed size in
// internal units.
type Node struct {
	Index  int
	Width  float64
	Height float64
}

// Edge connects two subjects. Index is the original edge index carried
// through to the resulting store.
type Edge struct {
	Index int
	From  int
	To    int
}

// Problem is one self-contained layout task handed to the external tool.
type Problem struct {
	Nodes []Node
	Edges []Edge
}

// Marshal renders the problem as DOT source. Node names are the quoted
// decimal indices; sizes are emitted in inches with fixedsize so the tool
// honors them exactly.
func Marshal(p Problem) []byte {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for _, n := range p.Nodes {
		fmt.Fprintf(&buf, "  %q [width=%g, height=%g];\n",
			strconv.Itoa(n.Index), n.Width/PointsPerInch, n.Height/PointsPerInch)
	}

	buf.WriteString("\n")
	for _, e := range p.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", strconv.Itoa(e.From), strconv.Itoa(e.To))
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}
