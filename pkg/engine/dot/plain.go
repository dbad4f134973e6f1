package dot

import (
	"strconv"
	"strings"

	"github.com/provgraph/provis/pkg/errors"
)

// plainOutput is the parsed form of Graphviz plain output, still in the
// tool's inch-based coordinate space and string node names.
type plainOutput struct {
	Scale  float64
	Width  float64
	Height float64
	Nodes  []plainNode
	Edges  []plainEdge
}

type plainNode struct {
	ID     string
	X, Y   float64
	Width  float64
	Height float64
}

type plainEdge struct {
	From, To string
	XPoints  []float64
	YPoints  []float64
}

// parsePlain parses the plain output of a layout tool:
//
//	graph <scale> <width> <height>
//	node <name> <x> <y> <width> <height> ...
//	edge <tail> <head> <n> <x1> <y1> ... <xn> <yn> ...
//	stop
//
// Long lines may be split with a trailing backslash; quoted fields may
// contain spaces. Trailing fields past the ones above (labels, styles,
// colors) are tolerated and ignored.
func parsePlain(data []byte) (*plainOutput, error) {
	out := &plainOutput{}
	sawGraph := false
	sawStop := false

	lineno := 0
	for _, line := range logicalLines(string(data)) {
		lineno++
		fields := splitPlainFields(line)
		if len(fields) == 0 {
			continue
		}
		if sawStop {
			return nil, errors.New(errors.ErrCodePlainParse, "line %d: %q after stop", lineno, fields[0])
		}

		switch fields[0] {
		case "graph":
			if sawGraph {
				return nil, errors.New(errors.ErrCodePlainParse, "line %d: repeated graph line", lineno)
			}
			if len(fields) < 4 {
				return nil, errors.New(errors.ErrCodePlainParse, "line %d: graph line needs scale, width, height", lineno)
			}
			vals, err := parseFloats(fields[1:4], lineno)
			if err != nil {
				return nil, err
			}
			out.Scale, out.Width, out.Height = vals[0], vals[1], vals[2]
			sawGraph = true

		case "node":
			if !sawGraph {
				return nil, errors.New(errors.ErrCodePlainParse, "line %d: node before graph line", lineno)
			}
			if len(fields) < 6 {
				return nil, errors.New(errors.ErrCodePlainParse, "line %d: node line needs name, x, y, width, height", lineno)
			}
			vals, err := parseFloats(fields[2:6], lineno)
			if err != nil {
				return nil, err
			}
			out.Nodes = append(out.Nodes, plainNode{
				ID: fields[1], X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3],
			})

		case "edge":
			if !sawGraph {
				return nil, errors.New(errors.ErrCodePlainParse, "line %d: edge before graph line", lineno)
			}
			if len(fields) < 4 {
				return nil, errors.New(errors.ErrCodePlainParse, "line %d: edge line needs tail, head, point count", lineno)
			}
			n, err := strconv.Atoi(fields[3])
			if err != nil || n < 0 {
				return nil, errors.New(errors.ErrCodePlainParse, "line %d: bad point count %q", lineno, fields[3])
			}
			if len(fields) < 4+2*n {
				return nil, errors.New(errors.ErrCodePlainParse, "line %d: edge promises %d points but carries %d fields", lineno, n, len(fields)-4)
			}
			coords, err := parseFloats(fields[4:4+2*n], lineno)
			if err != nil {
				return nil, err
			}
			edge := plainEdge{
				From:    fields[1],
				To:      fields[2],
				XPoints: make([]float64, n),
				YPoints: make([]float64, n),
			}
			for i := 0; i < n; i++ {
				edge.XPoints[i] = coords[2*i]
				edge.YPoints[i] = coords[2*i+1]
			}
			out.Edges = append(out.Edges, edge)

		case "stop":
			sawStop = true

		default:
			return nil, errors.New(errors.ErrCodePlainParse, "line %d: unknown record %q", lineno, fields[0])
		}
	}

	if !sawGraph {
		return nil, errors.New(errors.ErrCodePlainParse, "output has no graph line")
	}
	if !sawStop {
		return nil, errors.New(errors.ErrCodePlainParse, "output truncated: no stop line")
	}
	return out, nil
}

// logicalLines splits output into lines, joining physical lines that end
// with a backslash continuation.
func logicalLines(data string) []string {
	physical := strings.Split(data, "\n")
	var out []string
	var pending strings.Builder
	for _, line := range physical {
		line = strings.TrimSuffix(line, "\r")
		if cut, ok := strings.CutSuffix(line, "\\"); ok {
			pending.WriteString(cut)
			continue
		}
		pending.WriteString(line)
		out = append(out, pending.String())
		pending.Reset()
	}
	if pending.Len() > 0 {
		out = append(out, pending.String())
	}
	return out
}

// splitPlainFields splits a record on whitespace, honoring double-quoted
// fields with backslash escapes.
func splitPlainFields(line string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	escaped := false
	quoted := false

	flush := func() {
		if cur.Len() > 0 || quoted {
			out = append(out, cur.String())
		}
		cur.Reset()
		quoted = false
	}

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			quoted = true
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

func parseFloats(fields []string, lineno int) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodePlainParse, "line %d: bad number %q", lineno, f)
		}
		out[i] = v
	}
	return out, nil
}
