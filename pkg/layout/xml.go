package layout

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/provgraph/provis/pkg/errors"
)

// =============================================================================
// Persisted Layout Document
// =============================================================================

// GraphInfo is the graph surface needed to resolve a persisted layout:
// index bounds plus edge endpoint lookup (the document stores only edge
// indices and control points). *prov.Graph satisfies it.
type GraphInfo interface {
	NodeCount() int
	EdgeCount() int
	EdgeEndpoints(index int) (from, to int, ok bool)
}

// ReadOptions controls how a persisted layout is resolved against a graph.
type ReadOptions struct {
	// Graph validates indices and resolves edge endpoints. Required when
	// the document contains edges.
	Graph GraphInfo

	// Remap translates node indices written by a different
	// graph-construction pass into current indices. Missing entries pass
	// through unchanged.
	Remap map[int]int
}

type xmlDoc struct {
	XMLName   xml.Name  `xml:"layout"`
	Algorithm string    `xml:"algorithm"`
	Nodes     []xmlNode `xml:"layout-nodes>layout-node"`
	Edges     []xmlEdge `xml:"layout-edges>layout-edge"`
}

type xmlNode struct {
	Index  int     `xml:"index,attr"`
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type xmlEdge struct {
	Index int    `xml:"index,attr"`
	X     string `xml:"x,attr"`
	Y     string `xml:"y,attr"`
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a store to the persisted layout document. The
// algorithm string is carried opaquely; positions are written with full
// float64 precision so the round trip is bit-identical.
func Marshal(s *Store, algorithm string) ([]byte, error) {
	doc := xmlDoc{Algorithm: algorithm}

	for _, n := range s.Nodes() {
		doc.Nodes = append(doc.Nodes, xmlNode{
			Index:  n.Index,
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
		})
	}
	for _, e := range s.Edges() {
		doc.Edges = append(doc.Edges, xmlEdge{
			Index: e.Index,
			X:     joinFloats(e.XPoints),
			Y:     joinFloats(e.YPoints),
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// Unmarshal parses a persisted layout document into a fresh store and
// returns the opaque algorithm string alongside it.
func Unmarshal(data []byte, opts ReadOptions) (*Store, string, error) {
	var doc xmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidLayout, err, "parse layout document")
	}

	s := New()
	if opts.Graph != nil {
		s = NewFor(opts.Graph)
	}

	for _, xn := range doc.Nodes {
		index := remapIndex(xn.Index, opts.Remap)
		if _, err := s.PutNode(Node{Index: index, X: xn.X, Y: xn.Y, Width: xn.Width, Height: xn.Height}); err != nil {
			return nil, "", err
		}
	}

	for _, xe := range doc.Edges {
		if opts.Graph == nil {
			return nil, "", errors.New(errors.ErrCodeInvalidLayout, "document contains edges but no graph was given to resolve endpoints")
		}
		from, to, ok := opts.Graph.EdgeEndpoints(xe.Index)
		if !ok {
			return nil, "", errors.New(errors.ErrCodeIndexRange, "edge index %d outside graph range [0,%d)", xe.Index, opts.Graph.EdgeCount())
		}
		xs, err := splitFloats(xe.X)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidLayout, err, "edge %d x points", xe.Index)
		}
		ys, err := splitFloats(xe.Y)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidLayout, err, "edge %d y points", xe.Index)
		}
		if _, err := s.PutEdge(xe.Index, from, to, xs, ys); err != nil {
			return nil, "", err
		}
	}

	return s, doc.Algorithm, nil
}

// WriteFile writes a store to a persisted layout file. A .json extension
// selects the JSON rendition; anything else gets XML. The file is created
// with 0644 permissions.
func WriteFile(s *Store, algorithm, path string) error {
	marshal := Marshal
	if strings.EqualFold(filepath.Ext(path), ".json") {
		marshal = MarshalJSON
	}
	data, err := marshal(s, algorithm)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a persisted layout file, detecting the rendition from the
// content rather than the file name.
func ReadFile(path string, opts ReadOptions) (*Store, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return UnmarshalJSON(data, opts)
	}
	return Unmarshal(data, opts)
}

// =============================================================================
// Internal Helpers
// =============================================================================

func remapIndex(index int, remap map[int]int) int {
	if remap == nil {
		return index
	}
	if mapped, ok := remap[index]; ok {
		return mapped
	}
	return index
}

// joinFloats renders a space-separated float list with full precision.
func joinFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func splitFloats(list string) ([]float64, error) {
	fields := strings.Fields(list)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
