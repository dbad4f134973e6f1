package layout

import (
	"encoding/json"
	"fmt"

	"github.com/provgraph/provis/pkg/errors"
)

// =============================================================================
// JSON Rendition
// =============================================================================

// The JSON rendition carries the same document as the XML one. It exists
// for consumers that already speak the HTTP API's layout shape, so a file
// written with -o layout.json can be fed to a front-end directly.

type jsonDoc struct {
	Algorithm string     `json:"algorithm"`
	Nodes     []jsonNode `json:"nodes"`
	Edges     []jsonEdge `json:"edges,omitempty"`
}

type jsonNode struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type jsonEdge struct {
	Index int       `json:"index"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
}

// MarshalJSON serializes a store to the JSON rendition of the layout
// document. Like Marshal, positions survive the round trip bit-identical.
func MarshalJSON(s *Store, algorithm string) ([]byte, error) {
	doc := jsonDoc{Algorithm: algorithm, Nodes: []jsonNode{}}

	for _, n := range s.Nodes() {
		doc.Nodes = append(doc.Nodes, jsonNode{
			Index:  n.Index,
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
		})
	}
	for _, e := range s.Edges() {
		doc.Edges = append(doc.Edges, jsonEdge{
			Index: e.Index,
			X:     e.XPoints,
			Y:     e.YPoints,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return append(data, '\n'), nil
}

// UnmarshalJSON parses the JSON rendition into a fresh store and returns
// the opaque algorithm string alongside it.
func UnmarshalJSON(data []byte, opts ReadOptions) (*Store, string, error) {
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidLayout, err, "parse layout document")
	}

	s := New()
	if opts.Graph != nil {
		s = NewFor(opts.Graph)
	}

	for _, jn := range doc.Nodes {
		index := remapIndex(jn.Index, opts.Remap)
		if _, err := s.PutNode(Node{Index: index, X: jn.X, Y: jn.Y, Width: jn.Width, Height: jn.Height}); err != nil {
			return nil, "", err
		}
	}

	for _, je := range doc.Edges {
		if opts.Graph == nil {
			return nil, "", errors.New(errors.ErrCodeInvalidLayout, "document contains edges but no graph was given to resolve endpoints")
		}
		from, to, ok := opts.Graph.EdgeEndpoints(je.Index)
		if !ok {
			return nil, "", errors.New(errors.ErrCodeIndexRange, "edge index %d outside graph range [0,%d)", je.Index, opts.Graph.EdgeCount())
		}
		if _, err := s.PutEdge(je.Index, from, to, je.X, je.Y); err != nil {
			return nil, "", err
		}
	}

	return s, doc.Algorithm, nil
}
