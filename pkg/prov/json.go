package prov

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document Format
// =============================================================================

// Document is the JSON wire format for provenance graphs.
// Plain nodes, edges, and groups are listed separately; groups may nest by
// referencing other group IDs in their children.
type Document struct {
	Nodes  []DocNode  `json:"nodes"`
	Edges  []DocEdge  `json:"edges"`
	Groups []DocGroup `json:"groups,omitempty"`
}

// DocNode is the serialized form of a plain node.
type DocNode struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	Kind   string  `json:"kind,omitempty"` // entity (default), activity, agent
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Hidden bool    `json:"hidden,omitempty"`
}

// DocEdge is the serialized form of an edge.
type DocEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind,omitempty"` // derived (default), used, generated, ...
}

// DocGroup is the serialized form of a summary node.
type DocGroup struct {
	ID       string   `json:"id"`
	Label    string   `json:"label,omitempty"`
	Children []string `json:"children"`
	Expanded bool     `json:"expanded,omitempty"`
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a Graph to JSON bytes.
// Output is deterministic: nodes, edges, and groups appear in index order.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a Graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a Graph as JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded Graph.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (*Graph, error) {
	return readGraphFrom(r)
}

// Fingerprint returns a stable hex digest of the graph content, suitable
// for cache keys and archive lookups.
func Fingerprint(g *Graph) (string, error) {
	data, err := MarshalGraph(g)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g *Graph, w io.Writer) error {
	doc := Document{
		Nodes: make([]DocNode, 0, len(g.nodes)),
		Edges: make([]DocEdge, 0, len(g.edges)),
	}

	for _, n := range g.nodes {
		if n.IsSummary() {
			group := DocGroup{
				ID:       n.ID,
				Label:    n.Label,
				Expanded: n.Expanded,
				Children: make([]string, 0, len(n.children)),
			}
			for _, c := range n.children {
				group.Children = append(group.Children, c.ID)
			}
			doc.Groups = append(doc.Groups, group)
			continue
		}
		doc.Nodes = append(doc.Nodes, DocNode{
			ID:     n.ID,
			Label:  n.Label,
			Kind:   kindName(n.Kind),
			Width:  n.Width,
			Height: n.Height,
			Hidden: !n.Visible,
		})
	}

	for _, e := range g.edges {
		doc.Edges = append(doc.Edges, DocEdge{
			From: e.From,
			To:   e.To,
			Kind: edgeKindName(e.Kind),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument builds a Graph from its wire format.
// Plain nodes receive indices in document order, then groups.
func FromDocument(doc Document) (*Graph, error) {
	g := New()

	for _, dn := range doc.Nodes {
		kind, err := parseNodeKind(dn.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", dn.ID, err)
		}
		n, err := g.AddNode(Node{
			ID:     dn.ID,
			Label:  dn.Label,
			Kind:   kind,
			Width:  dn.Width,
			Height: dn.Height,
		})
		if err != nil {
			return nil, fmt.Errorf("add node %s: %w", dn.ID, err)
		}
		if dn.Hidden {
			n.Visible = false
		}
	}

	// Create all group nodes before linking children so groups can
	// reference groups that appear later in the document.
	for _, dg := range doc.Groups {
		n, err := g.AddSummary(Node{ID: dg.ID, Label: dg.Label})
		if err != nil {
			return nil, fmt.Errorf("add group %s: %w", dg.ID, err)
		}
		n.Expanded = dg.Expanded
	}

	for _, dg := range doc.Groups {
		parent := g.NodeByID(dg.ID)
		for _, childID := range dg.Children {
			child := g.NodeByID(childID)
			if child == nil {
				return nil, fmt.Errorf("group %s: unknown child %s", dg.ID, childID)
			}
			if err := g.Adopt(parent, child); err != nil {
				return nil, fmt.Errorf("group %s: child %s: %w", dg.ID, childID, err)
			}
		}
	}

	for _, de := range doc.Edges {
		kind, err := parseEdgeKind(de.Kind)
		if err != nil {
			return nil, fmt.Errorf("edge %s→%s: %w", de.From, de.To, err)
		}
		if _, err := g.AddEdge(Edge{From: de.From, To: de.To, Kind: kind}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", de.From, de.To, err)
		}
	}

	return g, nil
}

// kindName serializes a node kind, omitting the default.
func kindName(k NodeKind) string {
	if k == KindEntity {
		return ""
	}
	return k.String()
}

// edgeKindName serializes an edge kind, omitting the default.
func edgeKindName(k EdgeKind) string {
	if k == EdgeDerived {
		return ""
	}
	return k.String()
}

func parseNodeKind(s string) (NodeKind, error) {
	switch s {
	case "", KindNameEntity:
		return KindEntity, nil
	case KindNameActivity:
		return KindActivity, nil
	case KindNameAgent:
		return KindAgent, nil
	default:
		return 0, fmt.Errorf("unknown node kind %q", s)
	}
}

func parseEdgeKind(s string) (EdgeKind, error) {
	switch s {
	case "", EdgeNameDerived:
		return EdgeDerived, nil
	case EdgeNameUsed:
		return EdgeUsed, nil
	case EdgeNameGenerated:
		return EdgeGenerated, nil
	case EdgeNameInformed:
		return EdgeInformed, nil
	case EdgeNameAttributed:
		return EdgeAttributed, nil
	case EdgeNameAssociated:
		return EdgeAssociated, nil
	default:
		return 0, fmt.Errorf("unknown edge kind %q", s)
	}
}
