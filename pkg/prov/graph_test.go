package prov

import (
	"errors"
	"testing"
)

// buildPipelineGraph constructs a small two-stage pipeline graph:
//
//	root
//	├── ingest:  raw.csv ← fetch(activity)
//	└── train:   model ← fit(activity) ← clean.csv
//
// with clean.csv generated by an activity inside ingest.
func buildPipelineGraph(t *testing.T) (*Graph, map[string]*Node) {
	t.Helper()
	g := New()
	nodes := map[string]*Node{}

	add := func(id string, kind NodeKind) {
		n, err := g.AddNode(Node{ID: id, Kind: kind})
		if err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
		nodes[id] = n
	}

	add("raw.csv", KindEntity)
	add("fetch", KindActivity)
	add("clean.csv", KindEntity)
	add("model", KindEntity)
	add("fit", KindActivity)

	summary := func(id string, children ...*Node) {
		n, err := g.AddSummary(Node{ID: id}, children...)
		if err != nil {
			t.Fatalf("AddSummary(%s): %v", id, err)
		}
		nodes[id] = n
	}

	summary("ingest", nodes["raw.csv"], nodes["fetch"], nodes["clean.csv"])
	summary("train", nodes["model"], nodes["fit"])
	summary("root", nodes["ingest"], nodes["train"])

	edges := []Edge{
		{From: "raw.csv", To: "fetch", Kind: EdgeGenerated},
		{From: "clean.csv", To: "fetch", Kind: EdgeGenerated},
		{From: "fit", To: "clean.csv", Kind: EdgeUsed},
		{From: "model", To: "fit", Kind: EdgeGenerated},
	}
	for _, e := range edges {
		if _, err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s→%s): %v", e.From, e.To, err)
		}
	}

	return g, nodes
}

func TestAddNode(t *testing.T) {
	g := New()

	n, err := g.AddNode(Node{ID: "a", Kind: KindEntity})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if n.Index() != 0 {
		t.Errorf("Index() = %d, want 0", n.Index())
	}
	if !n.Visible {
		t.Error("Visible = false, want true")
	}

	t.Run("empty id", func(t *testing.T) {
		if _, err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
			t.Errorf("error = %v, want ErrInvalidNodeID", err)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		if _, err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
			t.Errorf("error = %v, want ErrDuplicateNodeID", err)
		}
	})

	t.Run("summary kind rejected", func(t *testing.T) {
		if _, err := g.AddNode(Node{ID: "s", Kind: KindSummary}); !errors.Is(err, ErrNotSummary) {
			t.Errorf("error = %v, want ErrNotSummary", err)
		}
	})
}

func TestAddSummary(t *testing.T) {
	g := New()
	a, _ := g.AddNode(Node{ID: "a"})
	b, _ := g.AddNode(Node{ID: "b"})

	s, err := g.AddSummary(Node{ID: "s"}, a, b)
	if err != nil {
		t.Fatalf("AddSummary: %v", err)
	}
	if !s.IsSummary() {
		t.Error("IsSummary() = false, want true")
	}
	if s.Expanded {
		t.Error("new summary should start collapsed")
	}
	if s.Index() != 2 {
		t.Errorf("Index() = %d, want 2", s.Index())
	}
	if a.Parent() != s || b.Parent() != s {
		t.Error("children not linked to summary")
	}
	if len(s.Children()) != 2 {
		t.Errorf("len(Children()) = %d, want 2", len(s.Children()))
	}

	t.Run("reparenting rejected", func(t *testing.T) {
		if _, err := g.AddSummary(Node{ID: "s2"}, a); !errors.Is(err, ErrChildHasParent) {
			t.Errorf("error = %v, want ErrChildHasParent", err)
		}
	})
}

func TestAddEdge(t *testing.T) {
	g := New()
	a, _ := g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddSummary(Node{ID: "s"}, a)

	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{"valid", Edge{From: "a", To: "b"}, nil},
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
		{"summary source", Edge{From: "s", To: "b"}, ErrSummaryEndpoint},
		{"summary target", Edge{From: "b", To: "s"}, ErrSummaryEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.AddEdge(tt.edge)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("indices are dense", func(t *testing.T) {
		e, err := g.AddEdge(Edge{From: "b", To: "a"})
		if err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
		if e.Index() != 1 {
			t.Errorf("Index() = %d, want 1", e.Index())
		}
	})
}

func TestRoot(t *testing.T) {
	t.Run("single root", func(t *testing.T) {
		g, nodes := buildPipelineGraph(t)
		if got := g.Root(); got != nodes["root"] {
			t.Errorf("Root() = %v, want root summary", got)
		}
	})

	t.Run("no summaries", func(t *testing.T) {
		g := New()
		g.AddNode(Node{ID: "a"})
		if got := g.Root(); got != nil {
			t.Errorf("Root() = %v, want nil", got)
		}
	})

	t.Run("two parentless summaries", func(t *testing.T) {
		g := New()
		a, _ := g.AddNode(Node{ID: "a"})
		b, _ := g.AddNode(Node{ID: "b"})
		g.AddSummary(Node{ID: "s1"}, a)
		g.AddSummary(Node{ID: "s2"}, b)
		if got := g.Root(); got != nil {
			t.Errorf("Root() = %v, want nil", got)
		}
	})
}

func TestRepresentative(t *testing.T) {
	g, nodes := buildPipelineGraph(t)
	g.Expand(nodes["root"])

	tests := []struct {
		name string
		node string
		want string
	}{
		{"node inside collapsed summary", "raw.csv", "ingest"},
		{"collapsed summary is its own rep", "ingest", "ingest"},
		{"sibling summary", "model", "train"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Representative(nodes[tt.node])
			if got != nodes[tt.want] {
				t.Errorf("Representative(%s) = %v, want %s", tt.node, got, tt.want)
			}
		})
	}

	t.Run("expanded summary passes through", func(t *testing.T) {
		g.Expand(nodes["ingest"])
		if got := g.Representative(nodes["raw.csv"]); got != nodes["raw.csv"] {
			t.Errorf("Representative(raw.csv) = %v, want itself", got)
		}
		g.Collapse(nodes["ingest"])
	})

	t.Run("outermost collapsed ancestor wins", func(t *testing.T) {
		g.Collapse(nodes["root"])
		if got := g.Representative(nodes["raw.csv"]); got != nodes["root"] {
			t.Errorf("Representative(raw.csv) = %v, want root", got)
		}
		g.Expand(nodes["root"])
	})

	t.Run("hidden node has no representative", func(t *testing.T) {
		nodes["raw.csv"].Visible = false
		if got := g.Representative(nodes["raw.csv"]); got != nil {
			t.Errorf("Representative(hidden) = %v, want nil", got)
		}
		nodes["raw.csv"].Visible = true
	})
}

func TestFrontier(t *testing.T) {
	g, nodes := buildPipelineGraph(t)

	ids := func(ns []*Node) []string {
		out := make([]string, len(ns))
		for i, n := range ns {
			out[i] = n.ID
		}
		return out
	}

	t.Run("all collapsed", func(t *testing.T) {
		got := ids(g.Frontier())
		want := []string{"root"}
		if len(got) != 1 || got[0] != want[0] {
			t.Errorf("Frontier() = %v, want %v", got, want)
		}
	})

	t.Run("root expanded", func(t *testing.T) {
		g.Expand(nodes["root"])
		got := ids(g.Frontier())
		want := []string{"ingest", "train"}
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("Frontier() = %v, want %v", got, want)
		}
	})

	t.Run("one branch open", func(t *testing.T) {
		g.Expand(nodes["ingest"])
		got := ids(g.Frontier())
		want := []string{"raw.csv", "fetch", "clean.csv", "train"}
		if len(got) != len(want) {
			t.Fatalf("Frontier() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Frontier()[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})
}

func TestFrontierEdges(t *testing.T) {
	g, nodes := buildPipelineGraph(t)
	g.Expand(nodes["root"])

	// Both stages collapsed: the two inter-stage edges collapse onto
	// (train → ingest) via fit→clean.csv, and the intra-stage edges vanish.
	got := g.FrontierEdges()
	if len(got) != 1 {
		t.Fatalf("len(FrontierEdges()) = %d, want 1", len(got))
	}
	if got[0].From != nodes["train"] || got[0].To != nodes["ingest"] {
		t.Errorf("edge = %s→%s, want train→ingest", got[0].From.ID, got[0].To.ID)
	}
	if got[0].Edge.Index() != 2 {
		t.Errorf("representative edge index = %d, want 2 (lowest collapsing edge)", got[0].Edge.Index())
	}
}

func TestInternalEdges(t *testing.T) {
	g, nodes := buildPipelineGraph(t)

	t.Run("leaf summary", func(t *testing.T) {
		got := g.InternalEdges(nodes["ingest"])
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].From != nodes["raw.csv"] || got[0].To != nodes["fetch"] {
			t.Errorf("edge 0 = %s→%s, want raw.csv→fetch", got[0].From.ID, got[0].To.ID)
		}
		if got[1].From != nodes["clean.csv"] || got[1].To != nodes["fetch"] {
			t.Errorf("edge 1 = %s→%s, want clean.csv→fetch", got[1].From.ID, got[1].To.ID)
		}
	})

	t.Run("root maps to immediate children", func(t *testing.T) {
		got := g.InternalEdges(nodes["root"])
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].From != nodes["train"] || got[0].To != nodes["ingest"] {
			t.Errorf("edge = %s→%s, want train→ingest", got[0].From.ID, got[0].To.ID)
		}
	})

	t.Run("non-descendant endpoints excluded", func(t *testing.T) {
		got := g.InternalEdges(nodes["train"])
		// fit→clean.csv leaves the subtree; only model→fit remains.
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].From != nodes["model"] || got[0].To != nodes["fit"] {
			t.Errorf("edge = %s→%s, want model→fit", got[0].From.ID, got[0].To.ID)
		}
	})
}

func TestDepth(t *testing.T) {
	g, nodes := buildPipelineGraph(t)

	tests := []struct {
		name string
		node string
		want int
	}{
		{"root", "root", 1},
		{"leaf summary", "ingest", 0},
		{"plain node", "raw.csv", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Depth(nodes[tt.node]); got != tt.want {
				t.Errorf("Depth(%s) = %d, want %d", tt.node, got, tt.want)
			}
		})
	}

	t.Run("nil", func(t *testing.T) {
		if got := Depth(nil); got != 0 {
			t.Errorf("Depth(nil) = %d, want 0", got)
		}
	})
}
