package prov

import (
	"slices"
	"testing"
)

func TestIndexAccessors(t *testing.T) {
	g, _ := buildPipelineGraph(t)

	if got := g.RootIndex(); got != 7 {
		t.Errorf("RootIndex() = %d, want 7", got)
	}
	if got := New().RootIndex(); got != -1 {
		t.Errorf("empty RootIndex() = %d, want -1", got)
	}

	if got := g.Label(0); got != "raw.csv" {
		t.Errorf("Label(0) = %q, want raw.csv", got)
	}
	if got := g.Label(99); got != "" {
		t.Errorf("Label(99) = %q, want empty", got)
	}

	if !g.IsSummary(5) || g.IsSummary(0) || g.IsSummary(99) {
		t.Error("IsSummary misclassifies")
	}

	tests := []struct {
		index  int
		parent int
	}{
		{index: 0, parent: 5},
		{index: 5, parent: 7},
		{index: 7, parent: -1},
		{index: 99, parent: -1},
	}
	for _, tt := range tests {
		if got := g.ParentIndex(tt.index); got != tt.parent {
			t.Errorf("ParentIndex(%d) = %d, want %d", tt.index, got, tt.parent)
		}
	}

	if got := g.ChildIndices(5); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("ChildIndices(5) = %v, want [0 1 2]", got)
	}
	if got := g.ChildIndices(0); got != nil {
		t.Errorf("ChildIndices(0) = %v, want nil", got)
	}
}

func TestSizeHint(t *testing.T) {
	g := New()
	sized, err := g.AddNode(Node{ID: "sized", Width: 80, Height: 40})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddNode(Node{ID: "bare"}); err != nil {
		t.Fatal(err)
	}

	if w, h := g.SizeHint(sized.Index()); w != 80 || h != 40 {
		t.Errorf("SizeHint(sized) = (%v,%v), want (80,40)", w, h)
	}
	if w, h := g.SizeHint(1); w != 0 || h != 0 {
		t.Errorf("SizeHint(bare) = (%v,%v), want zeros", w, h)
	}
	if w, h := g.SizeHint(99); w != 0 || h != 0 {
		t.Errorf("SizeHint(99) = (%v,%v), want zeros", w, h)
	}
}

func TestFrontierIndices(t *testing.T) {
	g, nodes := buildPipelineGraph(t)

	if got := g.FrontierIndices(); !slices.Equal(got, []int{7}) {
		t.Errorf("collapsed FrontierIndices() = %v, want [7]", got)
	}

	g.Expand(nodes["root"])
	if got := g.FrontierIndices(); !slices.Equal(got, []int{5, 6}) {
		t.Errorf("FrontierIndices() = %v, want [5 6]", got)
	}
}

func TestFrontierEdgeCuts(t *testing.T) {
	g, nodes := buildPipelineGraph(t)
	g.Expand(nodes["root"])

	if got := g.FrontierEdgeCuts(); !slices.Equal(got, [][3]int{{2, 6, 5}}) {
		t.Errorf("FrontierEdgeCuts() = %v, want [[2 6 5]]", got)
	}

	g.Expand(nodes["ingest"])
	want := [][3]int{{0, 0, 1}, {1, 2, 1}, {2, 6, 2}}
	if got := g.FrontierEdgeCuts(); !slices.Equal(got, want) {
		t.Errorf("FrontierEdgeCuts() = %v, want %v", got, want)
	}
}

func TestEdgeCuts(t *testing.T) {
	g, _ := buildPipelineGraph(t)

	if got := g.EdgeCuts(5); !slices.Equal(got, [][3]int{{0, 0, 1}, {1, 2, 1}}) {
		t.Errorf("EdgeCuts(ingest) = %v", got)
	}
	if got := g.EdgeCuts(7); !slices.Equal(got, [][3]int{{2, 6, 5}}) {
		t.Errorf("EdgeCuts(root) = %v", got)
	}
	if got := g.EdgeCuts(0); got != nil {
		t.Errorf("EdgeCuts(plain) = %v, want nil", got)
	}
}

func TestEdgeEndpoints(t *testing.T) {
	g, _ := buildPipelineGraph(t)

	from, to, ok := g.EdgeEndpoints(2)
	if !ok || from != 4 || to != 2 {
		t.Errorf("EdgeEndpoints(2) = (%d,%d,%v), want (4,2,true)", from, to, ok)
	}
	if _, _, ok := g.EdgeEndpoints(99); ok {
		t.Error("EdgeEndpoints(99) ok, want false")
	}
}
