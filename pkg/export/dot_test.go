package export

import (
	"strings"
	"testing"

	"github.com/provgraph/provis/pkg/prov"
)

func pipelineGraph(t *testing.T) *prov.Graph {
	t.Helper()
	g := prov.New()
	if _, err := g.AddNode(prov.Node{ID: "raw.csv", Kind: prov.KindEntity}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if _, err := g.AddNode(prov.Node{ID: "clean", Kind: prov.KindActivity}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if _, err := g.AddNode(prov.Node{ID: "alice", Kind: prov.KindAgent}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if _, err := g.AddEdge(prov.Edge{From: "raw.csv", To: "clean", Kind: prov.EdgeUsed}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if _, err := g.AddEdge(prov.Edge{From: "clean", To: "alice", Kind: prov.EdgeAssociated}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(pipelineGraph(t), DOTOptions{})

	if !strings.Contains(dot, "digraph provenance") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, `"raw.csv"`) {
		t.Error("ToDOT() output missing entity node")
	}
	if !strings.Contains(dot, `"raw.csv" -> "clean"`) {
		t.Error("ToDOT() output missing used edge")
	}
	if !strings.Contains(dot, `"clean" -> "alice"`) {
		t.Error("ToDOT() output missing associated edge")
	}
	if !strings.Contains(dot, "shape=ellipse") {
		t.Error("ToDOT() entity missing ellipse shape")
	}
	if !strings.Contains(dot, "shape=house") {
		t.Error("ToDOT() agent missing house shape")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(pipelineGraph(t), DOTOptions{Detailed: true})

	if !strings.Contains(dot, `\nentity`) {
		t.Error("ToDOT() detailed output missing entity kind in label")
	}
	if !strings.Contains(dot, `\nactivity`) {
		t.Error("ToDOT() detailed output missing activity kind in label")
	}
	if !strings.Contains(dot, `\nagent`) {
		t.Error("ToDOT() detailed output missing agent kind in label")
	}
}

func TestToDOT_CollapsedSummary(t *testing.T) {
	g := pipelineGraph(t)
	raw := g.NodeByID("raw.csv")
	clean := g.NodeByID("clean")
	stage, err := g.AddSummary(prov.Node{ID: "ingest"}, raw, clean)
	if err != nil {
		t.Fatalf("AddSummary: %v", err)
	}

	dot := ToDOT(g, DOTOptions{})

	if strings.Contains(dot, `"raw.csv"`) {
		t.Error("ToDOT() collapsed summary still shows folded child")
	}
	if !strings.Contains(dot, `"ingest"`) {
		t.Error("ToDOT() output missing summary node")
	}
	if !strings.Contains(dot, "dashed") {
		t.Error("ToDOT() summary missing dashed style")
	}
	if !strings.Contains(dot, "lightgrey") {
		t.Error("ToDOT() summary missing lightgrey fill")
	}
	if !strings.Contains(dot, `"ingest" -> "alice"`) {
		t.Error("ToDOT() edge not mapped to summary representative")
	}

	g.Expand(stage)
	dot = ToDOT(g, DOTOptions{})
	if !strings.Contains(dot, `"raw.csv" -> "clean"`) {
		t.Error("ToDOT() expanded summary missing original edge")
	}
}

func TestToDOT_DetailedSummary(t *testing.T) {
	g := pipelineGraph(t)
	if _, err := g.AddSummary(prov.Node{ID: "ingest"}, g.NodeByID("raw.csv"), g.NodeByID("clean")); err != nil {
		t.Fatalf("AddSummary: %v", err)
	}

	dot := ToDOT(g, DOTOptions{Detailed: true})
	if !strings.Contains(dot, `2 children`) {
		t.Error("ToDOT() detailed summary missing child count")
	}
}

func TestFmtAttrs_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		kind  prov.NodeKind
		shape string
		fill  string
	}{
		{"entity", prov.KindEntity, "shape=ellipse", fillEntity},
		{"activity", prov.KindActivity, "shape=box", fillActivity},
		{"agent", prov.KindAgent, "shape=house", fillAgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := fmtAttrs(&prov.Node{Kind: tt.kind}, "label")
			joined := strings.Join(attrs, " ")
			if !strings.Contains(joined, tt.shape) {
				t.Errorf("fmtAttrs() = %v, missing %s", attrs, tt.shape)
			}
			if !strings.Contains(joined, tt.fill) {
				t.Errorf("fmtAttrs() = %v, missing fill %s", attrs, tt.fill)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	dot := ToDOT(pipelineGraph(t), DOTOptions{})
	svg, err := RenderSVG(dot)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}

	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	_, err := RenderSVG(`not valid DOT {{{`)
	if err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
