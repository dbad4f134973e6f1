package prov_test

import (
	"fmt"

	"github.com/provgraph/provis/pkg/prov"
)

func ExampleGraph_basic() {
	// Record a tiny provenance chain: fetch produced raw.csv
	g := prov.New()
	raw, _ := g.AddNode(prov.Node{ID: "raw.csv", Kind: prov.KindEntity})
	fetch, _ := g.AddNode(prov.Node{ID: "fetch", Kind: prov.KindActivity})
	_, _ = g.AddEdge(prov.Edge{From: "raw.csv", To: "fetch", Kind: prov.EdgeGenerated})
	_, _ = g.AddSummary(prov.Node{ID: "ingest"}, raw, fetch)

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Summaries:", g.SummaryCount())
	// Output:
	// Nodes: 3
	// Edges: 1
	// Summaries: 1
}

func ExampleGraph_Frontier() {
	// Two stages under one root; the viewer sees what is expanded.
	g := prov.New()
	raw, _ := g.AddNode(prov.Node{ID: "raw.csv"})
	model, _ := g.AddNode(prov.Node{ID: "model"})
	ingest, _ := g.AddSummary(prov.Node{ID: "ingest"}, raw)
	train, _ := g.AddSummary(prov.Node{ID: "train"}, model)
	root, _ := g.AddSummary(prov.Node{ID: "run"}, ingest, train)

	g.Expand(root)
	g.Expand(ingest)

	for _, n := range g.Frontier() {
		fmt.Println(n.ID)
	}
	// Output:
	// raw.csv
	// train
}

func ExampleGraph_InternalEdges() {
	g := prov.New()
	a, _ := g.AddNode(prov.Node{ID: "a"})
	b, _ := g.AddNode(prov.Node{ID: "b"})
	inner, _ := g.AddSummary(prov.Node{ID: "inner"}, b)
	_, _ = g.AddSummary(prov.Node{ID: "outer"}, a, inner)
	_, _ = g.AddEdge(prov.Edge{From: "a", To: "b"})

	// Viewed at the outer level, a→b becomes a→inner.
	for _, me := range g.InternalEdges(g.NodeByID("outer")) {
		fmt.Printf("%s → %s\n", me.From.ID, me.To.ID)
	}
	// Output:
	// a → inner
}
