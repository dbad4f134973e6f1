// Package prov provides the provenance graph model consumed by the layout
// engine, the HTTP facade, and the CLI.
//
// # Overview
//
// A provenance graph records how artifacts came to be: entities (files,
// datasets, results), the activities that produced or consumed them, and the
// agents responsible. Provis works on such graphs after they have been
// summarized: related nodes are grouped into summary nodes, and summary nodes
// nest into a tree whose leaves are the plain nodes of the underlying graph.
//
// # Core Types
//
//   - [Graph]: node/edge container with dense integer indices
//   - [Node]: plain node (entity, activity, agent) or summary node
//   - [Edge]: directed edge between plain nodes
//   - [MappedEdge]: an edge viewed at a coarser level of the summary tree
//
// # Indices
//
// Every node and every edge carries a dense index assigned at insertion.
// Summary nodes share the node index namespace with plain nodes. Indices are
// the join key between the graph and a layout: a layout node with index i
// positions the graph node with index i. Persisted layouts loaded against a
// regenerated graph can translate indices with a remap table (see
// pkg/layout).
//
// # Summary Tree
//
// Summary membership is a strict tree: a node has at most one parent, set
// once. Each summary node tracks whether it is expanded; the frontier of the
// graph is the set of nodes a viewer currently sees:
//
//	g.Frontier()          // collapsed summaries + plain nodes under expanded ones
//	g.FrontierEdges()     // edges with endpoints mapped to their representatives
//	g.InternalEdges(s)    // edges inside s, mapped to s's immediate children
//
// # Serialization
//
// Graphs use a node-link JSON document with an optional group list:
//
//	{
//	  "nodes":  [{"id": "raw.csv", "kind": "entity"}, {"id": "clean", "kind": "activity"}],
//	  "edges":  [{"from": "clean", "to": "raw.csv", "kind": "used"}],
//	  "groups": [{"id": "ingest", "children": ["raw.csv", "clean"]}]
//	}
//
// Common operations:
//
//	g, _ := prov.ReadGraphFile("run.json")    // File → Graph
//	prov.WriteGraphFile(g, "out.json")        // Graph → File
//	data, _ := prov.MarshalGraph(g)           // Graph → []byte
//
// # Concurrency
//
// Graph is safe for concurrent reads but not concurrent writes.
package prov
