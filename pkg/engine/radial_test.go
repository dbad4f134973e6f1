package engine

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
)

func radius(n *layout.Node) float64 { return math.Hypot(n.X, n.Y) }

func TestRadialCompute(t *testing.T) {
	g := twoGroupGraph()
	alg := newStrategy(t, Options{Strategy: "radial"})

	store, err := alg.Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}

	// Every node is visible: the root at the hub, the groups on ring 1,
	// the leaves on ring 2.
	if store.NodeCount() != 11 {
		t.Fatalf("store has %d nodes, want 11", store.NodeCount())
	}
	if hub := store.Node(10); hub.X != 0 || hub.Y != 0 {
		t.Errorf("root at (%v,%v), want the origin", hub.X, hub.Y)
	}
	for _, group := range []int{8, 9} {
		if r := radius(store.Node(group)); math.Abs(r-144) > 1e-9 {
			t.Errorf("summary %d on radius %v, want 144", group, r)
		}
	}
	for leaf := range 8 {
		if r := radius(store.Node(leaf)); math.Abs(r-288) > 1e-9 {
			t.Errorf("leaf %d on radius %v, want 288", leaf, r)
		}
	}
	if n := store.Node(8); n.Width != layout.DefaultPlaceholderWidth {
		t.Errorf("summary width = %v", n.Width)
	}
	if n := store.Node(0); n.Width != layout.DefaultNodeWidth {
		t.Errorf("leaf width = %v", n.Width)
	}

	// Raw edges become straight segments between node centers.
	if store.EdgeCount() != 4 {
		t.Fatalf("store has %d edges, want 4", store.EdgeCount())
	}
	e := store.Edge(3)
	if e.XPoints[0] != store.Node(2).X || e.XPoints[1] != store.Node(5).X {
		t.Errorf("edge 3 polyline = %v", e.XPoints)
	}
}

func TestRadialDeterminism(t *testing.T) {
	g := twoGroupGraph()
	alg := newStrategy(t, Options{Strategy: "radial"})

	first, err := alg.Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	second, err := alg.Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Nodes(), second.Nodes()) {
		t.Error("two identical computations disagree")
	}
}

func TestRadialDepthBoundAndUpdate(t *testing.T) {
	g := twoGroupGraph()
	alg := newStrategy(t, Options{Strategy: "radial"})

	store, err := alg.Initialize(context.Background(), g, 1)
	if err != nil {
		t.Fatal(err)
	}

	// Depth 1 shows the hub and the two groups, no leaves, no raw edges.
	if store.NodeCount() != 3 || store.EdgeCount() != 0 {
		t.Fatalf("bounded store = %d nodes / %d edges", store.NodeCount(), store.EdgeCount())
	}
	// The groups split the circle evenly: one leaf slot each.
	if n := store.Node(8); math.Abs(n.Y-144) > 1e-9 {
		t.Errorf("group A at (%v,%v), want the top of ring 1", n.X, n.Y)
	}
	if n := store.Node(9); math.Abs(n.Y+144) > 1e-9 {
		t.Errorf("group B at (%v,%v), want the bottom of ring 1", n.X, n.Y)
	}

	// Expanding group A reveals its leaves and their internal edges,
	// while group B stays collapsed.
	if err := alg.Update(context.Background(), store, 8); err != nil {
		t.Fatal(err)
	}
	if store.NodeCount() != 6 {
		t.Fatalf("store has %d nodes after expansion, want 6", store.NodeCount())
	}
	if store.Node(3) != nil {
		t.Error("leaf of the collapsed group appeared")
	}
	if store.EdgeCount() != 2 {
		t.Errorf("store has %d edges, want the 2 inside group A", store.EdgeCount())
	}
	if r := radius(store.Node(0)); math.Abs(r-288) > 1e-9 {
		t.Errorf("revealed leaf on radius %v, want 288", r)
	}
}

func TestRadialUpdateValidation(t *testing.T) {
	g := twoGroupGraph()
	alg := newStrategy(t, Options{Strategy: "radial"})
	store, err := alg.Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name    string
		summary int
		code    errors.Code
	}{
		{"out of range", 99, errors.ErrCodeIndexRange},
		{"negative", -1, errors.ErrCodeIndexRange},
		{"plain node", 0, errors.ErrCodeInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := alg.Update(context.Background(), store, tc.summary); !errors.Is(err, tc.code) {
				t.Errorf("Update(%d) = %v, want %s", tc.summary, err, tc.code)
			}
		})
	}

	t.Run("not initialized", func(t *testing.T) {
		fresh := newStrategy(t, Options{Strategy: "radial"})
		if err := fresh.Update(context.Background(), store, 8); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Update on unbound strategy = %v", err)
		}
	})
}

func TestRadialUnrooted(t *testing.T) {
	g := &testGraph{
		labels:   []string{"a", "b", "c", "d"},
		summary:  []bool{false, false, false, false},
		parent:   []int{-1, -1, -1, -1},
		edges:    [][2]int{{0, 3}},
		root:     -1,
		frontier: []int{0, 1, 2, 3},
	}
	alg := newStrategy(t, Options{Strategy: "radial"})

	store, err := alg.Compute(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	if store.NodeCount() != 4 || store.EdgeCount() != 1 {
		t.Fatalf("store = %d nodes / %d edges", store.NodeCount(), store.EdgeCount())
	}

	// Four equal sectors walk the quadrants counterclockwise.
	signs := [][2]float64{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
	for i, want := range signs {
		n := store.Node(i)
		if r := radius(n); math.Abs(r-144) > 1e-9 {
			t.Errorf("node %d on radius %v, want 144", i, r)
		}
		if math.Copysign(1, n.X) != want[0] || math.Copysign(1, n.Y) != want[1] {
			t.Errorf("node %d at (%v,%v), want quadrant signs (%v,%v)", i, n.X, n.Y, want[0], want[1])
		}
	}
}
