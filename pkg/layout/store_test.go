package layout

import (
	"testing"

	"github.com/provgraph/provis/pkg/errors"
)

func mkStore(nodes ...Node) *Store {
	s := New()
	for _, n := range nodes {
		s.AddNode(n)
	}
	return s
}

type fixedSizer struct{ nodes, edges int }

func (f fixedSizer) NodeCount() int { return f.nodes }
func (f fixedSizer) EdgeCount() int { return f.edges }

func TestAddNode(t *testing.T) {
	s := New()
	s.AddNode(Node{Index: 0, X: 1, Y: 2, Width: 10, Height: 4})

	stats, ok := s.Stats()
	if !ok {
		t.Fatal("Stats() not ok after first insert")
	}
	if stats.XMin != 1 || stats.XMax != 1 {
		t.Errorf("stats X = [%v,%v], want [1,1]", stats.XMin, stats.XMax)
	}

	// Valid stats grow incrementally.
	s.AddNode(Node{Index: 1, X: 5, Y: -3, Width: 20, Height: 2})
	if !s.statsOK {
		t.Fatal("stats invalidated by a fresh-index insert")
	}
	stats, _ = s.Stats()
	if stats.XMax != 5 || stats.YMin != -3 || stats.MaxNodeWidth != 20 {
		t.Errorf("stats after grow = %+v", stats)
	}

	// Replacing an index invalidates, the next query recomputes.
	s.AddNode(Node{Index: 0, X: 100, Y: 2, Width: 10, Height: 4})
	if s.statsOK {
		t.Fatal("stats still valid after replacing node 0")
	}
	stats, ok = s.Stats()
	if !ok {
		t.Fatal("Stats() not ok after recompute")
	}
	if stats.XMin != 5 || stats.XMax != 100 {
		t.Errorf("recomputed X = [%v,%v], want [5,100]", stats.XMin, stats.XMax)
	}
}

func TestPutNode(t *testing.T) {
	tests := []struct {
		name     string
		store    *Store
		index    int
		wantCode errors.Code
	}{
		{name: "within bound", store: NewFor(fixedSizer{nodes: 3}), index: 2},
		{name: "at bound", store: NewFor(fixedSizer{nodes: 3}), index: 3, wantCode: errors.ErrCodeIndexRange},
		{name: "negative", store: NewFor(fixedSizer{nodes: 3}), index: -1, wantCode: errors.ErrCodeIndexRange},
		{name: "unbounded store accepts any index", store: New(), index: 9000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.store.PutNode(Node{Index: tt.index})
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("PutNode() error = %v", err)
				}
				return
			}
			if errors.GetCode(err) != tt.wantCode {
				t.Errorf("PutNode() code = %v, want %v", errors.GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestAddEdge(t *testing.T) {
	base := func() *Store {
		return mkStore(
			Node{Index: 0, X: 1, Y: 2},
			Node{Index: 1, X: 3, Y: 4},
		)
	}

	t.Run("missing source", func(t *testing.T) {
		_, err := base().AddEdge(0, 7, 1, nil, nil)
		if errors.GetCode(err) != errors.ErrCodeEdgeEndpoint {
			t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeEdgeEndpoint)
		}
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := base().AddEdge(0, 0, 7, nil, nil)
		if errors.GetCode(err) != errors.ErrCodeEdgeEndpoint {
			t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeEdgeEndpoint)
		}
	})

	t.Run("point count mismatch", func(t *testing.T) {
		_, err := base().AddEdge(0, 0, 1, []float64{1, 2}, []float64{1})
		if errors.GetCode(err) != errors.ErrCodeInvalidLayout {
			t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidLayout)
		}
	})

	t.Run("empty polyline defaults to endpoint centers", func(t *testing.T) {
		e, err := base().AddEdge(0, 0, 1, nil, nil)
		if err != nil {
			t.Fatalf("AddEdge() error = %v", err)
		}
		if len(e.XPoints) != 2 || e.XPoints[0] != 1 || e.XPoints[1] != 3 {
			t.Errorf("XPoints = %v, want [1 3]", e.XPoints)
		}
		if e.YPoints[0] != 2 || e.YPoints[1] != 4 {
			t.Errorf("YPoints = %v, want [2 4]", e.YPoints)
		}
	})

	t.Run("points are copied", func(t *testing.T) {
		xs := []float64{1, 2, 3}
		ys := []float64{4, 5, 6}
		e, err := base().AddEdge(0, 0, 1, xs, ys)
		if err != nil {
			t.Fatalf("AddEdge() error = %v", err)
		}
		xs[0] = 99
		if e.XPoints[0] != 1 {
			t.Errorf("edge aliases the caller's slice: XPoints[0] = %v", e.XPoints[0])
		}
	})
}

func TestPutEdge(t *testing.T) {
	s := NewFor(fixedSizer{nodes: 2, edges: 1})
	if _, err := s.PutNode(Node{Index: 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PutNode(Node{Index: 1, X: 10}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.PutEdge(0, 0, 1, nil, nil); err != nil {
		t.Fatalf("PutEdge() error = %v", err)
	}
	_, err := s.PutEdge(1, 0, 1, nil, nil)
	if errors.GetCode(err) != errors.ErrCodeIndexRange {
		t.Errorf("PutEdge() code = %v, want %v", errors.GetCode(err), errors.ErrCodeIndexRange)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := New()
	if _, ok := s.Stats(); ok {
		t.Error("Stats() ok for an empty store")
	}
	if s.Width() != 0 || s.Height() != 0 {
		t.Errorf("empty extent = %v x %v, want 0 x 0", s.Width(), s.Height())
	}
}

func TestWidthHeight(t *testing.T) {
	s := mkStore(
		Node{Index: 0, X: 0, Y: 0, Width: 10, Height: 4},
		Node{Index: 1, X: 30, Y: 40, Width: 20, Height: 6},
	)

	// (xMax-xMin) + 2*Margin + maxNodeWidth
	if got, want := s.Width(), 30.0+2*Margin+20.0; got != want {
		t.Errorf("Width() = %v, want %v", got, want)
	}
	if got, want := s.Height(), 40.0+2*Margin+6.0; got != want {
		t.Errorf("Height() = %v, want %v", got, want)
	}
}

func TestTranslate(t *testing.T) {
	s := mkStore(
		Node{Index: 0, X: 1, Y: 2},
		Node{Index: 1, X: 5, Y: 6},
	)
	if _, err := s.AddEdge(0, 0, 1, []float64{1, 5}, []float64{2, 6}); err != nil {
		t.Fatal(err)
	}
	s.Stats()

	s.Translate(10, -2)

	if n := s.Node(0); n.X != 11 || n.Y != 0 {
		t.Errorf("node 0 = (%v,%v), want (11,0)", n.X, n.Y)
	}
	if e := s.Edge(0); e.XPoints[1] != 15 || e.YPoints[1] != 4 {
		t.Errorf("edge points = %v/%v", e.XPoints, e.YPoints)
	}
	if !s.statsOK {
		t.Fatal("Translate invalidated stats")
	}
	if s.stats.XMin != 11 || s.stats.YMax != 4 {
		t.Errorf("stats = %+v", s.stats)
	}
}

func TestScaleAround(t *testing.T) {
	t.Run("pivot stays fixed", func(t *testing.T) {
		s := mkStore(
			Node{Index: 0, X: 10, Y: 10, Width: 8, Height: 8},
			Node{Index: 1, X: 20, Y: 30, Width: 4, Height: 4},
		)
		s.ScaleAround(0.5, 0.5, 10, 10)

		if n := s.Node(0); n.X != 10 || n.Y != 10 {
			t.Errorf("pivot node moved to (%v,%v)", n.X, n.Y)
		}
		if n := s.Node(1); n.X != 15 || n.Y != 20 {
			t.Errorf("node 1 = (%v,%v), want (15,20)", n.X, n.Y)
		}
		if n := s.Node(0); n.Width != 4 {
			t.Errorf("node 0 width = %v, want 4", n.Width)
		}
	})

	t.Run("negative scale flips positions, sizes stay positive", func(t *testing.T) {
		s := mkStore(
			Node{Index: 0, X: 2, Y: 0, Width: 10, Height: 10},
			Node{Index: 1, X: 6, Y: 0, Width: 10, Height: 10},
		)
		s.Stats()
		s.ScaleAround(-1, 1, 0, 0)

		if n := s.Node(0); n.X != -2 || n.Width != 10 {
			t.Errorf("node 0 = x:%v w:%v, want x:-2 w:10", n.X, n.Width)
		}
		if !s.statsOK {
			t.Fatal("ScaleAround invalidated stats")
		}
		if s.stats.XMin != -6 || s.stats.XMax != -2 {
			t.Errorf("stats X = [%v,%v], want [-6,-2]", s.stats.XMin, s.stats.XMax)
		}
	})
}

func TestCenterAt(t *testing.T) {
	s := mkStore(
		Node{Index: 0, X: 0, Y: 0},
		Node{Index: 1, X: 10, Y: 20},
	)
	s.CenterAt(0, 0)

	if n := s.Node(0); n.X != -5 || n.Y != -10 {
		t.Errorf("node 0 = (%v,%v), want (-5,-10)", n.X, n.Y)
	}
	stats, _ := s.Stats()
	if cx, cy := stats.Center(); cx != 0 || cy != 0 {
		t.Errorf("center = (%v,%v), want (0,0)", cx, cy)
	}

	// A second CenterAt at the same point must not move anything.
	s.CenterAt(0, 0)
	if n := s.Node(1); n.X != 5 || n.Y != 10 {
		t.Errorf("node 1 drifted to (%v,%v)", n.X, n.Y)
	}
}

func TestReset(t *testing.T) {
	s := NewFor(fixedSizer{nodes: 3, edges: 1})
	if _, err := s.PutNode(Node{Index: 0, Width: 10, Height: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PutNode(Node{Index: 1, X: 50, Width: 10, Height: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PutEdge(0, 0, 1, nil, nil); err != nil {
		t.Fatal(err)
	}
	s.Stats()

	s.Reset()

	if s.NodeCount() != 0 || s.EdgeCount() != 0 {
		t.Fatalf("after Reset: %d nodes, %d edges", s.NodeCount(), s.EdgeCount())
	}
	if _, ok := s.Stats(); ok {
		t.Error("empty store reports valid stats")
	}

	// Bounds survive a reset.
	if _, err := s.PutNode(Node{Index: 5}); err == nil {
		t.Error("PutNode accepted an out-of-range index after Reset")
	}
	if _, err := s.PutNode(Node{Index: 2}); err != nil {
		t.Errorf("PutNode(2) after Reset: %v", err)
	}
}

func TestMerge(t *testing.T) {
	t.Run("keeps existing entries without overwrite", func(t *testing.T) {
		s := mkStore(Node{Index: 0, X: 0, Y: 0})
		other := mkStore(Node{Index: 0, X: 5, Y: 5}, Node{Index: 1, X: 10, Y: 0})

		s.Merge(other, false)

		if n := s.Node(0); n.X != 0 {
			t.Errorf("node 0 clobbered: X = %v", n.X)
		}
		if n := s.Node(1); n == nil || n.X != 10 {
			t.Errorf("node 1 not imported: %+v", n)
		}
	})

	t.Run("incoming edges re-link to surviving nodes", func(t *testing.T) {
		s := mkStore(Node{Index: 0, X: 0, Y: 0})
		other := mkStore(Node{Index: 0, X: 5, Y: 5}, Node{Index: 1, X: 10, Y: 0})
		if _, err := other.AddEdge(0, 0, 1, nil, nil); err != nil {
			t.Fatal(err)
		}

		s.Merge(other, false)

		e := s.Edge(0)
		if e == nil {
			t.Fatal("edge 0 not imported")
		}
		if e.From != s.Node(0) {
			t.Error("edge source not re-linked to the surviving node")
		}
		if e.From.X != 0 {
			t.Errorf("edge source X = %v, want the kept node's 0", e.From.X)
		}
	})

	t.Run("overwrite replaces and re-links", func(t *testing.T) {
		s := mkStore(Node{Index: 0, X: 0, Y: 0}, Node{Index: 1, X: 10, Y: 0})
		if _, err := s.AddEdge(0, 0, 1, nil, nil); err != nil {
			t.Fatal(err)
		}
		other := mkStore(Node{Index: 0, X: 100, Y: 100})

		s.Merge(other, true)

		if n := s.Node(0); n.X != 100 {
			t.Errorf("node 0 = %v, want 100", n.X)
		}
		if e := s.Edge(0); e.From.X != 100 {
			t.Errorf("edge source X = %v after overwrite, want 100", e.From.X)
		}
	})

	t.Run("disjoint merge combines stats without recompute", func(t *testing.T) {
		s := mkStore(Node{Index: 0, X: 0, Y: 0}, Node{Index: 1, X: 10, Y: 10})
		other := mkStore(Node{Index: 2, X: 100, Y: 100}, Node{Index: 3, X: 110, Y: 115})
		s.Stats()
		other.Stats()

		s.Merge(other, false)

		if !s.statsOK {
			t.Fatal("disjoint merge invalidated stats")
		}
		if s.stats.XMin != 0 || s.stats.XMax != 110 || s.stats.YMax != 115 {
			t.Errorf("combined stats = %+v", s.stats)
		}
	})

	t.Run("overlapping merge invalidates stats", func(t *testing.T) {
		s := mkStore(Node{Index: 0, X: 0, Y: 0}, Node{Index: 1, X: 10, Y: 10})
		other := mkStore(Node{Index: 2, X: 5, Y: 5})
		s.Stats()
		other.Stats()

		s.Merge(other, false)

		if s.statsOK {
			t.Fatal("overlapping merge kept stale stats")
		}
		stats, ok := s.Stats()
		if !ok {
			t.Fatal("recompute failed")
		}
		if stats.XMin != 0 || stats.XMax != 10 {
			t.Errorf("recomputed stats = %+v", stats)
		}
	})

	t.Run("empty merge is a no-op", func(t *testing.T) {
		s := mkStore(Node{Index: 0, X: 1, Y: 1})
		s.Stats()

		s.Merge(New(), false)
		s.Merge(nil, false)

		if !s.statsOK {
			t.Error("empty merge invalidated stats")
		}
		if s.NodeCount() != 1 {
			t.Errorf("NodeCount() = %d, want 1", s.NodeCount())
		}
	})
}

func TestClone(t *testing.T) {
	s := mkStore(Node{Index: 0, X: 1, Y: 2}, Node{Index: 1, X: 3, Y: 4})
	if _, err := s.AddEdge(0, 0, 1, []float64{1, 3}, []float64{2, 4}); err != nil {
		t.Fatal(err)
	}
	s.Stats()

	c := s.Clone()

	c.Node(0).X = 999
	c.Edge(0).XPoints[0] = 999
	if s.Node(0).X != 1 {
		t.Error("clone shares node storage")
	}
	if s.Edge(0).XPoints[0] != 1 {
		t.Error("clone shares edge points")
	}
	if c.Edge(0).From != c.Node(0) {
		t.Error("cloned edge links to the original store's node")
	}
	if !c.statsOK {
		t.Error("clone dropped valid stats")
	}
}

func TestNodesAndEdgesSorted(t *testing.T) {
	s := mkStore(Node{Index: 2}, Node{Index: 0}, Node{Index: 1})
	for i, n := range s.Nodes() {
		if n.Index != i {
			t.Fatalf("Nodes()[%d].Index = %d", i, n.Index)
		}
	}
}
