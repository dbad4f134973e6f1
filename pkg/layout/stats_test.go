package layout

import "testing"

func TestStatsCenter(t *testing.T) {
	st := Stats{XMin: -10, XMax: 30, YMin: 0, YMax: 8}
	x, y := st.Center()
	if x != 10 || y != 4 {
		t.Errorf("Center() = (%v,%v), want (10,4)", x, y)
	}
}

func TestStatsDisjoint(t *testing.T) {
	tests := []struct {
		name string
		a, b Stats
		want bool
	}{
		{
			name: "separated on x",
			a:    Stats{XMin: 0, XMax: 10, YMin: 0, YMax: 10},
			b:    Stats{XMin: 20, XMax: 30, YMin: 0, YMax: 10},
			want: true,
		},
		{
			name: "separated on y",
			a:    Stats{XMin: 0, XMax: 10, YMin: 0, YMax: 10},
			b:    Stats{XMin: 0, XMax: 10, YMin: 50, YMax: 60},
			want: true,
		},
		{
			name: "overlapping",
			a:    Stats{XMin: 0, XMax: 10, YMin: 0, YMax: 10},
			b:    Stats{XMin: 5, XMax: 15, YMin: 5, YMax: 15},
			want: false,
		},
		{
			name: "touching edge counts as overlap",
			a:    Stats{XMin: 0, XMax: 10, YMin: 0, YMax: 10},
			b:    Stats{XMin: 10, XMax: 20, YMin: 0, YMax: 10},
			want: false,
		},
		{
			name: "containment",
			a:    Stats{XMin: 0, XMax: 100, YMin: 0, YMax: 100},
			b:    Stats{XMin: 40, XMax: 60, YMin: 40, YMax: 60},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.disjoint(tt.b); got != tt.want {
				t.Errorf("disjoint() = %v, want %v", got, tt.want)
			}
			if got := tt.b.disjoint(tt.a); got != tt.want {
				t.Errorf("disjoint() not symmetric: reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatsCombine(t *testing.T) {
	a := Stats{XMin: 0, XMax: 10, YMin: 0, YMax: 10, MaxNodeWidth: 5, MaxNodeHeight: 2}
	b := Stats{XMin: -5, XMax: 3, YMin: 20, YMax: 40, MaxNodeWidth: 1, MaxNodeHeight: 9}

	a.combine(b)

	want := Stats{XMin: -5, XMax: 10, YMin: 0, YMax: 40, MaxNodeWidth: 5, MaxNodeHeight: 9}
	if a != want {
		t.Errorf("combine() = %+v, want %+v", a, want)
	}
}
