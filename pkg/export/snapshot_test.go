package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
)

func geometryStore(t *testing.T) *layout.Store {
	t.Helper()
	s := layout.New()
	s.AddNode(layout.Node{Index: 0, X: 0, Y: 0, Width: 54, Height: 36})
	s.AddNode(layout.Node{Index: 1, X: 100, Y: 0, Width: 54, Height: 36})
	if _, err := s.AddEdge(0, 0, 1, nil, nil); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return s
}

func TestSnapshot_Geometry(t *testing.T) {
	var buf bytes.Buffer
	err := Snapshot(&buf, geometryStore(t), SnapshotOptions{
		Label: func(index int) string {
			return []string{"raw.csv", "clean"}[index]
		},
	})
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Error("Snapshot() output missing <svg> tag")
	}
	if got := strings.Count(out, `rx="6"`); got != 2 {
		t.Errorf("Snapshot() drew %d node boxes, want 2", got)
	}
	if !strings.Contains(out, "polyline") {
		t.Error("Snapshot() output missing edge polyline")
	}
	if !strings.Contains(out, "raw.csv") || !strings.Contains(out, "clean") {
		t.Error("Snapshot() output missing node labels")
	}

	// Leftmost node box lands at the margin after the viewport shift.
	if !strings.Contains(out, `x="18"`) {
		t.Error("Snapshot() leftmost box not at margin")
	}
}

func TestSnapshot_Themes(t *testing.T) {
	tests := []struct {
		theme string
		fill  string
	}{
		{"", "#f9fafb"},
		{"light", "#f9fafb"},
		{"dark", "#111827"},
	}

	for _, tt := range tests {
		name := tt.theme
		if name == "" {
			name = "default"
		}
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Snapshot(&buf, geometryStore(t), SnapshotOptions{Theme: tt.theme}); err != nil {
				t.Fatalf("Snapshot() error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.fill) {
				t.Errorf("Snapshot() theme %q missing backdrop fill %s", tt.theme, tt.fill)
			}
		})
	}
}

func TestSnapshot_UnknownTheme(t *testing.T) {
	err := Snapshot(&bytes.Buffer{}, geometryStore(t), SnapshotOptions{Theme: "sepia"})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Snapshot() error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestSnapshot_EmptyStore(t *testing.T) {
	err := Snapshot(&bytes.Buffer{}, layout.New(), SnapshotOptions{})
	if !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("Snapshot() error = %v, want %s", err, errors.ErrCodeInvalidLayout)
	}
}

func TestSnapshot_SummaryDashed(t *testing.T) {
	var buf bytes.Buffer
	err := Snapshot(&buf, geometryStore(t), SnapshotOptions{
		Summary: func(index int) bool { return index == 1 },
	})
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if got := strings.Count(buf.String(), "stroke-dasharray"); got != 1 {
		t.Errorf("Snapshot() drew %d dashed boxes, want 1", got)
	}
}
