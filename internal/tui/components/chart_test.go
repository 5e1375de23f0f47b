package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNiceCeiling(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 1},
		{0.7, 1},
		{3, 5},
		{12, 20},
		{58.14, 100},
		{100, 100},
		{430, 500},
	}
	for _, tt := range tests {
		if got := niceCeiling(tt.in); got != tt.want {
			t.Fatalf("niceCeiling(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBarChartShape(t *testing.T) {
	out := BarChart([]float64{10, 20, 40}, []string{"2024-01", "2024-02", "2024-03"}, lipgloss.Color("#4385BE"), 40, 6)
	lines := strings.Split(out, "\n")
	// six plot rows, the axis and the label row
	if len(lines) != 8 {
		t.Fatalf("lines = %d, want 8:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[7], "2024-01") || !strings.Contains(lines[7], "2024-03") {
		t.Fatalf("label row = %q", lines[7])
	}
}

func TestBarChartFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2}, nil, lipgloss.Color("#fff"), 10, 6)
	if strings.Contains(out, "\n") {
		t.Fatalf("narrow chart should be one line, got %q", out)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('2') != 1 || TabIdxByKey('x') != -1 {
		t.Fatal("TabIdxByKey mismatch")
	}
}

func TestStatusBarFillsWidth(t *testing.T) {
	bar := RenderStatusBar(100, Status{Token: "ABCDEF", State: "ready", Pending: true})
	if w := lipgloss.Width(bar); w != 100 {
		t.Fatalf("status bar width = %d, want 100", w)
	}
	if !strings.Contains(bar, "ABCDEF") || !strings.Contains(bar, "●") {
		t.Fatalf("status bar = %q", bar)
	}
}
