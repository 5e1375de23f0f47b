package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/subtrack/internal/model"
)

func TestRenderTable(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Fatalf("RenderTable(empty) = %q", got)
	}

	out := RenderTable(Table{
		Title:   "Subscriptions",
		Headers: []string{"Name", "Monthly"},
		Rows:    [][]string{{"Netflix", "$15.49"}, {"Spotify", "$9.99"}},
	})
	for _, want := range []string{"Subscriptions", "Name", "Monthly", "Netflix", "$15.49", "Spotify", "╭", "╯"} {
		if !strings.Contains(out, want) {
			t.Fatalf("RenderTable missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Fatalf("RenderSparkline(nil) = %q", got)
	}
	if got := RenderSparkline([]float64{0, 4, 8}); got != "▁▄█" {
		t.Fatalf("RenderSparkline = %q, want ▁▄█", got)
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Fatalf("RenderSparkline(zeros) = %q", got)
	}
}

func TestRenderHorizontalBar(t *testing.T) {
	got := RenderHorizontalBar("2024-01", 5, 10, 10, "$5.00")
	if strings.Count(got, "█") != 5 || !strings.Contains(got, "2024-01") || !strings.Contains(got, "$5.00") {
		t.Fatalf("RenderHorizontalBar = %q", got)
	}
	if got := RenderHorizontalBar("x", 5, 0, 10, ""); strings.Contains(got, "█") {
		t.Fatalf("zero max drew a bar: %q", got)
	}
}

func TestRenderSeriesBars(t *testing.T) {
	m := NewMoney("en")
	points := []model.MonthlyDataPoint{
		{Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Spending: d("10"), Accumulated: d("10")},
		{Month: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Spending: d("20"), Accumulated: d("30")},
	}
	out := RenderSeriesBars(m, points, model.USD, 20)
	if strings.Count(out, "\n") != 2 || !strings.Contains(out, "$20.00") {
		t.Fatalf("RenderSeriesBars =\n%s", out)
	}
	if got := AccumulatedValues(points); got[0] != 10 || got[1] != 30 {
		t.Fatalf("AccumulatedValues = %v", got)
	}
}

func TestRenderBudget(t *testing.T) {
	m := NewMoney("en")
	under := RenderBudget(m, model.BudgetStats{
		Currency: model.USD, Limit: d("50"), Monthly: d("25"), Remaining: d("25"), UsedPercent: 50,
	}, 10)
	if strings.Count(under, "█") != 5 || !strings.Contains(under, "$25.00 left") {
		t.Fatalf("under budget = %q", under)
	}

	over := RenderBudget(m, model.BudgetStats{
		Currency: model.USD, Limit: d("20"), Monthly: d("25"), Remaining: d("-5"), UsedPercent: 125, Over: true,
	}, 10)
	if strings.Count(over, "█") != 10 || !strings.Contains(over, "$5.00 over") {
		t.Fatalf("over budget = %q", over)
	}
}
