package pipeline

import (
	"testing"

	"github.com/theirongolddev/subtrack/internal/model"
)

func TestBuildSeriesEmpty(t *testing.T) {
	if got := BuildSeries(nil, mustDate(t, "2024-03-15")); len(got) != 0 {
		t.Fatalf("BuildSeries(nil) len = %d, want 0", len(got))
	}
}

func TestBuildSeriesSingleMonthly(t *testing.T) {
	records := []model.Record{rec(t, "A", "12", model.USD, model.Monthly, "2024-01-01")}

	got := BuildSeries(records, mustDate(t, "2024-03-15"))
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	wantLabels := []string{"2024-01", "2024-02", "2024-03"}
	wantAcc := []string{"12.00", "24.00", "36.00"}
	for i, p := range got {
		if p.Label() != wantLabels[i] {
			t.Fatalf("point %d label = %s, want %s", i, p.Label(), wantLabels[i])
		}
		if p.Spending.StringFixed(2) != "12.00" {
			t.Fatalf("point %d spending = %s, want 12.00", i, p.Spending.StringFixed(2))
		}
		if p.Accumulated.StringFixed(2) != wantAcc[i] {
			t.Fatalf("point %d accumulated = %s, want %s", i, p.Accumulated.StringFixed(2), wantAcc[i])
		}
	}
}

func TestBuildSeriesMixedPeriods(t *testing.T) {
	records := []model.Record{
		rec(t, "Yearly", "120", model.USD, model.Yearly, "2024-02-01"),
		rec(t, "Monthly", "10", model.USD, model.Monthly, "2024-01-01"),
	}

	got := BuildSeries(records, mustDate(t, "2024-02-20"))
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Spending.StringFixed(2) != "10.00" {
		t.Fatalf("2024-01 spending = %s, want 10.00", got[0].Spending.StringFixed(2))
	}
	if got[1].Label() != "2024-02" || got[1].Spending.StringFixed(2) != "20.00" {
		t.Fatalf("2024-02 = %s %s, want 2024-02 20.00", got[1].Label(), got[1].Spending.StringFixed(2))
	}
	if got[1].Accumulated.StringFixed(2) != "30.00" {
		t.Fatalf("2024-02 accumulated = %s, want 30.00", got[1].Accumulated.StringFixed(2))
	}
}

func TestBuildSeriesMidMonthStartCountsFromNextMonth(t *testing.T) {
	records := []model.Record{rec(t, "Spotify", "10", model.USD, model.Monthly, "2024-01-15")}

	got := BuildSeries(records, mustDate(t, "2024-03-10"))
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantSpend := []string{"0.00", "10.00", "10.00"}
	wantAcc := []string{"0.00", "10.00", "20.00"}
	for i, p := range got {
		if p.Spending.StringFixed(2) != wantSpend[i] || p.Accumulated.StringFixed(2) != wantAcc[i] {
			t.Fatalf("%s = %s/%s, want %s/%s", p.Label(),
				p.Spending.StringFixed(2), p.Accumulated.StringFixed(2), wantSpend[i], wantAcc[i])
		}
	}
	if got[0].Label() != "2024-01" {
		t.Fatalf("first bucket = %s, want 2024-01", got[0].Label())
	}
}

func TestBuildSeriesMidMonthStartInAsOfMonth(t *testing.T) {
	records := []model.Record{rec(t, "Spotify", "9.99", model.USD, model.Monthly, "2023-02-15")}

	got := BuildSeries(records, mustDate(t, "2023-02-20"))
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !got[0].Spending.IsZero() {
		t.Fatalf("spending = %s, want 0", got[0].Spending.StringFixed(2))
	}
}

func TestBuildSeriesAsOfBeforeStart(t *testing.T) {
	records := []model.Record{rec(t, "A", "5", model.USD, model.Monthly, "2024-06-01")}
	if got := BuildSeries(records, mustDate(t, "2024-01-01")); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestBuildSeriesCrossesYearBoundary(t *testing.T) {
	records := []model.Record{rec(t, "A", "1", model.USD, model.Monthly, "2023-11-30")}
	got := BuildSeries(records, mustDate(t, "2024-02-29"))

	want := []string{"2023-11", "2023-12", "2024-01", "2024-02"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Label() != want[i] {
			t.Fatalf("point %d = %s, want %s", i, got[i].Label(), want[i])
		}
	}
}

func TestBuildSeriesKeepsPrecisionUntilOutput(t *testing.T) {
	// 10/12 per month rounds to 0.83; summing rounded values for 12 months
	// would give 9.96 instead of 10.00.
	records := []model.Record{rec(t, "A", "10", model.USD, model.Yearly, "2024-01-01")}
	got := BuildSeries(records, mustDate(t, "2024-12-31"))
	if len(got) != 12 {
		t.Fatalf("len = %d, want 12", len(got))
	}
	if acc := got[11].Accumulated.StringFixed(2); acc != "10.00" {
		t.Fatalf("accumulated = %s, want 10.00", acc)
	}
}
