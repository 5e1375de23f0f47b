package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/model"
)

func TestSummarize(t *testing.T) {
	records := []model.Record{
		rec(t, "YouTube Premium", "11.99", model.USD, model.Monthly, "2023-01-01"),
		rec(t, "Microsoft 365", "69.99", model.USD, model.Yearly, "2023-10-01"),
	}

	s := Summarize(records)
	if s.Count != 2 {
		t.Fatalf("Count = %d, want 2", s.Count)
	}
	if got := s.AverageMonthly.StringFixed(2); got != "17.82" {
		t.Fatalf("AverageMonthly = %s, want 17.82", got)
	}
	if got := s.AverageYearly.StringFixed(2); got != "213.87" {
		t.Fatalf("AverageYearly = %s, want 213.87", got)
	}
	if got := s.AverageWeekly.StringFixed(2); got != "4.12" {
		t.Fatalf("AverageWeekly = %s, want 4.12", got)
	}
	if s.Mixed {
		t.Fatal("Mixed = true, want false")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if !s.AverageMonthly.IsZero() || !s.AverageWeekly.IsZero() || !s.AverageYearly.IsZero() {
		t.Fatalf("empty summary = %+v, want zeros", s)
	}
}

func TestSummarizeFlagsMixedCurrencies(t *testing.T) {
	records := []model.Record{
		rec(t, "A", "10", model.USD, model.Monthly, "2024-01-01"),
		rec(t, "B", "30", model.CNY, model.Monthly, "2024-01-01"),
	}
	s := Summarize(records)
	if !s.Mixed {
		t.Fatal("Mixed = false, want true")
	}
	if len(s.Currencies) != 2 || s.Currencies[0] != model.USD || s.Currencies[1] != model.CNY {
		t.Fatalf("Currencies = %v, want [USD CNY]", s.Currencies)
	}

	by := SummarizeByCurrency(records)
	if len(by) != 2 {
		t.Fatalf("SummarizeByCurrency len = %d, want 2", len(by))
	}
	if by[1].Currency != model.CNY || by[1].AverageMonthly.StringFixed(2) != "30.00" {
		t.Fatalf("CNY totals = %s %s, want CNY 30.00", by[1].Currency, by[1].AverageMonthly.StringFixed(2))
	}
	if by[0].Mixed || by[1].Mixed {
		t.Fatal("per-currency totals should never be mixed")
	}
}

func TestAggregateShares(t *testing.T) {
	records := []model.Record{
		rec(t, "Cheap", "5", model.USD, model.Monthly, "2024-01-01"),
		rec(t, "Pricey", "15", model.USD, model.Monthly, "2024-01-01"),
		rec(t, "Other", "8", model.CNY, model.Monthly, "2024-01-01"),
	}
	shares := AggregateShares(records)
	if shares[0].Record.Name != "Pricey" {
		t.Fatalf("first = %s, want Pricey", shares[0].Record.Name)
	}
	if shares[0].SharePercent != 75 {
		t.Fatalf("Pricey share = %v, want 75", shares[0].SharePercent)
	}
	for _, s := range shares {
		if s.Record.Name == "Other" && s.SharePercent != 100 {
			t.Fatalf("Other share = %v, want 100", s.SharePercent)
		}
	}
}

func TestBudget(t *testing.T) {
	records := []model.Record{
		rec(t, "A", "30", model.USD, model.Monthly, "2024-01-01"),
		rec(t, "B", "120", model.USD, model.Yearly, "2024-01-01"),
		rec(t, "C", "999", model.CNY, model.Monthly, "2024-01-01"),
	}
	b := Budget(records, model.USD, decimal.NewFromInt(50))
	if b.Monthly.StringFixed(2) != "40.00" {
		t.Fatalf("Monthly = %s, want 40.00", b.Monthly.StringFixed(2))
	}
	if b.UsedPercent != 80 {
		t.Fatalf("UsedPercent = %v, want 80", b.UsedPercent)
	}
	if b.Over {
		t.Fatal("Over = true, want false")
	}

	if b := Budget(records, model.USD, decimal.NewFromInt(20)); !b.Over {
		t.Fatal("Over = false, want true")
	}
	if b := Budget(records, model.USD, decimal.Zero); b.UsedPercent != 0 || b.Over {
		t.Fatalf("zero limit = %+v, want no percent and not over", b)
	}
}

func TestFilters(t *testing.T) {
	records := []model.Record{
		rec(t, "Netflix", "15.49", model.USD, model.Monthly, "2023-03-01"),
		rec(t, "Spotify", "9.99", model.USD, model.Monthly, "2023-02-15"),
		rec(t, "iQIYI", "25", model.CNY, model.Monthly, "2023-02-15"),
	}
	if got := FilterByName(records, "NET"); len(got) != 1 || got[0].Name != "Netflix" {
		t.Fatalf("FilterByName = %v, want [Netflix]", got)
	}
	if got := FilterByCurrency(records, model.CNY); len(got) != 1 {
		t.Fatalf("FilterByCurrency len = %d, want 1", len(got))
	}
	if got := FilterByName(records, ""); len(got) != 3 {
		t.Fatalf("FilterByName empty len = %d, want 3", len(got))
	}
}
