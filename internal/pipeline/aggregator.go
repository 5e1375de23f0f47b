// Package pipeline normalizes subscription prices and aggregates them into
// summaries, breakdowns and monthly spending series.
package pipeline

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/model"
)

// Summarize computes the date-independent averages across all records.
// Mixed is set when more than one currency is present; the sums still add
// the raw amounts in that case.
func Summarize(records []model.Record) model.SummaryStats {
	var stats model.SummaryStats
	seen := make(map[model.Currency]struct{})

	for _, r := range records {
		stats.Count++
		stats.AverageMonthly = stats.AverageMonthly.Add(MonthlyEquivalent(r.Price, r.Period))
		if _, ok := seen[r.Currency]; !ok {
			seen[r.Currency] = struct{}{}
			stats.Currencies = append(stats.Currencies, r.Currency)
		}
	}

	stats.Mixed = len(stats.Currencies) > 1
	stats.AverageWeekly = stats.AverageMonthly.Div(weeksPerMonth)
	stats.AverageYearly = stats.AverageMonthly.Mul(monthsPerYear)
	return stats
}

// SplitByCurrency groups records by currency, keeping the input order within
// each group. Groups are returned in first-seen order.
func SplitByCurrency(records []model.Record) ([]model.Currency, map[model.Currency][]model.Record) {
	var order []model.Currency
	groups := make(map[model.Currency][]model.Record)
	for _, r := range records {
		if _, ok := groups[r.Currency]; !ok {
			order = append(order, r.Currency)
		}
		groups[r.Currency] = append(groups[r.Currency], r)
	}
	return order, groups
}

// SummarizeByCurrency summarizes each currency on its own.
func SummarizeByCurrency(records []model.Record) []model.CurrencyTotals {
	order, groups := SplitByCurrency(records)
	totals := make([]model.CurrencyTotals, 0, len(order))
	for _, c := range order {
		totals = append(totals, model.CurrencyTotals{
			Currency:     c,
			SummaryStats: Summarize(groups[c]),
		})
	}
	return totals
}

// Share is one subscription's part of the monthly total of its currency.
type Share struct {
	Record       model.Record
	Monthly      decimal.Decimal
	SharePercent float64
}

// AggregateShares ranks records by monthly equivalent, most expensive first.
// Percentages are relative to the total of the record's own currency.
func AggregateShares(records []model.Record) []Share {
	totals := make(map[model.Currency]decimal.Decimal)
	shares := make([]Share, 0, len(records))
	for _, r := range records {
		m := MonthlyEquivalent(r.Price, r.Period)
		totals[r.Currency] = totals[r.Currency].Add(m)
		shares = append(shares, Share{Record: r, Monthly: m})
	}

	for i := range shares {
		total := totals[shares[i].Record.Currency]
		if total.IsPositive() {
			pct, _ := shares[i].Monthly.Div(total).Mul(decimal.NewFromInt(100)).Float64()
			shares[i].SharePercent = pct
		}
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Monthly.GreaterThan(shares[j].Monthly)
	})
	return shares
}

// Budget compares the monthly equivalent of records in the given currency
// against limit. A non-positive limit yields a zero-percent result.
func Budget(records []model.Record, currency model.Currency, limit decimal.Decimal) model.BudgetStats {
	_, groups := SplitByCurrency(records)
	monthly := Summarize(groups[currency]).AverageMonthly

	b := model.BudgetStats{
		Currency:  currency,
		Limit:     limit,
		Monthly:   monthly,
		Remaining: limit.Sub(monthly),
		Over:      limit.IsPositive() && monthly.GreaterThan(limit),
	}
	if limit.IsPositive() {
		b.UsedPercent, _ = monthly.Div(limit).Mul(decimal.NewFromInt(100)).Float64()
	}
	return b
}

// FilterByName returns records whose name contains substr, ignoring case.
func FilterByName(records []model.Record, substr string) []model.Record {
	if substr == "" {
		return records
	}
	var result []model.Record
	for _, r := range records {
		if containsIgnoreCase(r.Name, substr) {
			result = append(result, r)
		}
	}
	return result
}

// FilterByCurrency returns records in the given currency.
func FilterByCurrency(records []model.Record, c model.Currency) []model.Record {
	if c == "" {
		return records
	}
	var result []model.Record
	for _, r := range records {
		if r.Currency == c {
			result = append(result, r)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
