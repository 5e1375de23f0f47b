package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyDataPoint is one calendar-month bucket of the spending series.
type MonthlyDataPoint struct {
	Month       time.Time // first day of the month, UTC
	Spending    decimal.Decimal
	Accumulated decimal.Decimal
}

// Label returns the bucket month as YYYY-MM.
func (p MonthlyDataPoint) Label() string {
	return p.Month.Format("2006-01")
}

// SummaryStats holds the date-independent averages across all subscriptions.
type SummaryStats struct {
	Count          int
	AverageMonthly decimal.Decimal
	AverageWeekly  decimal.Decimal
	AverageYearly  decimal.Decimal

	// Currencies present, in first-seen order. Mixed is set when there is
	// more than one, in which case the averages above add unlike units.
	Currencies []Currency
	Mixed      bool
}

// CurrencyTotals is the summary restricted to one currency.
type CurrencyTotals struct {
	Currency Currency
	SummaryStats
}
