package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/model"
)

// BuildSeries produces one bucket per calendar month from the month of the
// earliest first bill date through the month of asOf, inclusive.
//
// A bucket is dated the 1st of its month, and a record contributes its
// monthly equivalent to every bucket on or after its first bill date. A
// record starting on the 15th is therefore first counted in the following
// month. Accumulated is the running sum of Spending across the returned
// buckets. Nothing is rounded here.
//
// When asOf falls before the earliest start month the result is empty.
func BuildSeries(records []model.Record, asOf time.Time) []model.MonthlyDataPoint {
	if len(records) == 0 {
		return nil
	}

	// Contribution that begins at each bucket.
	starts := make(map[time.Time]decimal.Decimal)
	first := monthStart(records[0].FirstBillDate)
	for _, r := range records {
		m := monthStart(r.FirstBillDate)
		if m.Before(first) {
			first = m
		}
		b := firstBucket(r.FirstBillDate)
		starts[b] = starts[b].Add(MonthlyEquivalent(r.Price, r.Period))
	}

	end := monthStart(asOf)
	if end.Before(first) {
		return nil
	}

	var (
		points      []model.MonthlyDataPoint
		spending    decimal.Decimal
		accumulated decimal.Decimal
	)
	for m := first; !m.After(end); m = m.AddDate(0, 1, 0) {
		if add, ok := starts[m]; ok {
			spending = spending.Add(add)
		}
		accumulated = accumulated.Add(spending)
		points = append(points, model.MonthlyDataPoint{
			Month:       m,
			Spending:    spending,
			Accumulated: accumulated,
		})
	}
	return points
}

// firstBucket returns the first bucket dated on or after the bill date d.
func firstBucket(d time.Time) time.Time {
	m := monthStart(d)
	if d.Day() > 1 {
		m = m.AddDate(0, 1, 0)
	}
	return m
}

// monthStart returns the first day of t's calendar month in UTC.
func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
