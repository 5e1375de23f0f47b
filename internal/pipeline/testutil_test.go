package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func rec(t *testing.T, name, price string, cur model.Currency, period model.Period, first string) model.Record {
	t.Helper()
	return model.Record{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		Currency:      cur,
		Period:        period,
		FirstBillDate: mustDate(t, first),
	}
}
