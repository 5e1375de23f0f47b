package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/model"
)

var (
	monthsPerYear = decimal.NewFromInt(12)
	weeksPerMonth = decimal.RequireFromString("4.33")
)

// MonthlyEquivalent normalizes a price to its per-month cost. Yearly prices
// are divided by 12; anything else is taken as already monthly. The currency
// is not involved.
func MonthlyEquivalent(price decimal.Decimal, period model.Period) decimal.Decimal {
	if period == model.Yearly {
		return price.Div(monthsPerYear)
	}
	return price
}
