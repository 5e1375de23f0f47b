package model

import "github.com/shopspring/decimal"

// BudgetStats compares the monthly spend against a configured limit.
type BudgetStats struct {
	Currency    Currency
	Limit       decimal.Decimal
	Monthly     decimal.Decimal
	Remaining   decimal.Decimal
	UsedPercent float64
	Over        bool
}
