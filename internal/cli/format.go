// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/theirongolddev/subtrack/internal/model"
)

// Money formats amounts for one display locale.
type Money struct {
	tag     language.Tag
	printer *message.Printer
}

// NewMoney returns a formatter for locale (a BCP 47 tag such as "en" or
// "zh-CN"). Unparseable locales fall back to English.
func NewMoney(locale string) Money {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if err != nil || tag == language.Und {
		tag = language.English
	}
	return Money{tag: tag, printer: message.NewPrinter(tag)}
}

// Format renders amount with the currency symbol, rounded to cents.
// This is the only place money gets rounded.
func (m Money) Format(amount decimal.Decimal, cur model.Currency) string {
	neg := amount.IsNegative()
	f, _ := amount.Abs().Round(2).Float64()
	digits := m.printer.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))

	s := m.symbol(cur) + digits
	if neg {
		return "-" + s
	}
	return s
}

// Plain renders amount without a symbol, for mixed-currency figures.
func (m Money) Plain(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return m.printer.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func (m Money) symbol(cur model.Currency) string {
	unit, err := currency.ParseISO(string(cur))
	if err != nil {
		return string(cur) + " "
	}
	return m.printer.Sprint(currency.NarrowSymbol(unit))
}

var defaultMoney = NewMoney("en")

// FormatMoney formats amount in English.
func FormatMoney(amount decimal.Decimal, cur model.Currency) string {
	return defaultMoney.Format(amount, cur)
}

// FormatPrice formats a record's price with its period suffix, e.g. "$9.99/mo".
func FormatPrice(m Money, r model.Record) string {
	suffix := "/mo"
	if r.Period == model.Yearly {
		suffix = "/yr"
	}
	return m.Format(r.Price, r.Currency) + suffix
}

// FormatDate formats a bill date as YYYY-MM-DD, or "-" when unset.
func FormatDate(d time.Time) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(model.DateLayout)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the change between two amounts with a sign.
func FormatDelta(m Money, current, previous decimal.Decimal, cur model.Currency) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return m.Format(delta, cur)
	}
	return "+" + m.Format(delta, cur)
}

// FormatCurrencies joins currency codes for display, e.g. "USD, CNY".
func FormatCurrencies(cs []model.Currency) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
