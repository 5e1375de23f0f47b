// Package model defines the subscription records and derived spending types
// shared across the store, reconciler, aggregator and presentation layers.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date form used on the wire and in storage.
const DateLayout = "2006-01-02"

// Currency is a currency label. Amounts are never converted between currencies.
type Currency string

// Supported currencies.
const (
	USD Currency = "USD"
	CNY Currency = "CNY"
)

// Currencies lists every supported currency in display order.
var Currencies = []Currency{USD, CNY}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == USD || c == CNY
}

// ParseCurrency accepts a currency code in any case.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", &ValidationError{Field: "currency", Message: "Unsupported currency"}
	}
	return c, nil
}

// Period is a billing cadence.
type Period string

// Supported billing periods.
const (
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// Periods lists every supported billing period.
var Periods = []Period{Monthly, Yearly}

// Valid reports whether p is a supported period.
func (p Period) Valid() bool {
	return p == Monthly || p == Yearly
}

// ParsePeriod accepts "monthly" or "yearly" in any case.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", &ValidationError{Field: "period", Message: "Unsupported billing period"}
	}
	return p, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ValidationError{Field: "firstBillDate", Message: "Invalid first bill date"}
	}
	return t, nil
}

// Record is the externally relevant part of a subscription: everything the
// remote copy stores. It carries no local id.
type Record struct {
	Name          string
	Price         decimal.Decimal
	Currency      Currency
	Period        Period
	FirstBillDate time.Time
	Icon          string
}

// Equal compares the externally relevant fields. Prices compare by value
// and dates by calendar day.
func (r Record) Equal(o Record) bool {
	return r.Name == o.Name &&
		r.Price.Equal(o.Price) &&
		r.Currency == o.Currency &&
		r.Period == o.Period &&
		sameDay(r.FirstBillDate, o.FirstBillDate) &&
		r.Icon == o.Icon
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Subscription is a record held in a local store under a process-local id.
type Subscription struct {
	ID int
	Record
}

// Strip drops local ids, preserving order.
func Strip(subs []Subscription) []Record {
	out := make([]Record, len(subs))
	for i, s := range subs {
		out[i] = s.Record
	}
	return out
}

// wireSubscription is the JSON shape exchanged with the token server.
type wireSubscription struct {
	ID            int         `json:"id,omitempty"`
	Name          string      `json:"name"`
	Price         json.Number `json:"price"`
	Currency      Currency    `json:"currency"`
	Period        Period      `json:"period"`
	FirstBillDate string      `json:"firstBillDate"`
	Icon          string      `json:"icon"`
}

func toWire(id int, r Record) wireSubscription {
	w := wireSubscription{
		ID:       id,
		Name:     r.Name,
		Price:    json.Number(r.Price.String()),
		Currency: r.Currency,
		Period:   r.Period,
		Icon:     r.Icon,
	}
	if !r.FirstBillDate.IsZero() {
		w.FirstBillDate = r.FirstBillDate.Format(DateLayout)
	}
	return w
}

func (w wireSubscription) record() (Record, error) {
	r := Record{
		Name:     w.Name,
		Currency: w.Currency,
		Period:   w.Period,
		Icon:     w.Icon,
	}
	if w.Price != "" {
		p, err := decimal.NewFromString(w.Price.String())
		if err != nil {
			return r, fmt.Errorf("parsing price %q: %w", w.Price, err)
		}
		r.Price = p
	}
	if w.FirstBillDate != "" {
		d, err := time.Parse(DateLayout, w.FirstBillDate)
		if err != nil {
			return r, fmt.Errorf("parsing firstBillDate %q: %w", w.FirstBillDate, err)
		}
		r.FirstBillDate = d
	}
	return r, nil
}

// MarshalJSON encodes the record with a numeric price and no id.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(0, r))
}

// UnmarshalJSON decodes a record, ignoring any id present.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireSubscription
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rec, err := w.record()
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// MarshalJSON encodes the subscription including its id.
func (s Subscription) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(s.ID, s.Record))
}

// UnmarshalJSON decodes a subscription including its id.
func (s *Subscription) UnmarshalJSON(data []byte) error {
	var w wireSubscription
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rec, err := w.record()
	if err != nil {
		return err
	}
	*s = Subscription{ID: w.ID, Record: rec}
	return nil
}
