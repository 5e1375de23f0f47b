package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func validRecord(t *testing.T) Record {
	return Record{
		Name:          "Spotify",
		Price:         decimal.RequireFromString("9.99"),
		Currency:      USD,
		Period:        Monthly,
		FirstBillDate: mustDate(t, "2023-02-15"),
		Icon:          "https://simpleicons.org/icons/spotify.svg",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Record)
		field   string
		message string
	}{
		{"ok", func(*Record) {}, "", ""},
		{"blank name", func(r *Record) { r.Name = "   " }, "name", "Name cannot be empty"},
		{"zero price", func(r *Record) { r.Price = decimal.Zero }, "price", "Price must be greater than 0"},
		{"negative price", func(r *Record) { r.Price = decimal.NewFromInt(-1) }, "price", "Price must be greater than 0"},
		{"bad currency", func(r *Record) { r.Currency = "EUR" }, "currency", "Unsupported currency"},
		{"bad period", func(r *Record) { r.Period = "weekly" }, "period", "Unsupported billing period"},
		{"missing date", func(r *Record) { r.FirstBillDate = time.Time{} }, "firstBillDate", "Invalid first bill date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord(t)
			tt.mutate(&r)
			err := Validate(r)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate = %v, want nil", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate = %v, want *ValidationError", err)
			}
			if ve.Field != tt.field || ve.Message != tt.message {
				t.Fatalf("Validate = %s/%q, want %s/%q", ve.Field, ve.Message, tt.field, tt.message)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatal("errors.Is(err, ErrValidation) = false")
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	if c, err := ParseCurrency(" cny "); err != nil || c != CNY {
		t.Fatalf("ParseCurrency = %q, %v, want CNY", c, err)
	}
	if _, err := ParseCurrency("EUR"); !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseCurrency(EUR) err = %v, want validation error", err)
	}
	if p, err := ParsePeriod("Yearly"); err != nil || p != Yearly {
		t.Fatalf("ParsePeriod = %q, %v, want yearly", p, err)
	}
	if _, err := ParseDate("2024-13-01"); !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseDate err = %v, want validation error", err)
	}
}

func TestRecordEqual(t *testing.T) {
	a := validRecord(t)
	b := validRecord(t)
	b.Price = decimal.RequireFromString("9.990")
	b.FirstBillDate = b.FirstBillDate.Add(13 * time.Hour)
	if !a.Equal(b) {
		t.Fatal("records differing only in price scale and time of day should be equal")
	}
	b.Icon = ""
	if a.Equal(b) {
		t.Fatal("records with different icons should differ")
	}
}

func TestStripKeepsOrder(t *testing.T) {
	r1, r2 := validRecord(t), validRecord(t)
	r2.Name = "Netflix"
	got := Strip([]Subscription{{ID: 9, Record: r1}, {ID: 3, Record: r2}})
	if len(got) != 2 || got[0].Name != "Spotify" || got[1].Name != "Netflix" {
		t.Fatalf("Strip = %v, want [Spotify Netflix]", got)
	}
}

func TestWireFormat(t *testing.T) {
	data, err := json.Marshal(Subscription{ID: 2, Record: validRecord(t)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"id":2`, `"price":9.99`, `"firstBillDate":"2023-02-15"`, `"period":"monthly"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("json %s missing %s", s, want)
		}
	}

	data, err = json.Marshal(validRecord(t))
	if err != nil {
		t.Fatalf("Marshal record: %v", err)
	}
	if strings.Contains(string(data), `"id"`) {
		t.Fatalf("record json %s should not carry an id", data)
	}

	var back Subscription
	in := `{"id":1,"name":"YouTube Premium","price":11.99,"currency":"USD","period":"monthly","firstBillDate":"2023-01-01","icon":"https://simpleicons.org/icons/youtube.svg"}`
	if err := json.Unmarshal([]byte(in), &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.ID != 1 || back.Price.StringFixed(2) != "11.99" || back.FirstBillDate.Month() != time.January {
		t.Fatalf("Unmarshal = %+v", back)
	}
}

func TestNetworkErrorMatches(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&NetworkError{Op: "fetch", Err: cause})
	if !errors.Is(err, ErrNetwork) {
		t.Fatal("errors.Is(err, ErrNetwork) = false")
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is(err, cause) = false")
	}
	if err.Error() != "fetch: connection refused" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
