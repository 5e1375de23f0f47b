package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/catalog"
	"github.com/theirongolddev/subtrack/internal/model"
)

func newRecordCmd(t *testing.T, f *recordFlags, args map[string]string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	f.register(c)
	for k, v := range args {
		if err := c.Flags().Set(k, v); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	return c
}

func TestRecordFlagsApplyOnlyChanged(t *testing.T) {
	base := model.Record{
		Name:          "Netflix",
		Price:         decimal.RequireFromString("15.49"),
		Currency:      model.USD,
		Period:        model.Monthly,
		FirstBillDate: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		Icon:          catalog.ResolveIconURL("netflix", "Netflix"),
	}

	var f recordFlags
	c := newRecordCmd(t, &f, map[string]string{"price": "17.99", "period": "yearly"})
	r := base
	if err := f.apply(c, &r); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !r.Price.Equal(decimal.RequireFromString("17.99")) || r.Period != model.Yearly {
		t.Fatalf("record = %+v, want 17.99 yearly", r)
	}
	if r.Name != base.Name || r.Icon != base.Icon || !r.FirstBillDate.Equal(base.FirstBillDate) {
		t.Fatalf("unchanged fields were modified: %+v", r)
	}
}

func TestRecordFlagsApplyRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		args map[string]string
	}{
		{"price", map[string]string{"price": "cheap"}},
		{"currency", map[string]string{"currency": "EUR"}},
		{"period", map[string]string{"period": "weekly"}},
		{"date", map[string]string{"date": "01/02/2024"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f recordFlags
			c := newRecordCmd(t, &f, tt.args)
			var r model.Record
			if err := f.apply(c, &r); !errors.Is(err, model.ErrValidation) {
				t.Fatalf("apply err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRecordFlagsNewNameGetsIcon(t *testing.T) {
	var f recordFlags
	c := newRecordCmd(t, &f, map[string]string{"name": "Spotify", "icon": "spotify"})
	var r model.Record
	if err := f.apply(c, &r); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := catalog.KeyFromURL(r.Icon); got != "spotify" {
		t.Fatalf("icon key = %q, want spotify", got)
	}
	if r.Currency != model.USD || r.Period != model.Monthly {
		t.Fatalf("defaults = %s %s, want USD monthly", r.Currency, r.Period)
	}
}
