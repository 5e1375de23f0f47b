package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/catalog"
	"github.com/theirongolddev/subtrack/internal/model"
)

type demoSub struct {
	name, price, first, icon string
}

// demoTokens are the lists a fresh server starts with when seeding is on.
var demoTokens = map[string][]demoSub{
	"ABCDEF": {
		{"YouTube Premium", "11.99", "2023-01-01", "youtube"},
		{"Spotify", "9.99", "2023-02-15", "spotify"},
	},
	"XYZ789": {
		{"Netflix", "15.49", "2023-03-01", "netflix"},
		{"Amazon Prime", "14.99", "2023-05-01", "amazon"},
	},
}

// SeedDemo stores the demo tokens that do not exist yet. Existing tokens are
// left alone so a persistent backend keeps user edits across restarts.
func SeedDemo(ctx context.Context, repo Repository) error {
	for token, subs := range demoTokens {
		_, err := repo.Get(ctx, token)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrTokenNotFound) {
			return fmt.Errorf("seeding %s: %w", token, err)
		}

		records := make([]model.Record, len(subs))
		for i, d := range subs {
			first, _ := time.Parse(model.DateLayout, d.first)
			records[i] = model.Record{
				Name:          d.name,
				Price:         decimal.RequireFromString(d.price),
				Currency:      model.USD,
				Period:        model.Monthly,
				FirstBillDate: first,
				Icon:          catalog.ResolveIconURL(d.icon, d.name),
			}
		}
		if _, err := repo.Replace(ctx, token, records); err != nil {
			return fmt.Errorf("seeding %s: %w", token, err)
		}
	}
	return nil
}
