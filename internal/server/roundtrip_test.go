package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/reconcile"
	"github.com/theirongolddev/subtrack/internal/remote"
	"github.com/theirongolddev/subtrack/internal/state"
	"github.com/theirongolddev/subtrack/internal/store"
)

func TestReconcilerAgainstServer(t *testing.T) {
	ctx := context.Background()
	_, srv := newTestServer(t)

	client := remote.NewClient(srv.URL)
	st := state.New()
	r := reconcile.New(st, client, reconcile.NewSession(""))

	if err := r.LoadForToken(ctx, "XYZ789"); err != nil {
		t.Fatalf("LoadForToken: %v", err)
	}
	if st.Len() != 2 {
		t.Fatalf("Len = %d, want 2", st.Len())
	}

	_, err := st.Add(model.Record{
		Name:          "Disney+",
		Price:         decimal.RequireFromString("7.99"),
		Currency:      model.USD,
		Period:        model.Monthly,
		FirstBillDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	out, err := r.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if out.Pushed != 3 || out.Fetched != 3 {
		t.Fatalf("Outcome = %+v", out)
	}

	// A second client on the same token sees the change.
	other := state.New()
	if err := reconcile.New(other, client, reconcile.NewSession("")).LoadForToken(ctx, "XYZ789"); err != nil {
		t.Fatalf("second LoadForToken: %v", err)
	}
	if other.Len() != 3 {
		t.Fatalf("second client Len = %d, want 3", other.Len())
	}

	if err := r.LoadForToken(ctx, "MISSING"); !errors.Is(err, model.ErrTokenNotFound) {
		t.Fatalf("missing token err = %v", err)
	}
	if r.Token() != "XYZ789" {
		t.Fatalf("Token = %q after failed switch", r.Token())
	}

	tok, err := r.IssueNewToken(ctx)
	if err != nil {
		t.Fatalf("IssueNewToken: %v", err)
	}
	if err := r.LoadForToken(ctx, tok); err != nil || st.Len() != 0 {
		t.Fatalf("load new token = %v, len %d", err, st.Len())
	}
}

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	repo, err := store.OpenTokenRepository(t.TempDir() + "/server.db")
	if err != nil {
		t.Fatalf("OpenTokenRepository: %v", err)
	}
	defer repo.Close()
	if err := SeedDemo(ctx, repo); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}

	var _ Repository = repo
	got, err := repo.Get(ctx, "ABCDEF")
	if err != nil || len(got) != 2 || got[1].Name != "Spotify" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
}
