package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/subtrack/internal/model"
)

func openRepo(t *testing.T) (*TokenRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.db")
	r, err := OpenTokenRepository(path)
	if err != nil {
		t.Fatalf("OpenTokenRepository: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, path
}

func TestTokenRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	r, _ := openRepo(t)

	if _, err := r.Get(ctx, "nope"); !errors.Is(err, model.ErrTokenNotFound) {
		t.Fatalf("Get unknown err = %v, want ErrTokenNotFound", err)
	}

	if err := r.Create(ctx, "T1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	subs, err := r.Get(ctx, "T1")
	if err != nil || len(subs) != 0 {
		t.Fatalf("Get new token = %v, %v, want empty", subs, err)
	}

	stored, err := r.Replace(ctx, "T1", []model.Record{
		record("B", "2", model.Monthly),
		record("A", "120", model.Yearly),
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if stored[0].ID != 1 || stored[1].ID != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", stored[0].ID, stored[1].ID)
	}

	got, err := r.Get(ctx, "T1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 2 || got[0].Name != "B" || got[1].Price.String() != "120" {
		t.Fatalf("Get = %+v", got)
	}

	if _, err := r.Replace(ctx, "T1", nil); err != nil {
		t.Fatalf("Replace empty: %v", err)
	}
	if got, _ := r.Get(ctx, "T1"); len(got) != 0 {
		t.Fatalf("after empty replace len = %d", len(got))
	}
}

func TestReplaceCreatesUnknownToken(t *testing.T) {
	ctx := context.Background()
	r, _ := openRepo(t)
	if _, err := r.Replace(ctx, "FRESH", []model.Record{record("A", "1", model.Monthly)}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n, _ := r.Count(ctx); n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	r, path := openRepo(t)
	if r.SchemaVersion() != 1 {
		t.Fatalf("SchemaVersion = %d, want 1", r.SchemaVersion())
	}
	_ = r.Create(ctx, "KEEP")
	_ = r.Close()

	again, err := OpenTokenRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	if _, err := again.Get(ctx, "KEEP"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if again.SchemaVersion() != 1 {
		t.Fatalf("SchemaVersion after reopen = %d, want 1", again.SchemaVersion())
	}
}
