// Package workspace restores and persists the local subscription list, its
// token and its last-synced snapshot between runs.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/theirongolddev/subtrack/internal/config"
	xlog "github.com/theirongolddev/subtrack/internal/log"
	"github.com/theirongolddev/subtrack/internal/reconcile"
	"github.com/theirongolddev/subtrack/internal/remote"
	"github.com/theirongolddev/subtrack/internal/state"
	"github.com/theirongolddev/subtrack/internal/store"
)

// ErrInvalidServerURL is returned when the configured server URL cannot be
// used by the remote client.
var ErrInvalidServerURL = errors.New("workspace: invalid server URL")

// Workspace ties the local store to a reconciler and its on-disk cache.
type Workspace struct {
	Store      *state.Store
	Reconciler *reconcile.Reconciler
	Client     *remote.Client

	cache *store.Cache

	mu       sync.Mutex
	syncedAt time.Time
}

// Open restores the workspace saved at path. When nothing has been saved
// yet, the token comes from the config (or SUBTRACK_TOKEN) and nothing is
// fetched until EnsureLoaded or LoadForToken runs.
func Open(cfg config.Config, path string, log *slog.Logger) (*Workspace, error) {
	client := remote.NewClient(config.ServerURL(cfg))
	if client == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidServerURL, config.ServerURL(cfg))
	}

	cache, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	saved, err := cache.Load()
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("loading workspace: %w", err)
	}

	token := saved.Token
	if token == "" {
		token = config.Token(cfg)
	}

	w := &Workspace{
		Store:    state.Restore(saved.Subscriptions, saved.NextID),
		Client:   client,
		cache:    cache,
		syncedAt: saved.SyncedAt,
	}

	opts := []reconcile.Option{
		reconcile.WithLogger(xlog.WithComponent(log, xlog.ComponentReconcile)),
		reconcile.OnTransition(func(s reconcile.State) {
			if s == reconcile.Ready {
				w.mu.Lock()
				w.syncedAt = time.Now().UTC()
				w.mu.Unlock()
			}
		}),
	}
	if saved.Snapshot != nil {
		opts = append(opts, reconcile.WithSnapshot(saved.Snapshot))
	}
	w.Reconciler = reconcile.New(w.Store, client, reconcile.NewSession(token), opts...)
	return w, nil
}

// EnsureLoaded fetches the list behind the current token when it has never
// been loaded, so local edits start from the remote copy. A local list that
// already holds unloaded edits is left alone and reconcile.ErrNotLoaded is
// returned. Without a token there is nothing to load.
func (w *Workspace) EnsureLoaded(ctx context.Context) error {
	token := w.Reconciler.Token()
	if token == "" || w.Reconciler.Loaded() {
		return nil
	}
	if w.Store.Len() > 0 {
		return reconcile.ErrNotLoaded
	}
	return w.Reconciler.LoadForToken(ctx, token)
}

// SyncedAt returns when the reconciler last reached Ready, or the saved
// time from a previous run.
func (w *Workspace) SyncedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syncedAt
}

// Save writes the current token, list, snapshot and id counter.
func (w *Workspace) Save() error {
	return w.cache.Save(store.Workspace{
		Token:         w.Reconciler.Token(),
		Subscriptions: w.Store.List(),
		Snapshot:      w.Reconciler.Snapshot(),
		NextID:        w.Store.NextID(),
		SyncedAt:      w.SyncedAt(),
	})
}

// Close releases the cache database.
func (w *Workspace) Close() error {
	return w.cache.Close()
}
