// Package reconcile keeps the local subscription store in step with the
// remote copy held behind a token.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/state"
)

// ErrNoToken is returned by Sync when no token has been loaded or issued.
var ErrNoToken = errors.New("reconcile: no token selected")

// ErrNotLoaded is returned by Sync when the current token has never been
// fetched or pushed, so there is no remote state to compare against.
var ErrNotLoaded = errors.New("reconcile: token has not been loaded")

// Boundary is the remote persistence service.
type Boundary interface {
	Fetch(ctx context.Context, token string) ([]model.Record, error)
	AllocateToken(ctx context.Context) (string, error)
	Push(ctx context.Context, token string, records []model.Record) error
}

// State is the reconciler's position in its load/push cycle.
type State int

// Reconciler states.
const (
	Idle State = iota
	Fetching
	Pushing
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Pushing:
		return "pushing"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "unknown"
}

// Outcome reports what a Sync did.
type Outcome struct {
	NoChanges bool
	Pushed    int
	Fetched   int
}

// Reconciler runs one boundary operation at a time. Callers that arrive
// while an operation is in flight wait for it to finish.
type Reconciler struct {
	store    *state.Store
	boundary Boundary
	session  *Session
	log      *slog.Logger
	sem      *semaphore.Weighted

	mu           sync.RWMutex
	state        State
	snapshot     []model.Record
	lastErr      error
	onTransition func(State)
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithSnapshot seeds the last-synced snapshot, for example from a workspace
// cache. The reconciler starts in Ready when a token is also present.
func WithSnapshot(records []model.Record) Option {
	return func(r *Reconciler) {
		r.snapshot = cloneRecords(records)
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) { r.log = l }
}

// OnTransition registers a callback invoked after every state change.
func OnTransition(fn func(State)) Option {
	return func(r *Reconciler) { r.onTransition = fn }
}

// New returns a reconciler over store and boundary for the given session.
func New(store *state.Store, boundary Boundary, session *Session, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:    store,
		boundary: boundary,
		session:  session,
		log:      slog.Default(),
		sem:      semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(r)
	}
	if session.Token() != "" && r.snapshot != nil {
		r.state = Ready
	}
	return r
}

// LoadForToken fetches the list stored under token and, on success, replaces
// the store, the snapshot and the session token with it. On failure none of
// them change.
func (r *Reconciler) LoadForToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &model.ValidationError{Field: "token", Message: "Token is required"}
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.sem.Release(1)

	r.transition(Fetching)
	fetched, err := r.load(ctx, token)
	if err != nil {
		return r.fail(err)
	}
	r.session.set(token)
	r.log.Info("loaded subscriptions", "count", len(fetched))
	r.transition(Ready)
	return nil
}

// IssueNewToken allocates a fresh token and starts over with an empty store
// and snapshot. On failure the current token and data are kept.
func (r *Reconciler) IssueNewToken(ctx context.Context) (string, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer r.sem.Release(1)

	r.transition(Fetching)
	token, err := r.boundary.AllocateToken(ctx)
	if err != nil {
		return "", r.fail(&model.NetworkError{Op: "allocate token", Err: err})
	}

	r.store.Clear()
	r.mu.Lock()
	r.snapshot = []model.Record{}
	r.mu.Unlock()
	r.session.set(token)
	r.log.Info("issued new token")
	r.transition(Ready)
	return token, nil
}

// Sync pushes the local list when it differs from the snapshot and then
// re-fetches so the store holds the server's canonical form. When nothing
// changed it returns Outcome{NoChanges: true} without calling the boundary.
// A token that was never loaded is refused with ErrNotLoaded rather than
// overwriting whatever the server holds for it.
func (r *Reconciler) Sync(ctx context.Context) (Outcome, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Outcome{}, err
	}
	defer r.sem.Release(1)

	token := r.session.Token()
	if token == "" {
		return Outcome{}, ErrNoToken
	}
	if !r.Loaded() {
		return Outcome{}, ErrNotLoaded
	}

	current := r.store.List()
	if !state.HasPendingChanges(current, r.Snapshot()) {
		return Outcome{NoChanges: true}, nil
	}

	records := model.Strip(current)
	r.transition(Pushing)
	if err := r.boundary.Push(ctx, token, records); err != nil {
		return Outcome{}, r.fail(&model.NetworkError{Op: "push", Err: err})
	}

	r.mu.Lock()
	r.snapshot = records
	r.mu.Unlock()

	r.transition(Fetching)
	fetched, err := r.load(ctx, token)
	if err != nil {
		return Outcome{Pushed: len(records)}, r.fail(err)
	}

	r.log.Info("synced subscriptions", "pushed", len(records), "fetched", len(fetched))
	r.transition(Ready)
	return Outcome{Pushed: len(records), Fetched: len(fetched)}, nil
}

// load fetches token's list and adopts it into the store and snapshot.
// Nothing is adopted unless both the fetch and the store replace succeed.
func (r *Reconciler) load(ctx context.Context, token string) ([]model.Record, error) {
	fetched, err := r.boundary.Fetch(ctx, token)
	if err != nil {
		return nil, &model.NetworkError{Op: "fetch", Err: err}
	}
	if fetched == nil {
		fetched = []model.Record{}
	}
	if err := r.store.ReplaceAll(fetched); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.snapshot = cloneRecords(fetched)
	r.mu.Unlock()
	return fetched, nil
}

// State returns the current state.
func (r *Reconciler) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Snapshot returns a copy of the last-synced list. It is nil until the
// first successful load, push or token issue.
func (r *Reconciler) Snapshot() []model.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRecords(r.snapshot)
}

// Loaded reports whether the reconciler holds a last-synced snapshot for
// its token.
func (r *Reconciler) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot != nil
}

// LastError returns the error that moved the reconciler into Error, if any.
func (r *Reconciler) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// Pending reports whether the store has changes the remote copy lacks.
func (r *Reconciler) Pending() bool {
	return state.HasPendingChanges(r.store.List(), r.Snapshot())
}

// Token returns the session's current token.
func (r *Reconciler) Token() string {
	return r.session.Token()
}

func (r *Reconciler) fail(err error) error {
	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()
	r.log.Warn("reconcile failed", "err", err)
	r.transition(Error)
	return err
}

func (r *Reconciler) transition(s State) {
	r.mu.Lock()
	r.state = s
	if s != Error {
		r.lastErr = nil
	}
	fn := r.onTransition
	r.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}

func cloneRecords(in []model.Record) []model.Record {
	if in == nil {
		return nil
	}
	out := make([]model.Record, len(in))
	copy(out, in)
	return out
}
