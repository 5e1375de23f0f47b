package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/reconcile"
)

const opTimeout = 30 * time.Second

type opKind int

const (
	opLoad opKind = iota
	opSync
	opNewToken
)

// opDoneMsg is sent when a reconciler call running in the background returns.
type opDoneMsg struct {
	kind    opKind
	token   string
	outcome reconcile.Outcome
	err     error
}

func loadCmd(r *reconcile.Reconciler, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		err := r.LoadForToken(ctx, token)
		return opDoneMsg{kind: opLoad, token: token, err: err}
	}
}

func syncCmd(r *reconcile.Reconciler) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		out, err := r.Sync(ctx)
		return opDoneMsg{kind: opSync, outcome: out, err: err}
	}
}

func newTokenCmd(r *reconcile.Reconciler) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		token, err := r.IssueNewToken(ctx)
		return opDoneMsg{kind: opNewToken, token: token, err: err}
	}
}

// describe turns a finished operation into a status line.
func (m opDoneMsg) describe() (string, bool) {
	if m.err != nil {
		switch {
		case errors.Is(m.err, model.ErrTokenNotFound):
			return "Token not found", true
		case errors.Is(m.err, reconcile.ErrNoToken):
			return "No token yet: press n for a new one or t to enter one", true
		case errors.Is(m.err, reconcile.ErrNotLoaded):
			return "Token never loaded: press r to fetch it (replaces local edits)", true
		case errors.Is(m.err, model.ErrNetwork):
			return "Server unreachable: " + m.err.Error(), true
		}
		return m.err.Error(), true
	}

	switch m.kind {
	case opLoad:
		return "Loaded " + m.token, false
	case opNewToken:
		return "New token " + m.token, false
	}
	if m.outcome.NoChanges {
		return "Already in sync", false
	}
	return fmt.Sprintf("Synced %d subscriptions", m.outcome.Fetched), false
}
