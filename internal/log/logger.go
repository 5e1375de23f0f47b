// Package log configures structured logging for the server and reconciler.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Component names attached to loggers.
const (
	ComponentServer    = "server"
	ComponentHTTP      = "http"
	ComponentReconcile = "reconcile"
	ComponentStorage   = "storage"
	ComponentEvents    = "events"
)

// Config controls logger construction.
type Config struct {
	Level  slog.Level
	Format string    // "text" or "json"
	Output io.Writer // defaults to stderr
	// Extra handlers receive every record as well, e.g. a log file.
	Extra []slog.Handler
}

// New builds a logger from cfg.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	if len(cfg.Extra) > 0 {
		h = Tee(append([]slog.Handler{h}, cfg.Extra...)...)
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// WithComponent tags l with a component name.
func WithComponent(l *slog.Logger, component string) *slog.Logger {
	return l.With("component", component)
}

// SetDefault installs l as the process-wide default.
func SetDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

type ctxKey struct{}

// NewContext returns ctx carrying l.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
