package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("ParseLevel(loud) err = nil, want error")
	}
}

func TestNewWritesToExtraHandlers(t *testing.T) {
	var a, b bytes.Buffer
	l := New(Config{
		Output: &a,
		Format: "json",
		Extra:  []slog.Handler{slog.NewTextHandler(&b, nil)},
	})
	WithComponent(l, ComponentServer).Info("hello", "n", 1)

	if !strings.Contains(a.String(), `"component":"server"`) {
		t.Fatalf("json output = %q", a.String())
	}
	if !strings.Contains(b.String(), "component=server") {
		t.Fatalf("text output = %q", b.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTeeKeepsWritingPastFailures(t *testing.T) {
	var debug, warn bytes.Buffer
	h := Tee(
		slog.NewTextHandler(failingWriter{}, nil),
		slog.NewJSONHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	l := slog.New(h)

	l.Debug("fetching", "token", "AB****")
	if !strings.Contains(debug.String(), `"msg":"fetching"`) {
		t.Fatalf("debug output = %q", debug.String())
	}
	if warn.Len() != 0 {
		t.Fatalf("warn handler got a debug record: %q", warn.String())
	}

	r := slog.NewRecord(time.Now(), slog.LevelWarn, "push failed", 0)
	if err := h.Handle(context.Background(), r); err == nil {
		t.Fatal("Handle err = nil, want the failing writer's error")
	}
	if !strings.Contains(warn.String(), "push failed") {
		t.Fatalf("warn output = %q", warn.String())
	}
}

func TestMiddlewareLogsAndSetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf})

	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == slog.Default() {
			t.Error("request logger missing from context")
		}
		http.Error(w, "Token not found", http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sub?token=X", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header missing")
	}
	out := buf.String()
	if !strings.Contains(out, "status_code=404") || !strings.Contains(out, "path=/sub") {
		t.Fatalf("log output = %q", out)
	}
}
