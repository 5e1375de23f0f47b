package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	xlog "github.com/theirongolddev/subtrack/internal/log"
)

func TestOpenServerLogAppendsJSONCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "server.log")

	for i := 0; i < 2; i++ {
		f, err := openServerLog(path)
		if err != nil {
			t.Fatalf("openServerLog: %v", err)
		}
		var stderr strings.Builder
		l := xlog.New(xlog.Config{
			Output: &stderr,
			Extra:  []slog.Handler{slog.NewJSONHandler(f, nil)},
		})
		l.Info("listening", "addr", ":8082")
		_ = f.Close()

		if !strings.Contains(stderr.String(), "msg=listening") {
			t.Fatalf("stderr = %q", stderr.String())
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if n := strings.Count(string(data), `"msg":"listening"`); n != 2 {
		t.Fatalf("log lines = %d, want 2 appended:\n%s", n, data)
	}
}
