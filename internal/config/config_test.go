package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Addr != ":8082" || cfg.Appearance.Theme != "flexoki-dark" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.General.Token = "ABCDEF"
	limit := 50.0
	cfg.Budget.Monthly = &limit
	cfg.Server.Backend = BackendSQLite

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.General.Token != "ABCDEF" || got.Server.Backend != BackendSQLite {
		t.Fatalf("loaded = %+v", got)
	}
	if got.Budget.Monthly == nil || *got.Budget.Monthly != 50 {
		t.Fatalf("budget = %v, want 50", got.Budget.Monthly)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general]\ntoken = \"XYZ789\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.General.Token != "XYZ789" || cfg.General.ServerURL != "http://127.0.0.1:8082" {
		t.Fatalf("cfg.General = %+v", cfg.General)
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.Token = "FROMFILE"

	t.Setenv(EnvToken, " FROMENV ")
	t.Setenv(EnvServer, "http://example.test")
	if got := Token(cfg); got != "FROMENV" {
		t.Fatalf("Token = %q, want FROMENV", got)
	}
	if got := ServerURL(cfg); got != "http://example.test" {
		t.Fatalf("ServerURL = %q", got)
	}

	t.Setenv(EnvToken, "")
	if got := Token(cfg); got != "FROMFILE" {
		t.Fatalf("Token = %q, want FROMFILE", got)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.ServerURL = "not a url"
	cfg.Server.Backend = "postgres"
	zero := 0.0
	cfg.Budget.Monthly = &zero

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate = nil, want error")
	}
	for _, want := range []string{"server_url", "server.backend", "budget.monthly"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %s", err, want)
		}
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default Validate = %v", err)
	}
}

func TestShareLink(t *testing.T) {
	cfg := DefaultConfig()
	if got := ShareLink(cfg, "ABC"); got != "http://localhost:5173/?k=ABC" {
		t.Fatalf("ShareLink = %q", got)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if ConfigPath() != "/tmp/cfg/subtrack/config.toml" {
		t.Fatalf("ConfigPath = %s", ConfigPath())
	}
	if WorkspacePath() != "/tmp/data/subtrack/workspace.db" {
		t.Fatalf("WorkspacePath = %s", WorkspacePath())
	}
}
