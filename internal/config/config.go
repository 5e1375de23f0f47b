// Package config loads and saves the subtrack TOML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvServer  = "SUBTRACK_SERVER"
	EnvToken   = "SUBTRACK_TOKEN"
	EnvAMQPURL = "SUBTRACK_AMQP_URL"
)

// Config holds all subtrack configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Display    DisplayConfig    `toml:"display"`
	Budget     BudgetConfig     `toml:"budget"`
	Server     ServerConfig     `toml:"server"`
}

// GeneralConfig holds client preferences.
type GeneralConfig struct {
	ServerURL string `toml:"server_url"`
	Token     string `toml:"token,omitempty"`
	ShareURL  string `toml:"share_url"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DisplayConfig controls number formatting.
type DisplayConfig struct {
	Locale string `toml:"locale"`
}

// BudgetConfig holds an optional monthly spending limit.
type BudgetConfig struct {
	Monthly  *float64 `toml:"monthly,omitempty"`
	Currency string   `toml:"currency,omitempty"`
}

// ServerConfig holds settings for `subtrack serve`.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	Backend      string `toml:"backend"`
	DBPath       string `toml:"db_path,omitempty"`
	AMQPURL      string `toml:"amqp_url,omitempty"`
	AMQPExchange string `toml:"amqp_exchange"`
	SeedDemo     bool   `toml:"seed_demo"`
	EventsBuffer int    `toml:"events_buffer"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
}

// Server backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			ServerURL: "http://127.0.0.1:8082",
			ShareURL:  "http://localhost:5173/",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Display: DisplayConfig{
			Locale: "en",
		},
		Budget: BudgetConfig{
			Currency: "USD",
		},
		Server: ServerConfig{
			Addr:         ":8082",
			Backend:      BackendMemory,
			AMQPExchange: "subtrack",
			SeedDemo:     true,
			EventsBuffer: 200,
			LogLevel:     "info",
			LogFormat:    "text",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "subtrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "subtrack")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding local state.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "subtrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "subtrack")
}

// WorkspacePath returns the path of the local workspace database.
func WorkspacePath() string {
	return filepath.Join(DataDir(), "workspace.db")
}

// ServerDBPath returns the configured server database path or its default.
func ServerDBPath(cfg Config) string {
	if cfg.Server.DBPath != "" {
		return cfg.Server.DBPath
	}
	return filepath.Join(DataDir(), "server.db")
}

// LoadEnv reads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// ServerURL returns the token server address from env var or config, in that order.
func ServerURL(cfg Config) string {
	if v := os.Getenv(EnvServer); v != "" {
		return v
	}
	return cfg.General.ServerURL
}

// Token returns the token from env var or config, in that order.
func Token(cfg Config) string {
	if v := os.Getenv(EnvToken); v != "" {
		return strings.TrimSpace(v)
	}
	return cfg.General.Token
}

// AMQPURL returns the broker URL from env var or config, in that order.
func AMQPURL(cfg Config) string {
	if v := os.Getenv(EnvAMQPURL); v != "" {
		return v
	}
	return cfg.Server.AMQPURL
}

// ShareLink returns the resume URL for token.
func ShareLink(cfg Config, token string) string {
	base := cfg.General.ShareURL
	if base == "" {
		base = DefaultConfig().General.ShareURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + "?k=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("k", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []string

	if u, err := url.Parse(c.General.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("general.server_url %q is not an absolute URL", c.General.ServerURL))
	}
	switch c.Server.Backend {
	case BackendMemory, BackendSQLite:
	default:
		errs = append(errs, fmt.Sprintf("server.backend %q must be %q or %q", c.Server.Backend, BackendMemory, BackendSQLite))
	}
	if c.Server.EventsBuffer < 0 {
		errs = append(errs, "server.events_buffer must not be negative")
	}
	if c.Budget.Monthly != nil && *c.Budget.Monthly <= 0 {
		errs = append(errs, "budget.monthly must be greater than 0")
	}
	if c.Budget.Currency != "" && c.Budget.Currency != "USD" && c.Budget.Currency != "CNY" {
		errs = append(errs, fmt.Sprintf("budget.currency %q must be USD or CNY", c.Budget.Currency))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
