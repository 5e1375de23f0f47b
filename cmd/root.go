// Package cmd implements the subtrack CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/config"
	xlog "github.com/theirongolddev/subtrack/internal/log"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/reconcile"
	"github.com/theirongolddev/subtrack/internal/workspace"
)

var (
	flagWorkspace string
	flagServer    string
	flagQuiet     bool
	flagLogLevel  string
)

// cfg is resolved once per invocation in the root PersistentPreRunE.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "subtrack",
	Short:         "Track recurring subscriptions",
	Long:          "Keep a list of subscriptions, see what they cost per month, and sync the list to a token server.",
	RunE:          runList,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := config.LoadEnv(); err != nil {
			return err
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if flagServer != "" {
			cfg.General.ServerURL = flagServer
		}
		return nil
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "w", config.WorkspacePath(), "Local workspace database")
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Token server URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	// `list` flags also apply when subtrack runs without a subcommand.
	addListFlags(rootCmd)
}

// cliLogger logs to stderr at --log-level.
func cliLogger() *slog.Logger {
	level, err := xlog.ParseLevel(flagLogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return xlog.New(xlog.Config{Level: level})
}

// openWorkspace opens the local workspace against the configured server.
// The caller closes it.
func openWorkspace() (*workspace.Workspace, error) {
	return workspace.Open(cfg, flagWorkspace, cliLogger())
}

// openLoadedWorkspace opens the workspace and, for a token that has never
// been fetched, loads its remote list before the command touches anything.
func openLoadedWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	ws, err := openWorkspace()
	if err != nil {
		return nil, err
	}
	if err := ws.EnsureLoaded(ctx); err != nil {
		token := ws.Reconciler.Token()
		_ = ws.Close()
		if errors.Is(err, reconcile.ErrNotLoaded) {
			return nil, fmt.Errorf("token %s was never loaded but local edits exist: run `subtrack token use %s --force` to start from the server copy", token, token)
		}
		return nil, fmt.Errorf("loading token %s: %w", token, err)
	}
	if err := ws.Save(); err != nil {
		_ = ws.Close()
		return nil, err
	}
	return ws, nil
}

// commandContext is canceled on Ctrl-C.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// progress writes a status line to stderr unless --quiet is set.
func progress(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
	}
}

// findSubscription resolves arg as a local id, or else as a
// case-insensitive name that must match exactly one subscription.
func findSubscription(ws *workspace.Workspace, arg string) (model.Subscription, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		if s, ok := ws.Store.Get(id); ok {
			return s, nil
		}
		return model.Subscription{}, fmt.Errorf("no subscription with id %d", id)
	}

	var match []model.Subscription
	for _, s := range ws.Store.List() {
		if strings.EqualFold(s.Name, arg) {
			match = append(match, s)
		}
	}
	switch len(match) {
	case 0:
		return model.Subscription{}, fmt.Errorf("no subscription named %q", arg)
	case 1:
		return match[0], nil
	}
	return model.Subscription{}, fmt.Errorf("%d subscriptions are named %q, use the id", len(match), arg)
}
