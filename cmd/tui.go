package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/config"
	xlog "github.com/theirongolddev/subtrack/internal/log"
	"github.com/theirongolddev/subtrack/internal/tui"
	"github.com/theirongolddev/subtrack/internal/tui/theme"
	"github.com/theirongolddev/subtrack/internal/workspace"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Logs would tear the alt screen; keep them out of the terminal.
	ws, err := workspace.Open(cfg, flagWorkspace, xlog.Discard())
	if err != nil {
		return err
	}
	defer ws.Close()

	app := tui.NewApp(tui.Options{
		Workspace: ws,
		Config:    cfg,
		NeedSetup: !config.Exists(),
		Logger:    xlog.Discard(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return ws.Save()
}
