package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrack/internal/tui/theme"
)

// Status is what the bottom bar shows.
type Status struct {
	Token   string
	State   string
	Pending bool
	Busy    string // spinner frame while an operation runs
	Message string
	IsError bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	bad := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	left := base.Render(" [?]help  [q]uit")
	if s.Message != "" {
		style := base
		if s.IsError {
			style = bad
		}
		left += base.Render("  ") + style.Render(s.Message)
	}

	token := s.Token
	if token == "" {
		token = "no token"
	}
	right := ""
	if s.Busy != "" {
		right += accent.Render(s.Busy) + base.Render(" ")
	}
	right += base.Render(s.State+" · ") + accent.Render(token)
	if s.Pending {
		right += warn.Render(" ●")
	}
	right += base.Render(" ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(strings.Repeat(" ", gap)) + right
}
