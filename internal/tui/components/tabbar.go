package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrack/internal/tui/theme"
)

// Tab is one entry of the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Subscriptions", Key: '1'},
	{Name: "Analysis", Key: '2'},
}

// TabVisualWidth returns the rendered width of tab, matching RenderTabBar.
func TabVisualWidth(tab Tab, active bool) int {
	w := len(tab.Name) + 2
	if !active {
		w += 3 // "[n]"
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index, one space
// between tabs.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	sep := lipgloss.NewStyle().Background(t.Background).Render(" ")

	row := ""
	for i, tab := range Tabs {
		if i > 0 {
			row += sep
		}
		if i == activeIdx {
			row += activeStyle.Render(tab.Name)
			continue
		}
		row += inactiveStyle.Render(tab.Name) + keyStyle.Render("["+string(tab.Key)+"]")
	}

	return lipgloss.NewStyle().Background(t.Background).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
