package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrack/internal/tui/theme"
)

// ColorForPct returns green, yellow, orange or red for a 0-1 usage level.
func ColorForPct(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.Red
	case pct >= 0.8:
		return t.Orange
	case pct >= 0.5:
		return t.Yellow
	default:
		return t.Green
	}
}

// BudgetGauge renders a labeled gauge of used against a budget. pct may
// exceed 1; the bar is clamped but the percentage is not.
func BudgetGauge(label string, pct float64, detail string, barWidth int) string {
	t := theme.Active
	color := ColorForPct(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	detailStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return labelStyle.Render(label) + space +
		bar.ViewAs(min(max(pct, 0), 1)) + space +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100)) + space + space +
		detailStyle.Render(detail)
}
