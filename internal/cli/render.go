package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/theirongolddev/subtrack/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	barStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	overStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table is a bordered text table for CLI output. The first column is
// left-aligned and the rest are right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders t, or "" when it has neither headers nor rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := valueStyle
			if row == table.HeaderRow {
				s = headerStyle
			}
			s = s.Padding(0, 1)
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}
	b.WriteString(tbl.String())
	b.WriteString("\n")
	return b.String()
}

// RenderWarning renders a one-line warning.
func RenderWarning(msg string) string {
	return warnStyle.Render("! " + msg)
}

// RenderMuted renders secondary text.
func RenderMuted(msg string) string {
	return mutedStyle.Render(msg)
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// RenderHorizontalBar renders one labeled bar scaled against maxValue.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int, suffix string) string {
	barLen := 0
	if maxValue > 0 {
		barLen = int(value / maxValue * float64(maxWidth))
	}
	barLen = min(max(barLen, 0), maxWidth)
	return fmt.Sprintf("  %s %s %s",
		mutedStyle.Render(label),
		barStyle.Render(strings.Repeat("█", barLen)+strings.Repeat(" ", maxWidth-barLen)),
		valueStyle.Render(suffix),
	)
}

// RenderSeriesBars renders one bar per month of spending.
func RenderSeriesBars(m Money, points []model.MonthlyDataPoint, cur model.Currency, width int) string {
	if len(points) == 0 {
		return ""
	}
	peak := 0.0
	for _, p := range points {
		peak = max(peak, p.Spending.InexactFloat64())
	}

	var b strings.Builder
	for _, p := range points {
		b.WriteString(RenderHorizontalBar(p.Label(), p.Spending.InexactFloat64(), peak, width, m.Format(p.Spending, cur)))
		b.WriteString("\n")
	}
	return b.String()
}

// AccumulatedValues extracts the accumulated column of a series for a sparkline.
func AccumulatedValues(points []model.MonthlyDataPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Accumulated.InexactFloat64()
	}
	return out
}

// RenderBudget renders a text gauge for the monthly budget.
func RenderBudget(m Money, b model.BudgetStats, width int) string {
	pct := min(max(b.UsedPercent/100, 0), 1)
	filled := int(pct * float64(width))

	style := barStyle
	if b.Over {
		style = overStyle
	}
	bar := style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))

	remaining := m.Format(b.Remaining, b.Currency) + " left"
	if b.Over {
		remaining = overStyle.Render(m.Format(b.Remaining.Abs(), b.Currency) + " over")
	}
	return fmt.Sprintf("[%s] %s / %s  %s",
		bar,
		m.Format(b.Monthly, b.Currency),
		m.Format(b.Limit, b.Currency),
		remaining,
	)
}
