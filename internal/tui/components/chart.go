package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrack/internal/tui/theme"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a one-line sparkline of values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := 1 + int(v/peak*7)
		buf.WriteRune(blocks[min(max(idx, 1), 8)])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BarChart renders vertical bars for values, height rows tall, with a
// y-axis of rounded tick values and the first and last labels under the
// x-axis. Narrow widths fall back to a sparkline.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	ceiling := niceCeiling(peak)

	yLabelW := max(len(formatAxis(ceiling))+1, 4)
	plotW := width - yLabelW - 1

	// Keep the most recent bars when they do not all fit.
	if len(values) > plotW {
		values = values[len(values)-plotW:]
		if len(labels) > plotW {
			labels = labels[len(labels)-plotW:]
		}
	}
	n := len(values)
	barW := min(max(plotW/n-1, 1), 6)
	gap := 1
	if barW == 1 && n*2 > plotW {
		gap = 0
	}

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		top := ceiling * float64(row) / float64(height)
		bottom := ceiling * float64(row-1) / float64(height)

		label := ""
		if row == height || row == (height+1)/2 {
			label = formatAxis(top)
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= top:
				b.WriteString(bar.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * 8)
				b.WriteString(bar.Render(strings.Repeat(string(blocks[min(max(idx, 1), 8)]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	axisLen := n*barW + (n-1)*gap
	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n && n > 0 {
		first, last := labels[0], labels[n-1]
		pad := axisLen - len(first) - len(last)
		line := first
		if n > 1 && pad > 0 {
			line += strings.Repeat(" ", pad) + last
		}
		b.WriteString("\n")
		b.WriteString(axis.Render(strings.Repeat(" ", yLabelW+1) + line))
	}
	return b.String()
}

// niceCeiling rounds v up to 1, 2 or 5 times a power of ten.
func niceCeiling(v float64) float64 {
	if v <= 0 {
		return 1
	}
	base := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*base {
			return m * base
		}
	}
	return 10 * base
}

func formatAxis(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 10:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}
