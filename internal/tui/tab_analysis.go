package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/tui/components"
	"github.com/theirongolddev/subtrack/internal/tui/theme"
)

const topShares = 5

func (a App) renderAnalysisTab(cw int) string {
	t := theme.Active
	stats := a.stats
	cur := a.chartCurrency()

	if stats.Count == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard("Analysis", muted.Render("Nothing to analyze yet."), cw)
	}

	var b strings.Builder

	// Averages are summed across currencies; label them with the single
	// currency when there is one.
	label := func(s string) string {
		if stats.Mixed {
			return s + " (mixed)"
		}
		return s
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Subscriptions", Value: fmt.Sprintf("%d", stats.Count), Note: cli.FormatCurrencies(stats.Currencies)},
		{Label: label("Monthly"), Value: a.money.Format(stats.AverageMonthly, cur)},
		{Label: label("Weekly"), Value: a.money.Format(stats.AverageWeekly, cur)},
		{Label: label("Yearly"), Value: a.money.Format(stats.AverageYearly, cur)},
	}, cw))
	b.WriteString("\n")

	if stats.Mixed {
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Background)
		b.WriteString(warn.Render(" Mixed currencies: totals above add unlike amounts. Per-currency figures below."))
		b.WriteString("\n")
	}

	// Spending chart for one currency.
	if len(a.series) > 0 {
		values := make([]float64, len(a.series))
		labels := make([]string, len(a.series))
		for i, p := range a.series {
			values[i] = p.Spending.InexactFloat64()
			labels[i] = p.Label()
		}
		innerW := components.CardInnerWidth(cw)
		last := a.series[len(a.series)-1]
		body := components.BarChart(values, labels, t.Accent, innerW, 8) + "\n" +
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("Accumulated ") +
			components.Sparkline(cli.AccumulatedValues(a.series), t.Cyan) +
			lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Render(" "+a.money.Format(last.Accumulated, cur))

		title := "Monthly spending"
		if stats.Mixed {
			title += fmt.Sprintf(" · %s (c to switch)", cur)
		}
		b.WriteString(components.ContentCard(title, body, cw))
		b.WriteString("\n")
	}

	halves := components.LayoutRow(cw, 2)
	left := components.ContentCard("By currency", a.renderCurrencyTotals(components.CardInnerWidth(halves[0])), halves[0])
	right := components.ContentCard("Most expensive", a.renderShares(components.CardInnerWidth(halves[1])), halves[1])
	b.WriteString(components.CardRow([]string{left, right}))

	if a.budget != nil {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Budget", a.renderBudget(components.CardInnerWidth(cw)), cw))
	}

	return b.String()
}

func (a App) renderCurrencyTotals(w int) string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	colW := max((w-10)/2, 8)
	lines := []string{head.Render(fmt.Sprintf("%-4s %4s %*s %*s", "Cur", "Subs", colW, "Monthly", colW, "Yearly"))}
	for _, ct := range a.byCurrency {
		lines = append(lines, row.Render(fmt.Sprintf("%-4s %4d %*s %*s",
			ct.Currency, ct.Count,
			colW, a.money.Format(ct.AverageMonthly, ct.Currency),
			colW, a.money.Format(ct.AverageYearly, ct.Currency))))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderShares(w int) string {
	t := theme.Active
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	pct := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	n := min(len(a.shares), topShares)
	nameW := max(w-22, 6)
	lines := make([]string, 0, n)
	for _, s := range a.shares[:n] {
		lines = append(lines,
			row.Render(fmt.Sprintf("%-*s %12s", nameW, truncStr(s.Record.Name, nameW), a.money.Format(s.Monthly, s.Record.Currency)))+
				pct.Render(fmt.Sprintf(" %6s", cli.FormatPercent(s.SharePercent/100))))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderBudget(w int) string {
	b := *a.budget
	var detail string
	if b.Over {
		detail = a.money.Format(b.Remaining.Abs(), b.Currency) + " over " + a.money.Format(b.Limit, b.Currency)
	} else {
		detail = a.money.Format(b.Remaining, b.Currency) + " left of " + a.money.Format(b.Limit, b.Currency)
	}
	label := fmt.Sprintf("%s/mo", b.Currency)
	barW := max(w-len(label)-len(detail)-10, 10)
	return components.BudgetGauge(label, b.UsedPercent/100, detail, barW)
}
