package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/subtrack/internal/catalog"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/pipeline"
	"github.com/theirongolddev/subtrack/internal/tui/components"
	"github.com/theirongolddev/subtrack/internal/tui/theme"
)

func (a App) renderSubscriptionsTab(cw, h int) string {
	t := theme.Active

	if len(a.subs) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		body := muted.Render("No subscriptions yet.") + "\n\n" +
			muted.Render("Press a to add one, t to load a token, or n to start a new one.")
		return components.ContentCard("Subscriptions", body, cw)
	}

	innerW := components.CardInnerWidth(cw)
	// Card border, title line, header row and footer.
	visible := max(h-6, 1)
	offset := 0
	if a.cursor >= visible {
		offset = a.cursor - visible + 1
	}

	nameW := max(innerW-2-12-9-12-12, 10)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("  %-*s %12s %-8s %12s %12s",
		nameW, "Name", "Price", " Period", "Monthly", "Since")))
	b.WriteString("\n")

	end := min(offset+visible, len(a.subs))
	for i := offset; i < end; i++ {
		s := a.subs[i]
		icon := catalog.IconForRecord(s.Record)
		glyph := lipgloss.NewStyle().
			Foreground(lipgloss.Color(icon.Color)).
			Background(t.Surface).
			Bold(true).
			Render(icon.Glyph)

		monthly := pipeline.MonthlyEquivalent(s.Price, s.Period)
		line := fmt.Sprintf(" %-*s %12s %-8s %12s %12s",
			nameW, truncStr(s.Name, nameW),
			a.money.Format(s.Price, s.Currency),
			" "+string(s.Period),
			a.money.Format(monthly, s.Currency),
			cli.FormatDate(s.FirstBillDate))

		style := rowStyle
		if i == a.cursor {
			style = selStyle
		}
		b.WriteString(glyph + style.Render(line))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	footer := fmt.Sprintf("%d subscriptions", len(a.subs))
	if end-offset < len(a.subs) {
		footer += fmt.Sprintf(" · showing %d-%d", offset+1, end)
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(footer))

	return components.ContentCard("Subscriptions", b.String(), cw)
}
