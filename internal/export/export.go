// Package export writes subscription lists and spending series as tables,
// CSV, Markdown, HTML, JSON or Excel workbooks.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/pipeline"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name, case-insensitively. "md" is an alias
// for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatMarkdown, FormatHTML, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("export: unknown format %q (want table, csv, markdown, html or json)", s)
	}
}

// money renders amounts for machine-readable output: two decimals, no symbol.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type seriesRow struct {
	Month       string `json:"month"`
	Spending    string `json:"spending"`
	Accumulated string `json:"accumulated"`
}

type listRow struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Currency      string `json:"currency"`
	Period        string `json:"period"`
	Monthly       string `json:"monthly"`
	FirstBillDate string `json:"firstBillDate"`
	Icon          string `json:"icon,omitempty"`
}

// WriteSeries writes one row per month plus a footer with the final
// accumulated total.
func WriteSeries(w io.Writer, points []model.MonthlyDataPoint, f Format) error {
	rows := make([]seriesRow, len(points))
	for i, p := range points {
		rows[i] = seriesRow{
			Month:       p.Label(),
			Spending:    money(p.Spending),
			Accumulated: money(p.Accumulated),
		}
	}
	if f == FormatJSON {
		return writeJSON(w, rows)
	}

	t := newWriter(w)
	t.AppendHeader(table.Row{"Month", "Spending", "Accumulated"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Month, r.Spending, r.Accumulated})
	}
	if len(rows) > 0 {
		t.AppendFooter(table.Row{"Total", "", rows[len(rows)-1].Accumulated})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return render(t, f)
}

// WriteList writes the subscription list with each entry's monthly
// equivalent.
func WriteList(w io.Writer, subs []model.Subscription, f Format) error {
	rows := make([]listRow, len(subs))
	for i, s := range subs {
		rows[i] = listRow{
			ID:            s.ID,
			Name:          s.Name,
			Price:         money(s.Price),
			Currency:      string(s.Currency),
			Period:        string(s.Period),
			Monthly:       money(pipeline.MonthlyEquivalent(s.Price, s.Period)),
			FirstBillDate: s.FirstBillDate.Format(model.DateLayout),
			Icon:          s.Icon,
		}
	}
	if f == FormatJSON {
		return writeJSON(w, rows)
	}

	t := newWriter(w)
	t.AppendHeader(table.Row{"ID", "Name", "Price", "Currency", "Period", "Monthly", "First Bill"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.ID, r.Name, r.Price, r.Currency, r.Period, r.Monthly, r.FirstBillDate})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return render(t, f)
}

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func render(t table.Writer, f Format) error {
	switch f {
	case FormatTable:
		t.Render()
	case FormatCSV:
		t.RenderCSV()
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatHTML:
		t.RenderHTML()
	default:
		return fmt.Errorf("export: unknown format %q", f)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
