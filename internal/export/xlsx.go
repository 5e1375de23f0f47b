package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/pipeline"
)

const (
	sheetSubscriptions = "Subscriptions"
	sheetSeries        = "Series"
)

var subscriptionHeader = []any{"Name", "Price", "Currency", "Period", "First Bill Date", "Icon", "Monthly"}

// WriteWorkbook writes an xlsx workbook with a Subscriptions sheet, a Series
// sheet and a line chart of accumulated spending.
func WriteWorkbook(w io.Writer, subs []model.Subscription, points []model.MonthlyDataPoint) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetSubscriptions); err != nil {
		return fmt.Errorf("export: naming sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetSubscriptions, "A1", &subscriptionHeader); err != nil {
		return fmt.Errorf("export: writing header: %w", err)
	}
	for i, s := range subs {
		row := []any{
			s.Name,
			s.Price.InexactFloat64(),
			string(s.Currency),
			string(s.Period),
			s.FirstBillDate.Format(model.DateLayout),
			s.Icon,
			pipeline.MonthlyEquivalent(s.Price, s.Period).Round(2).InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetSubscriptions, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("export: writing subscription %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(sheetSeries); err != nil {
		return fmt.Errorf("export: adding series sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetSeries, "A1", &[]any{"Month", "Spending", "Accumulated"}); err != nil {
		return fmt.Errorf("export: writing header: %w", err)
	}
	for i, p := range points {
		row := []any{p.Label(), p.Spending.Round(2).InexactFloat64(), p.Accumulated.Round(2).InexactFloat64()}
		if err := f.SetSheetRow(sheetSeries, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("export: writing month %s: %w", p.Label(), err)
		}
	}

	if len(points) > 0 {
		last := len(points) + 1
		err := f.AddChart(sheetSeries, "E2", &excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{{
				Name:       sheetSeries + "!$C$1",
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetSeries, last),
				Values:     fmt.Sprintf("%s!$C$2:$C$%d", sheetSeries, last),
			}},
			Title: []excelize.RichTextRun{{Text: "Accumulated spending"}},
		})
		if err != nil {
			return fmt.Errorf("export: adding chart: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: writing workbook: %w", err)
	}
	return nil
}

// ReadWorkbook reads the Subscriptions sheet of a workbook written by
// WriteWorkbook. Columns are located by header name, and every row is
// validated.
func ReadWorkbook(r io.Reader) ([]model.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("export: opening workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetSubscriptions)
	if err != nil {
		return nil, fmt.Errorf("export: reading %s sheet: %w", sheetSubscriptions, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int)
	for i, h := range rows[0] {
		col[strings.TrimSpace(h)] = i
	}
	for _, h := range subscriptionHeader[:5] {
		if _, ok := col[h.(string)]; !ok {
			return nil, fmt.Errorf("export: missing column %q", h)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []model.Record
	for n, row := range rows[1:] {
		line := n + 2
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		price, err := decimal.NewFromString(cell(row, "Price"))
		if err != nil {
			return nil, fmt.Errorf("export: row %d: invalid price %q", line, cell(row, "Price"))
		}
		first, err := model.ParseDate(cell(row, "First Bill Date"))
		if err != nil {
			return nil, fmt.Errorf("export: row %d: %w", line, err)
		}
		rec := model.Record{
			Name:          cell(row, "Name"),
			Price:         price,
			Currency:      model.Currency(strings.ToUpper(cell(row, "Currency"))),
			Period:        model.Period(strings.ToLower(cell(row, "Period"))),
			FirstBillDate: first,
			Icon:          cell(row, "Icon"),
		}
		if err := model.Validate(rec); err != nil {
			return nil, fmt.Errorf("export: row %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
