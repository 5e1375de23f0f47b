package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/export"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/pipeline"
)

var (
	flagAsOf string
	flagXLSX string
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Monthly spending from the earliest first bill date to now",
	Example: `  subtrack series
  subtrack series --as-of 2024-12-31 --format csv
  subtrack series --xlsx spending.xlsx`,
	Args: cobra.NoArgs,
	RunE: runSeries,
}

func init() {
	seriesCmd.Flags().StringVar(&flagAsOf, "as-of", "", "Last month of the series, YYYY-MM-DD (default today)")
	seriesCmd.Flags().StringVarP(&flagFormat, "format", "f", "table", "Output format: table, csv, markdown, html, json")
	seriesCmd.Flags().StringVar(&flagXLSX, "xlsx", "", "Also write an Excel workbook with a chart to this path")
	seriesCmd.Flags().StringVar(&flagFilter, "filter", "", "Only names containing this text")
	seriesCmd.Flags().StringVar(&flagCurrency, "currency", "", "Only this currency (USD or CNY)")
	rootCmd.AddCommand(seriesCmd)
}

func runSeries(_ *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	asOf := time.Now()
	if flagAsOf != "" {
		if asOf, err = model.ParseDate(flagAsOf); err != nil {
			return err
		}
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	subs, err := filterSubscriptions(ws.Store.List())
	if err != nil {
		return err
	}
	records := model.Strip(subs)
	points := pipeline.BuildSeries(records, asOf)

	if flagXLSX != "" {
		if err := writeWorkbookFile(flagXLSX, subs, points); err != nil {
			return err
		}
		progress("Wrote %s", flagXLSX)
	}

	if format != export.FormatTable {
		return export.WriteSeries(os.Stdout, points, format)
	}

	if len(points) == 0 {
		fmt.Println("\n  No spending before the as-of date.")
		return nil
	}

	m := cli.NewMoney(cfg.Display.Locale)
	stats := pipeline.Summarize(records)
	cur := stats.Currencies[0]

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SPENDING  %s to %s", points[0].Label(), points[len(points)-1].Label())))
	fmt.Println()
	if stats.Mixed {
		fmt.Println(cli.RenderWarning("Several currencies are summed as-is. Use --currency to split them."))
		fmt.Println()
	}
	fmt.Print(cli.RenderSeriesBars(m, points, cur, 40))
	fmt.Println()
	fmt.Printf("  Accumulated %s  %s\n",
		cli.RenderSparkline(cli.AccumulatedValues(points)),
		m.Format(points[len(points)-1].Accumulated, cur))
	fmt.Println()
	return nil
}

func writeWorkbookFile(path string, subs []model.Subscription, points []model.MonthlyDataPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WriteWorkbook(f, subs, points); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
