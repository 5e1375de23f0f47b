package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/pipeline"
)

const summaryTop = 5

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Average monthly, weekly and yearly spend",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&flagFilter, "filter", "", "Only names containing this text")
	summaryCmd.Flags().StringVar(&flagCurrency, "currency", "", "Only this currency (USD or CNY)")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	records, err := filteredRecords(ws.Store.List())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("\n  No subscriptions to summarize.")
		return nil
	}

	m := cli.NewMoney(cfg.Display.Locale)
	stats := pipeline.Summarize(records)
	cur := stats.Currencies[0]

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SUBSCRIPTIONS  %d active", stats.Count)))
	fmt.Println()

	if !stats.Mixed {
		fmt.Print(cli.RenderTable(cli.Table{
			Rows: [][]string{
				{"Subscriptions", fmt.Sprintf("%d", stats.Count)},
				{"Monthly", m.Format(stats.AverageMonthly, cur)},
				{"Weekly", m.Format(stats.AverageWeekly, cur)},
				{"Yearly", m.Format(stats.AverageYearly, cur)},
			},
		}))
	} else {
		fmt.Println(cli.RenderWarning("Several currencies: totals are shown per currency."))
		fmt.Println()
		rows := make([][]string, 0, len(stats.Currencies))
		for _, ct := range pipeline.SummarizeByCurrency(records) {
			rows = append(rows, []string{
				string(ct.Currency),
				fmt.Sprintf("%d", ct.Count),
				m.Format(ct.AverageMonthly, ct.Currency),
				m.Format(ct.AverageWeekly, ct.Currency),
				m.Format(ct.AverageYearly, ct.Currency),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Currency", "Count", "Monthly", "Weekly", "Yearly"},
			Rows:    rows,
		}))
	}
	fmt.Println()

	shares := pipeline.AggregateShares(records)
	if len(shares) > 0 {
		maxMonthly := shares[0].Monthly.InexactFloat64()
		fmt.Println("  " + cli.RenderMuted("Most expensive"))
		for _, s := range shares[:min(len(shares), summaryTop)] {
			fmt.Println("  " + cli.RenderHorizontalBar(
				fmt.Sprintf("%-18.18s", s.Record.Name),
				s.Monthly.InexactFloat64(), maxMonthly, 30,
				fmt.Sprintf("%s  %s", m.Format(s.Monthly, s.Record.Currency), cli.FormatPercent(s.SharePercent/100)),
			))
		}
		fmt.Println()
	}

	if cfg.Budget.Monthly != nil {
		bcur, err := model.ParseCurrency(cfg.Budget.Currency)
		if err != nil {
			bcur = model.USD
		}
		b := pipeline.Budget(records, bcur, decimal.NewFromFloat(*cfg.Budget.Monthly))
		fmt.Println("  " + cli.RenderMuted("Budget") + "  " + cli.RenderBudget(m, b, 30))
		fmt.Println()
	}
	return nil
}
