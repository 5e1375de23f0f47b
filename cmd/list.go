package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/catalog"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/export"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/pipeline"
)

var (
	flagFormat   string
	flagFilter   string
	flagCurrency string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscriptions (default command)",
	RunE:    runList,
}

func init() {
	addListFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

func addListFlags(c *cobra.Command) {
	c.Flags().StringVarP(&flagFormat, "format", "f", "table", "Output format: table, csv, markdown, html, json")
	c.Flags().StringVar(&flagFilter, "filter", "", "Only names containing this text")
	c.Flags().StringVar(&flagCurrency, "currency", "", "Only this currency (USD or CNY)")
}

// filterSubscriptions applies --filter and --currency, keeping local ids.
func filterSubscriptions(subs []model.Subscription) ([]model.Subscription, error) {
	var cur model.Currency
	if flagCurrency != "" {
		c, err := model.ParseCurrency(flagCurrency)
		if err != nil {
			return nil, err
		}
		cur = c
	}
	needle := strings.ToLower(flagFilter)

	out := make([]model.Subscription, 0, len(subs))
	for _, s := range subs {
		if needle != "" && !strings.Contains(strings.ToLower(s.Name), needle) {
			continue
		}
		if cur != "" && s.Currency != cur {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// filteredRecords is filterSubscriptions for commands that only need records.
func filteredRecords(subs []model.Subscription) ([]model.Record, error) {
	records := model.Strip(subs)
	if flagFilter != "" {
		records = pipeline.FilterByName(records, flagFilter)
	}
	if flagCurrency != "" {
		cur, err := model.ParseCurrency(flagCurrency)
		if err != nil {
			return nil, err
		}
		records = pipeline.FilterByCurrency(records, cur)
	}
	return records, nil
}

func runList(_ *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(flagFormat)
	if err != nil {
		return err
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

	if format != export.FormatTable {
		return export.WriteList(os.Stdout, subs, format)
	}

	if ws.Store.Len() == 0 {
		fmt.Println()
		fmt.Println("  No subscriptions yet.")
		fmt.Println("  Add one with `subtrack add --preset Netflix`, or load a token with `subtrack token use <token>`.")
		fmt.Println()
		return nil
	}

	m := cli.NewMoney(cfg.Display.Locale)
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		icon := cli.RenderMuted(catalog.KeyFromURL(s.Icon))
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			s.Name,
			cli.FormatPrice(m, s.Record),
			m.Format(pipeline.MonthlyEquivalent(s.Price, s.Period), s.Currency),
			cli.FormatDate(s.FirstBillDate),
			icon,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Subscriptions (%d of %d)", len(subs), ws.Store.Len()),
		Headers: []string{"ID", "Name", "Price", "Monthly", "First Bill", "Icon"},
		Rows:    rows,
	}))
	if ws.Reconciler.Pending() {
		fmt.Println(cli.RenderWarning("Local changes not synced. Run `subtrack sync`."))
	}
	fmt.Println()
	return nil
}
