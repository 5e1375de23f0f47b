package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/catalog"
	"github.com/theirongolddev/subtrack/internal/cli"
)

var flagIcons bool

var presetsCmd = &cobra.Command{
	Use:   "presets [search]",
	Short: "List the built-in subscription presets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPresets,
}

func init() {
	presetsCmd.Flags().BoolVar(&flagIcons, "icons", false, "List icon keys instead")
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(_ *cobra.Command, args []string) error {
	if err := catalog.Err(); err != nil {
		return err
	}

	if flagIcons {
		fmt.Println()
		fmt.Println("  " + strings.Join(catalog.IconKeys(), ", "))
		fmt.Println()
		return nil
	}

	term := ""
	if len(args) == 1 {
		term = args[0]
	}
	presets := catalog.SearchPresets(term)
	if len(presets) == 0 {
		fmt.Printf("  No preset matches %q.\n", term)
		return nil
	}

	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		rows = append(rows, []string{p.Name, p.Price + " " + p.Currency, p.Period, p.Icon})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Preset", "Price", "Period", "Icon"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
