package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/cli"
)

var editFlags recordFlags

var editCmd = &cobra.Command{
	Use:     "edit <id|name>",
	Short:   "Change fields of a subscription",
	Example: "  subtrack edit 2 --price 17.99\n  subtrack edit Netflix --period yearly --price 180",
	Args:    cobra.ExactArgs(1),
	RunE:    runEdit,
}

func init() {
	editFlags.register(editCmd)
	rootCmd.AddCommand(editCmd)
}

func runEdit(c *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	ws, err := openLoadedWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	s, err := findSubscription(ws, args[0])
	if err != nil {
		return err
	}

	r := s.Record
	if err := editFlags.apply(c, &r); err != nil {
		return err
	}
	if r.Equal(s.Record) && r.Icon == s.Icon {
		fmt.Println("  Nothing to change.")
		return nil
	}

	updated, err := ws.Store.Edit(s.ID, r)
	if err != nil {
		return err
	}
	if err := ws.Save(); err != nil {
		return err
	}

	m := cli.NewMoney(cfg.Display.Locale)
	fmt.Printf("  Updated #%d %s (%s)\n", updated.ID, updated.Name, cli.FormatPrice(m, updated.Record))
	return nil
}
