package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/export"
)

var flagReplace bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Add subscriptions from an Excel workbook",
	Long: `Reads the Subscriptions sheet of a workbook written by
` + "`subtrack series --xlsx`" + ` or laid out the same way: a header row with
Name, Price, Currency, Period and First Bill Date, and optionally Icon.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagXLSX, "xlsx", "", "Workbook to read")
	importCmd.Flags().BoolVar(&flagReplace, "replace", false, "Replace the local list instead of appending")
	_ = importCmd.MarkFlagRequired("xlsx")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, _ []string) error {
	f, err := os.Open(flagXLSX)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := export.ReadWorkbook(f)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("the workbook has no subscriptions")
	}

	ctx, cancel := commandContext()
	defer cancel()

	ws, err := openLoadedWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	if flagReplace {
		if err := ws.Store.ReplaceAll(records); err != nil {
			return err
		}
	} else {
		for _, r := range records {
			if _, err := ws.Store.Add(r); err != nil {
				return fmt.Errorf("%s: %w", r.Name, err)
			}
		}
	}
	if err := ws.Save(); err != nil {
		return err
	}

	fmt.Printf("  Imported %d subscriptions, %d in the list.\n", len(records), ws.Store.Len())
	fmt.Println("  Run `subtrack sync` to store them on the server.")
	return nil
}
