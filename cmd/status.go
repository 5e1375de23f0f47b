package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/cli"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the token, sync state and server reachability",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	rec := ws.Reconciler
	token := rec.Token()
	if token == "" {
		token = cli.RenderMuted("none")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	reach := "reachable"
	if !ws.Client.Healthy(ctx) {
		reach = cli.RenderWarning("unreachable")
	}

	rows := [][]string{
		{"Token", token},
		{"State", rec.State().String()},
		{"Subscriptions", fmt.Sprintf("%d", ws.Store.Len())},
		{"Unsynced changes", yesNo(rec.Pending())},
		{"Server", ws.Client.BaseURL() + " (" + reach + ")"},
		{"Workspace", flagWorkspace},
	}
	if at := ws.SyncedAt(); !at.IsZero() {
		rows = append(rows, []string{"Last sync", at.Local().Format(time.DateTime)})
	}
	if err := rec.LastError(); err != nil {
		rows = append(rows, []string{"Last error", err.Error()})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{Title: "Status", Rows: rows}))
	fmt.Println()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
