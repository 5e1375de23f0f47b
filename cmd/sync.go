package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/reconcile"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push local changes to the server and fetch the stored list",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(_ *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	ws, err := openLoadedWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	progress("Syncing with %s...", ws.Client.BaseURL())
	out, err := ws.Reconciler.Sync(ctx)
	if saveErr := ws.Save(); saveErr != nil && err == nil {
		err = saveErr
	}
	if errors.Is(err, reconcile.ErrNoToken) {
		return errors.New("no token selected: run `subtrack token new` or `subtrack token use <token>`")
	}
	if err != nil {
		return err
	}

	switch {
	case out.NoChanges:
		fmt.Println("  Already in sync.")
	default:
		fmt.Printf("  Pushed %d, server now stores %d subscriptions.\n", out.Pushed, out.Fetched)
	}
	return nil
}
