package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <id|name>...",
	Aliases: []string{"rm"},
	Short:   "Remove subscriptions",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(_ *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	ws, err := openLoadedWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	// Resolve everything first so a bad argument removes nothing.
	ids := make([]int, 0, len(args))
	names := make([]string, 0, len(args))
	for _, arg := range args {
		s, err := findSubscription(ws, arg)
		if err != nil {
			return err
		}
		ids = append(ids, s.ID)
		names = append(names, s.Name)
	}

	for i, id := range ids {
		if ws.Store.Remove(id) {
			fmt.Printf("  Removed #%d %s\n", id, names[i])
		}
	}
	return ws.Save()
}
