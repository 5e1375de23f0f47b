package cmd

import (
	"errors"
	"fmt"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/workspace"
)

var (
	flagForce bool
	flagQR    bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the token that names your list on the server",
}

var tokenNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Ask the server for a new, empty token and switch to it",
	Args:  cobra.NoArgs,
	RunE:  runTokenNew,
}

var tokenUseCmd = &cobra.Command{
	Use:   "use <token>",
	Short: "Load the list stored under token",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenUse,
}

var tokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current token and its resume link",
	Args:  cobra.NoArgs,
	RunE:  runTokenShow,
}

func init() {
	tokenNewCmd.Flags().BoolVar(&flagForce, "force", false, "Discard unsynced local changes")
	tokenUseCmd.Flags().BoolVar(&flagForce, "force", false, "Discard unsynced local changes")
	tokenShowCmd.Flags().BoolVar(&flagQR, "qr", false, "Also print the resume link as a QR code")

	tokenCmd.AddCommand(tokenNewCmd, tokenUseCmd, tokenShowCmd)
	rootCmd.AddCommand(tokenCmd)
}

// guardPending refuses to replace unsynced changes without --force.
func guardPending(ws *workspace.Workspace) error {
	if ws.Reconciler.Pending() && !flagForce {
		return errors.New("local changes are not synced: run `subtrack sync` first or pass --force")
	}
	return nil
}

func runTokenNew(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := guardPending(ws); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	token, err := ws.Reconciler.IssueNewToken(ctx)
	if err != nil {
		return err
	}
	if err := ws.Save(); err != nil {
		return err
	}

	fmt.Printf("  New token: %s\n", token)
	fmt.Printf("  Resume link: %s\n", config.ShareLink(cfg, token))
	return nil
}

func runTokenUse(_ *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := guardPending(ws); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	progress("Loading %s...", args[0])
	if err := ws.Reconciler.LoadForToken(ctx, args[0]); err != nil {
		return err
	}
	if err := ws.Save(); err != nil {
		return err
	}
	fmt.Printf("  Loaded %d subscriptions for %s\n", ws.Store.Len(), ws.Reconciler.Token())
	return nil
}

func runTokenShow(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	token := ws.Reconciler.Token()
	if token == "" {
		fmt.Println("  No token yet. Run `subtrack token new` or `subtrack token use <token>`.")
		return nil
	}

	link := config.ShareLink(cfg, token)
	fmt.Printf("  Token: %s\n", token)
	fmt.Printf("  Resume link: %s\n", link)

	if flagQR {
		qr, err := qrcode.New(link, qrcode.Medium)
		if err != nil {
			return fmt.Errorf("encoding QR code: %w", err)
		}
		fmt.Println()
		fmt.Print(qr.ToSmallString(false))
	}
	return nil
}
