package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Server URL:  %s%s\n", config.ServerURL(cfg), envNote(config.ServerURL(cfg) != cfg.General.ServerURL, config.EnvServer))
	if tok := config.Token(cfg); tok != "" {
		fmt.Printf("    Token:       %s%s\n", maskToken(tok), envNote(tok != cfg.General.Token, config.EnvToken))
	} else {
		fmt.Println("    Token:       not configured")
	}
	fmt.Printf("    Share URL:   %s\n", cfg.General.ShareURL)
	fmt.Printf("    Workspace:   %s\n", flagWorkspace)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:  %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Locale: %s\n", cfg.Display.Locale)
	fmt.Println()

	fmt.Println("  [Budget]")
	if cfg.Budget.Monthly != nil {
		fmt.Printf("    Monthly budget: %.2f %s\n", *cfg.Budget.Monthly, cfg.Budget.Currency)
	} else {
		fmt.Println("    Monthly budget: not set")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Listen:   %s\n", cfg.Server.Addr)
	fmt.Printf("    Backend:  %s\n", cfg.Server.Backend)
	if cfg.Server.Backend == config.BackendSQLite {
		fmt.Printf("    Database: %s\n", config.ServerDBPath(cfg))
	}
	if u := config.AMQPURL(cfg); u != "" {
		fmt.Printf("    AMQP:     %s (exchange %s)\n", u, cfg.Server.AMQPExchange)
	}
	fmt.Printf("    Demo seed: %v\n", cfg.Server.SeedDemo)
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Printf("  %v\n\n", err)
	}
	fmt.Println("  Run `subtrack setup` to reconfigure.")
	return nil
}

func envNote(overridden bool, name string) string {
	if overridden {
		return " (from $" + name + ")"
	}
	return ""
}

func maskToken(tok string) string {
	if len(tok) > 8 {
		return tok[:4] + "..." + tok[len(tok)-2:]
	}
	return tok
}
