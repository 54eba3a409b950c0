// Package main provides the splitter binary entry point.
// Splitter keeps per-event ledgers of who owes whom and proposes the fewest
// payments that settle them.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/uilacceb/splitter/internal/config"
	"github.com/uilacceb/splitter/pkg/logging"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "splitter"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

// load reads the configuration and sets up logging. The --log-level flag
// wins over the configured level.
func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger, err := logging.Setup(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Debt reconciliation engine and ledger service",
		Long: `Splitter turns shared expenses into a per-event ledger of who owes whom.

It provides:
- A Connect RPC server that records expenses and keeps obligations current
- Netting and settlement planning for ad-hoc obligation lists
- Maintenance commands for regenerating stored ledgers`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(opts),
		netCmd(),
		planCmd(),
		regenerateCmd(opts),
		tokenCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}
