// Package commands implements the ledgerly CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerly/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "ledgerly",
		Short:   "Personal finance ledger for cash, bank, card and loan accounts",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to ledgerly.yaml (default $LEDGERLY_CONFIG or ./ledgerly.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountCommand(opts),
		newTxCommand(opts),
		newLoanCommand(opts),
		newCardCommand(opts),
		newCashflowCommand(opts),
	)

	return rootCmd
}
