package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerly/internal/config"
	"github.com/cleared-dev/ledgerly/internal/sqlstore"
)

func newInitCommand() *cobra.Command {
	var owner string
	var currency string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, owner, currency)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "ledger owner name (required)")
	_ = cmd.MarkFlagRequired("owner")
	cmd.Flags().StringVar(&currency, "currency", "INR", "default account currency")

	return cmd
}

func runInit(cmd *cobra.Command, dir, owner, currency string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.Default(owner, currency)
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Opening the store creates the database and applies migrations.
	st, err := sqlstore.Open(cfg.DatabasePath(dir))
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledger for %s at %s\n", owner, dir)
	return nil
}
