package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerly/internal/importer"
	"github.com/cleared-dev/ledgerly/internal/model"
)

func newTxImportCommand(opts *rootOptions) *cobra.Command {
	var format string
	var dryRun bool

	registry := importer.DefaultRegistry()
	formats := registry.Formats()
	sort.Strings(formats)

	cmd := &cobra.Command{
		Use:   "import <account-id> <file.csv>",
		Short: "Record a bank statement export as income and expense transactions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := registry.Get(format)
			if parser == nil {
				return fmt.Errorf("unknown format %q (have %s)", format, strings.Join(formats, ", "))
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[1], err)
			}
			defer f.Close()

			rows, err := parser.Parse(f)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[1], err)
			}

			return opts.withApp(cmd, func(a *app) error {
				res, err := importer.Import(cmd.Context(), a.ledger, importer.Params{
					OwnerID:   a.cfg.Owner.ID,
					AccountID: args[0],
					Rows:      rows,
					DryRun:    dryRun,
				})
				out := cmd.OutOrStdout()
				for _, tx := range res.Created {
					fmt.Fprintf(out, "%s  %-7s  %10s  %s\n", tx.Date.Format(model.DateFormat), tx.Type, money(tx.Amount), tx.Description)
				}
				if err != nil {
					return err
				}
				verb := "Imported"
				if dryRun {
					verb = "Would import"
				}
				fmt.Fprintf(out, "%s %d transactions, skipped %d\n", verb, len(res.Created), res.Skipped)
				a.log.WithFields(logrus.Fields{
					"account_id": args[0],
					"format":     parser.Format(),
					"created":    len(res.Created),
					"skipped":    res.Skipped,
					"dry_run":    dryRun,
				}).Info("statement imported")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "simple", "export format: "+strings.Join(formats, ", "))
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be recorded without recording it")
	return cmd
}
