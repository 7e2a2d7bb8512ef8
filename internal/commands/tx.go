package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cleared-dev/ledgerly/internal/ledger"
	"github.com/cleared-dev/ledgerly/internal/model"
)

func newTxCommand(opts *rootOptions) *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and manage transactions",
	}
	txCmd.AddCommand(
		newTxAddCommand(opts),
		newTxPreviewCommand(opts),
		newTxEditCommand(opts),
		newTxDeleteCommand(opts),
		newTxListCommand(opts),
		newTxImportCommand(opts),
	)
	return txCmd
}

type txFlags struct {
	txType string
	from   string
	to     string
	amount string
	date   string
	desc   string
}

func (f *txFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.txType, "type", "", "income, expense, transfer, withdrawal, loan_payment or credit_card_repayment")
	fs.StringVar(&f.from, "from", "", "source account ID")
	fs.StringVar(&f.to, "to", "", "destination account ID")
	fs.StringVar(&f.amount, "amount", "", "amount")
	fs.StringVar(&f.date, "date", "", "date YYYY-MM-DD (default today)")
	fs.StringVar(&f.desc, "desc", "", "description")
}

// apply overwrites the fields of tx whose flags were set. With all set, the
// zero transaction is filled completely.
func (f *txFlags) apply(fs *pflag.FlagSet, tx model.Transaction, all bool) (model.Transaction, error) {
	set := func(name string) bool { return all || fs.Changed(name) }
	if set("type") {
		tx.Type = model.TransactionType(f.txType)
	}
	if set("from") {
		tx.FromAccountID = f.from
	}
	if set("to") {
		tx.ToAccountID = f.to
	}
	if set("amount") {
		amt, err := parseAmount("amount", f.amount)
		if err != nil {
			return tx, err
		}
		tx.Amount = amt
	}
	if set("date") {
		d, err := parseDay("date", f.date)
		if err != nil {
			return tx, err
		}
		tx.Date = d
	}
	if set("desc") {
		tx.Description = f.desc
	}
	return tx, nil
}

func newTxAddCommand(opts *rootOptions) *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				tx, err := f.apply(cmd.Flags(), model.Transaction{OwnerID: a.cfg.Owner.ID}, true)
				if err != nil {
					return err
				}
				tx, err = a.ledger.Create(cmd.Context(), tx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s of %s on %s\n", tx.Type, tx.ID, money(tx.Amount), tx.Date.Format(model.DateFormat))
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newTxPreviewCommand(opts *rootOptions) *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the balance effects of a transaction without recording it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				tx, err := f.apply(cmd.Flags(), model.Transaction{OwnerID: a.cfg.Owner.ID}, true)
				if err != nil {
					return err
				}
				p, err := a.ledger.Preview(cmd.Context(), tx)
				if err != nil {
					return err
				}
				return printPreview(cmd.OutOrStdout(), p)
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func printPreview(out io.Writer, p ledger.Preview) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LEG\tACCOUNT\tTYPE\tBEFORE\tDELTA\tAFTER")
	for _, e := range p.Effects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.Leg, e.AccountID, e.AccountType, money(e.Before), money(e.Delta), money(e.After))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, warn := range p.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warn)
	}
	return nil
}

func newTxEditCommand(opts *rootOptions) *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "edit <transaction-id>",
		Short: "Change fields of a recorded transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				prev, err := a.ledger.Transaction(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				next, err := f.apply(cmd.Flags(), prev, false)
				if err != nil {
					return err
				}
				next, err = a.ledger.Update(cmd.Context(), args[0], next)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s to %s on %s\n", next.Type, next.ID, money(next.Amount), next.Date.Format(model.DateFormat))
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newTxDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a transaction and reverse its effects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				if err := a.ledger.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newTxListCommand(opts *rootOptions) *cobra.Command {
	var account, txType, from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				filter := model.TransactionFilter{
					OwnerID:   a.cfg.Owner.ID,
					AccountID: account,
					Type:      model.TransactionType(txType),
				}
				var err error
				if from != "" {
					if filter.From, err = parseDay("from", from); err != nil {
						return err
					}
				}
				if to != "" {
					if filter.To, err = parseDay("to", to); err != nil {
						return err
					}
				}
				txs, err := a.ledger.Transactions(cmd.Context(), filter)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDATE\tTYPE\tFROM\tTO\tAMOUNT\tDESCRIPTION")
				for _, tx := range txs {
					src := tx.FromAccountID
					if tx.FromAdvance {
						src = "(advance)"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						tx.ID, tx.Date.Format(model.DateFormat), tx.Type, src, tx.ToAccountID, money(tx.Amount), tx.Description)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "only transactions touching this account")
	cmd.Flags().StringVar(&txType, "type", "", "only this transaction type")
	cmd.Flags().StringVar(&from, "from", "", "first date, inclusive")
	cmd.Flags().StringVar(&to, "to", "", "last date, exclusive")
	return cmd
}
