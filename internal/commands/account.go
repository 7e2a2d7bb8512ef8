package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerly/internal/ledger"
	"github.com/cleared-dev/ledgerly/internal/model"
)

func newAccountCommand(opts *rootOptions) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}
	accountCmd.AddCommand(newAccountAddCommand(opts), newAccountListCommand(opts))
	return accountCmd
}

type accountAddFlags struct {
	name         string
	accountType  string
	currency     string
	opening      string
	limit        string
	principal    string
	tenure       int
	start        string
	rate         string
	rateType     string
	statementDay int
	dueDay       int
}

func newAccountAddCommand(opts *rootOptions) *cobra.Command {
	var f accountAddFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Open a cash, bank, credit card or loan account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				return runAccountAdd(cmd, a, f)
			})
		},
	}

	cmd.Flags().StringVar(&f.name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&f.accountType, "type", "", "cash, bank, credit_card or loan (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&f.currency, "currency", "", "ISO currency code (default from config)")
	cmd.Flags().StringVar(&f.opening, "opening", "", "opening balance")
	cmd.Flags().StringVar(&f.limit, "limit", "", "credit limit (credit cards)")
	cmd.Flags().StringVar(&f.principal, "principal", "", "loan principal")
	cmd.Flags().IntVar(&f.tenure, "tenure", 0, "loan tenure in months")
	cmd.Flags().StringVar(&f.start, "start", "", "loan start date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.rate, "rate", "", "loan annual interest rate in percent")
	cmd.Flags().StringVar(&f.rateType, "rate-type", "", "fixed or floating")
	cmd.Flags().IntVar(&f.statementDay, "statement-day", 0, "card statement day of month")
	cmd.Flags().IntVar(&f.dueDay, "due-day", 0, "card or loan due day of month")

	return cmd
}

func runAccountAdd(cmd *cobra.Command, a *app, f accountAddFlags) error {
	p := ledger.AddAccountParams{
		OwnerID:      a.cfg.Owner.ID,
		Name:         f.name,
		Type:         model.AccountType(f.accountType),
		Currency:     f.currency,
		TenureMonths: f.tenure,
		RateType:     model.RateType(f.rateType),
		StatementDay: f.statementDay,
		DueDay:       f.dueDay,
	}
	var err error
	if p.OpeningBalance, err = parseAmount("opening", f.opening); err != nil {
		return err
	}
	if f.limit != "" {
		limit, err := parseAmount("limit", f.limit)
		if err != nil {
			return err
		}
		p.CreditLimit = &limit
	}
	if p.Principal, err = parseAmount("principal", f.principal); err != nil {
		return err
	}
	if p.Rate, err = parseAmount("rate", f.rate); err != nil {
		return err
	}
	if f.start != "" {
		if p.StartDate, err = parseDay("start", f.start); err != nil {
			return err
		}
	}

	acct, err := a.ledger.AddAccount(cmd.Context(), p)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s account %s (%s) balance %s %s\n",
		acct.Type, acct.ID, acct.Name, money(acct.Balance), acct.Currency)
	return nil
}

func newAccountListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				accts, err := a.ledger.Accounts(cmd.Context(), a.cfg.Owner.ID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tTYPE\tBALANCE\tCURRENCY")
				for _, acct := range accts {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", acct.ID, acct.Name, acct.Type, money(acct.Balance), acct.Currency)
				}
				return w.Flush()
			})
		},
	}
}
