package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerly/internal/advance"
	"github.com/cleared-dev/ledgerly/internal/installment"
	"github.com/cleared-dev/ledgerly/internal/ledger"
	"github.com/cleared-dev/ledgerly/internal/model"
)

func newCardCommand(opts *rootOptions) *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Credit card statements, repayments and EMIs",
	}
	cardCmd.AddCommand(
		newCardStatementCommand(opts),
		newCardRepayCommand(opts),
		newCardEMICommand(opts),
	)
	return cardCmd
}

func newCardStatementCommand(opts *rootOptions) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "statement <card-id>",
		Short: "Show the statement in force on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				date, err := parseDay("as-of", asOf)
				if err != nil {
					return err
				}
				st, err := a.ledger.CardStatement(cmd.Context(), args[0], date)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Period:          %s to %s\n",
					st.Period.Start.Format(model.DateFormat), st.Period.End.AddDate(0, 0, -1).Format(model.DateFormat))
				if !st.DueDate.IsZero() {
					fmt.Fprintf(out, "Due date:        %s\n", st.DueDate.Format(model.DateFormat))
				}
				fmt.Fprintf(out, "Transactions:    %s\n", money(st.TransactionsAmount))
				fmt.Fprintf(out, "EMIs:            %s\n", money(st.EMIsAmount))
				fmt.Fprintf(out, "Statement:       %s\n", money(st.StatementAmount))
				fmt.Fprintf(out, "Advance:         %s\n", money(st.AdvanceBalance))
				fmt.Fprintf(out, "Net due:         %s\n", money(st.NetStatementAmount))
				fmt.Fprintf(out, "Minimum due:     %s\n", money(st.MinimumDue))
				fmt.Fprintf(out, "Current balance: %s %s\n", money(st.CurrentBalance), st.Currency)
				if !st.DisplayDue {
					fmt.Fprintln(out, "Statement not generated yet for this cycle.")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date YYYY-MM-DD (default today)")
	return cmd
}

func newCardRepayCommand(opts *rootOptions) *cobra.Command {
	var amount, from, date, desc string
	var fromAdvance bool
	var allocs []string

	cmd := &cobra.Command{
		Use:   "repay <card-id>",
		Short: "Repay a card from an account or from its advance balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (from == "") == !fromAdvance {
				return fmt.Errorf("exactly one of --from or --from-advance is required")
			}
			r := advance.Repayment{CardID: args[0], Description: desc}
			var err error
			if r.Amount, err = parseAmount("amount", amount); err != nil {
				return err
			}
			if r.Date, err = parseDay("date", date); err != nil {
				return err
			}
			if fromAdvance {
				r.Source = model.AdvanceSource{}
			} else {
				r.Source = model.AccountSource{AccountID: from}
			}
			for _, s := range allocs {
				ref, amt, ok := strings.Cut(s, "=")
				if !ok {
					return fmt.Errorf("invalid --alloc %q: expected reference=amount", s)
				}
				d, err := parseAmount("alloc", amt)
				if err != nil {
					return err
				}
				r.Allocations = append(r.Allocations, advance.Allocation{Reference: ref, Amount: d})
			}

			return opts.withApp(cmd, func(a *app) error {
				res, err := a.ledger.Repay(cmd.Context(), r)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recorded repayment %s of %s\n", res.Transaction.ID, money(res.Transaction.Amount))
				if res.Allocation.AdvanceCreated.IsPositive() {
					fmt.Fprintf(out, "Advance created:  %s\n", money(res.Allocation.AdvanceCreated))
				}
				if res.Allocation.AdvanceConsumed.IsPositive() {
					fmt.Fprintf(out, "Advance consumed: %s\n", money(res.Allocation.AdvanceConsumed))
				}
				fmt.Fprintf(out, "Advance balance:  %s\n", money(res.AdvanceBalance))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "repayment amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&from, "from", "", "funding cash or bank account ID")
	cmd.Flags().BoolVar(&fromAdvance, "from-advance", false, "settle from the card's advance balance")
	cmd.Flags().StringArrayVar(&allocs, "alloc", nil, "allocate part of the repayment, as reference=amount (repeatable)")
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	return cmd
}

func newCardEMICommand(opts *rootOptions) *cobra.Command {
	emiCmd := &cobra.Command{
		Use:   "emi",
		Short: "Convert card purchases to installments",
	}
	emiCmd.AddCommand(
		newEMIConvertCommand(opts),
		newEMIListCommand(opts),
		newEMITransitionCommand(opts, "pay", "Mark the next installment paid", (*ledger.Service).PayInstallment),
		newEMITransitionCommand(opts, "unpay", "Reverse the last paid installment", (*ledger.Service).UnpayInstallment),
		newEMITransitionCommand(opts, "cancel", "Stop billing an EMI", (*ledger.Service).CancelEMI),
	)
	return emiCmd
}

func newEMIConvertCommand(opts *rootOptions) *cobra.Command {
	var months int
	var charges, firstDue string
	cmd := &cobra.Command{
		Use:   "convert <transaction-id>",
		Short: "Convert a card purchase into monthly installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				p := ledger.ConvertParams{TransactionID: args[0], Months: months}
				var err error
				if p.BankCharges, err = parseAmount("charges", charges); err != nil {
					return err
				}
				if firstDue != "" {
					if p.FirstDueDate, err = parseDay("first-due", firstDue); err != nil {
						return err
					}
				}
				e, err := a.ledger.ConvertToEMI(cmd.Context(), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created EMI %s: %d x %s from %s\n",
					e.ID, e.EMIMonths, money(e.MonthlyEMI), e.FirstDueDate.Format(model.DateFormat))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&months, "months", 0, "number of installments (required)")
	_ = cmd.MarkFlagRequired("months")
	cmd.Flags().StringVar(&charges, "charges", "", "bank processing charges")
	cmd.Flags().StringVar(&firstDue, "first-due", "", "first installment date YYYY-MM-DD (default next statement)")
	return cmd
}

func newEMIListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <card-id>",
		Short: "List a card's EMIs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				emis, err := a.ledger.EMIs(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTRANSACTION\tTOTAL\tMONTHLY\tREMAINING\tOUTSTANDING\tNEXT DUE\tSTATUS")
				for _, e := range emis {
					next := "-"
					if due, ok := installment.NextDueDate(e); ok {
						next = due.Format(model.DateFormat)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\t%s\n",
						e.ID, e.TransactionID, money(e.TotalAmount), money(e.MonthlyEMI), e.RemainingInstallments, e.EMIMonths,
						money(installment.Outstanding(e)), next, e.Status)
				}
				return w.Flush()
			})
		},
	}
}

type emiTransition func(*ledger.Service, context.Context, string) (model.EMITransaction, error)

func newEMITransitionCommand(opts *rootOptions, use, short string, step emiTransition) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <emi-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				e, err := step(a.ledger, cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "EMI %s: %d of %d remaining, %s\n", e.ID, e.RemainingInstallments, e.EMIMonths, e.Status)
				return nil
			})
		},
	}
}
