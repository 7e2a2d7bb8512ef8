package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerly/internal/cashflow"
	"github.com/cleared-dev/ledgerly/internal/model"
)

func newCashflowCommand(opts *rootOptions) *cobra.Command {
	var month, asOf, budget string
	cmd := &cobra.Command{
		Use:   "cashflow",
		Short: "Project the month's cash against card and loan dues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, m, err := parseMonth(month)
			if err != nil {
				return err
			}
			p := cashflow.MonthParams{Year: year, Month: m}
			if asOf != "" {
				if p.AsOf, err = parseDay("as-of", asOf); err != nil {
					return err
				}
			} else {
				_, end := cashflow.MonthRange(year, m)
				p.AsOf = end.AddDate(0, 0, -1)
			}
			if p.RemainingBudget, err = parseAmount("budget", budget); err != nil {
				return err
			}

			return opts.withApp(cmd, func(a *app) error {
				p.OwnerID = a.cfg.Owner.ID
				proj, err := a.cashflow.MonthProjection(cmd.Context(), p)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Cash flow %04d-%02d (statements as of %s)\n", proj.Year, int(proj.Month), p.AsOf.Format(model.DateFormat))
				fmt.Fprintf(out, "Opening balance:  %s\n", money(proj.OpeningBalance))
				fmt.Fprintf(out, "Income:           %s\n", money(proj.Income))
				fmt.Fprintf(out, "Expenses:         %s\n", money(proj.Expense))
				fmt.Fprintf(out, "Repayments:       %s\n", money(proj.Repayments))
				fmt.Fprintf(out, "Closing balance:  %s\n", money(proj.ClosingBalance))
				fmt.Fprintf(out, "Card dues:        %s\n", money(proj.CardDues))
				fmt.Fprintf(out, "Loan dues:        %s\n", money(proj.LoanDues))
				fmt.Fprintf(out, "Remaining budget: %s\n", money(proj.RemainingBudget))
				fmt.Fprintf(out, "Net available:    %s\n", money(proj.NetAvailable))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default current)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "statement reference date (default last day of month)")
	cmd.Flags().StringVar(&budget, "budget", "", "budget still to be spent this month")
	return cmd
}
