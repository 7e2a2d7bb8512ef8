package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerly/internal/ledger"
	"github.com/cleared-dev/ledgerly/internal/model"
)

func newLoanCommand(opts *rootOptions) *cobra.Command {
	loanCmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan rates, status and schedules",
	}
	loanCmd.AddCommand(
		newLoanRateCommand(opts),
		newLoanStatusCommand(opts),
		newLoanScheduleCommand(opts),
	)
	return loanCmd
}

func newLoanRateCommand(opts *rootOptions) *cobra.Command {
	var rate, effective string
	cmd := &cobra.Command{
		Use:   "rate <loan-id>",
		Short: "Record an interest rate change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				p := ledger.AddRateParams{AccountID: args[0]}
				var err error
				if p.Rate, err = parseAmount("rate", rate); err != nil {
					return err
				}
				if p.EffectiveDate, err = parseDay("effective", effective); err != nil {
					return err
				}
				r, err := a.ledger.AddInterestRate(cmd.Context(), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rate %s%% effective %s on %s\n", r.Rate.String(), r.EffectiveDate.Format(model.DateFormat), r.AccountID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "annual rate in percent (required)")
	_ = cmd.MarkFlagRequired("rate")
	cmd.Flags().StringVar(&effective, "effective", "", "effective date YYYY-MM-DD (default today)")
	return cmd
}

func newLoanStatusCommand(opts *rootOptions) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "status <loan-id>",
		Short: "Show outstanding principal, EMI and accrued interest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				date, err := parseDay("as-of", asOf)
				if err != nil {
					return err
				}
				st, err := a.ledger.LoanStatus(cmd.Context(), args[0], date)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Loan:             %s (%s)\n", st.Account.Name, st.Account.ID)
				fmt.Fprintf(out, "As of:            %s\n", st.AsOf.Format(model.DateFormat))
				fmt.Fprintf(out, "Rate:             %s%%\n", st.Rate.String())
				fmt.Fprintf(out, "Payments:         %d of %d\n", st.Summary.Count, st.Account.TenureMonths)
				fmt.Fprintf(out, "Principal paid:   %s\n", money(st.Summary.TotalPrincipal))
				fmt.Fprintf(out, "Interest paid:    %s\n", money(st.Summary.TotalInterest))
				fmt.Fprintf(out, "Outstanding:      %s\n", money(st.Summary.Outstanding))
				fmt.Fprintf(out, "EMI:              %s\n", money(st.EMI))
				fmt.Fprintf(out, "Accrued interest: %s\n", money(st.AccruedInterest))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date YYYY-MM-DD (default today)")
	return cmd
}

func newLoanScheduleCommand(opts *rootOptions) *cobra.Command {
	var projected bool
	cmd := &cobra.Command{
		Use:   "schedule <loan-id>",
		Short: "Show the recorded payment breakdown, or the projected schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				var rows []model.LoanEMIPayment
				var err error
				if projected {
					rows, err = a.ledger.LoanProjection(cmd.Context(), args[0])
				} else {
					rows, err = a.ledger.LoanSchedule(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				return printSchedule(cmd.OutOrStdout(), rows)
			})
		},
	}
	cmd.Flags().BoolVar(&projected, "projected", false, "project the full schedule from the loan terms")
	return cmd
}

func printSchedule(out io.Writer, rows []model.LoanEMIPayment) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tDATE\tEMI\tPRINCIPAL\tINTEREST\tOUTSTANDING\tRATE\t")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.PaymentNumber, r.PaymentDate.Format(model.DateFormat), money(r.EMIAmount),
			money(r.PrincipalComponent), money(r.InterestComponent), money(r.OutstandingPrincipal), r.InterestRate.String())
	}
	return w.Flush()
}
