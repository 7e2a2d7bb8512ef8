package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/ledgerly/internal/id"
	"github.com/cleared-dev/ledgerly/internal/loan"
	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/rates"
	"github.com/cleared-dev/ledgerly/internal/store"
)

// AddRateParams holds parameters for recording a loan rate change.
type AddRateParams struct {
	AccountID     string
	Rate          decimal.Decimal // annual percent
	EffectiveDate time.Time
}

// AddInterestRate appends a rate to a loan's history and regenerates its
// payment breakdown so past payments use the rate in force on their dates.
func (s *Service) AddInterestRate(ctx context.Context, p AddRateParams) (model.InterestRate, error) {
	var errs model.ValidationErrors
	if p.Rate.IsNegative() {
		errs = append(errs, model.ValidationError{Field: "rate", Reason: "must not be negative"})
	}
	if p.EffectiveDate.IsZero() {
		errs = append(errs, model.ValidationError{Field: "effective_date", Reason: "required"})
	}
	if err := errs.Err(); err != nil {
		return model.InterestRate{}, err
	}

	r := model.InterestRate{
		ID:            s.newID(id.Rate),
		AccountID:     p.AccountID,
		Rate:          p.Rate,
		EffectiveDate: model.DateOf(p.EffectiveDate),
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, st store.Store) error {
		acct, err := st.GetAccount(ctx, p.AccountID)
		if err != nil {
			return err
		}
		if acct.Type != model.AccountTypeLoan {
			return model.ValidationError{Field: "account_id", Reason: fmt.Sprintf("account %s is %s, not a loan", acct.ID, acct.Type)}
		}
		if err := st.InsertInterestRate(ctx, r); err != nil {
			return fmt.Errorf("inserting interest rate: %w", err)
		}
		return regenerateLoans(ctx, st, s.newID, acct.ID)
	})
	if err != nil {
		return model.InterestRate{}, err
	}
	s.log.WithFields(logrus.Fields{
		"account_id": r.AccountID,
		"rate":       r.Rate.String(),
		"effective":  r.EffectiveDate.Format(model.DateFormat),
	}).Info("interest rate added")
	return r, nil
}

// LoanStatus summarises a loan as of a date.
type LoanStatus struct {
	Account         model.Account
	Summary         loan.Summary
	Rate            decimal.Decimal // in force on AsOf
	EMI             decimal.Decimal // over the remaining principal and tenure
	RemainingMonths int
	AccruedInterest decimal.Decimal // since the last payment
	AsOf            time.Time
}

// LoanStatus returns payment totals, the current EMI and the interest
// accrued since the last payment.
func (s *Service) LoanStatus(ctx context.Context, loanID string, asOf time.Time) (LoanStatus, error) {
	acct, history, err := s.loanInputs(ctx, loanID)
	if err != nil {
		return LoanStatus{}, err
	}
	payments, err := s.store.ListLoanPayments(ctx, loanID)
	if err != nil {
		return LoanStatus{}, fmt.Errorf("listing loan payments: %w", err)
	}

	asOf = model.DateOf(asOf)
	st := LoanStatus{
		Account: acct,
		Summary: loan.Summarize(acct.Principal, payments),
		Rate:    rates.Effective(history, asOf, acct.CurrentRate),
		AsOf:    asOf,
	}
	st.RemainingMonths = acct.TenureMonths - st.Summary.Count
	if st.Summary.Outstanding.IsPositive() && st.RemainingMonths > 0 {
		st.EMI, err = loan.EMI(st.Summary.Outstanding, st.Rate, st.RemainingMonths)
		if err != nil {
			return LoanStatus{}, err
		}
	}
	st.AccruedInterest = loan.AccruedInterest(loan.AccrualParams{
		Since:        loan.LastPaymentDate(acct.StartDate, payments),
		AsOf:         asOf,
		Outstanding:  st.Summary.Outstanding,
		History:      history,
		FallbackRate: acct.CurrentRate,
	})
	return st, nil
}

// LoanSchedule returns the recorded payment breakdown of a loan.
func (s *Service) LoanSchedule(ctx context.Context, loanID string) ([]model.LoanEMIPayment, error) {
	if _, _, err := s.loanInputs(ctx, loanID); err != nil {
		return nil, err
	}
	payments, err := s.store.ListLoanPayments(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("listing loan payments: %w", err)
	}
	return payments, nil
}

// LoanProjection returns the full expected schedule of a loan from its
// terms and rate history.
func (s *Service) LoanProjection(ctx context.Context, loanID string) ([]model.LoanEMIPayment, error) {
	acct, history, err := s.loanInputs(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return loan.ProjectSchedule(loan.ProjectionParams{
		AccountID:    acct.ID,
		Principal:    acct.Principal,
		TenureMonths: acct.TenureMonths,
		StartDate:    acct.StartDate,
		History:      history,
		FallbackRate: acct.CurrentRate,
		DueDay:       acct.DueDay,
	})
}

func (s *Service) loanInputs(ctx context.Context, loanID string) (model.Account, []model.InterestRate, error) {
	acct, err := s.store.GetAccount(ctx, loanID)
	if err != nil {
		return model.Account{}, nil, err
	}
	if acct.Type != model.AccountTypeLoan {
		return model.Account{}, nil, model.ValidationError{Field: "account_id", Reason: fmt.Sprintf("account %s is %s, not a loan", acct.ID, acct.Type)}
	}
	history, err := s.store.ListInterestRates(ctx, loanID)
	if err != nil {
		return model.Account{}, nil, fmt.Errorf("listing interest rates: %w", err)
	}
	return acct, history, nil
}

// loanIDs returns the loan accounts whose schedules txs affect.
func loanIDs(txs ...model.Transaction) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tx := range txs {
		if tx.Type != model.TxLoanPayment || tx.ToAccountID == "" || seen[tx.ToAccountID] {
			continue
		}
		seen[tx.ToAccountID] = true
		out = append(out, tx.ToAccountID)
	}
	return out
}

// regenerateLoans rebuilds the payment rows of each loan from all of its
// loan_payment transactions.
func regenerateLoans(ctx context.Context, st store.Store, newID func(string) string, loanIDs ...string) error {
	for _, loanID := range loanIDs {
		acct, err := st.GetAccount(ctx, loanID)
		if err != nil {
			return err
		}
		if acct.Type != model.AccountTypeLoan || !acct.Principal.IsPositive() {
			continue
		}
		txs, err := st.ListTransactions(ctx, model.TransactionFilter{AccountID: loanID, Type: model.TxLoanPayment})
		if err != nil {
			return fmt.Errorf("listing loan payments: %w", err)
		}
		history, err := st.ListInterestRates(ctx, loanID)
		if err != nil {
			return fmt.Errorf("listing interest rates: %w", err)
		}

		var payments []loan.Payment
		for _, tx := range txs {
			if tx.ToAccountID == loanID {
				payments = append(payments, loan.Payment{TransactionID: tx.ID, Date: tx.Date, Amount: tx.Amount})
			}
		}
		rows, err := loan.ScheduleBreakdown(loan.ScheduleParams{
			AccountID:        loanID,
			StartDate:        acct.StartDate,
			OpeningPrincipal: acct.Principal,
			Payments:         payments,
			History:          history,
			FallbackRate:     acct.CurrentRate,
			DueDay:           acct.DueDay,
		})
		if err != nil {
			return fmt.Errorf("loan %s: %w", loanID, err)
		}
		if err := loan.ValidateSchedule(rows); err != nil {
			return fmt.Errorf("loan %s: %w", loanID, err)
		}
		for i := range rows {
			rows[i].ID = newID(id.LoanPayment)
		}
		if err := st.ReplaceLoanPayments(ctx, loanID, rows); err != nil {
			return fmt.Errorf("replacing loan payments: %w", err)
		}
	}
	return nil
}
