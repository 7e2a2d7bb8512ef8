package sqlstore

import (
	"context"
	"fmt"

	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/store"
)

// ListInterestRates returns a loan's rate history ordered by effective date.
func (s *Store) ListInterestRates(ctx context.Context, accountID string) ([]model.InterestRate, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, account_id, rate, effective_date FROM interest_rates
		WHERE account_id = ? ORDER BY effective_date, rowid`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing interest rates: %w", err)
	}
	defer rows.Close()

	var out []model.InterestRate
	for rows.Next() {
		var r model.InterestRate
		var rate, date string
		if err := rows.Scan(&r.ID, &r.AccountID, &rate, &date); err != nil {
			return nil, fmt.Errorf("scanning interest rate: %w", err)
		}
		if r.Rate, err = parseRate(rate); err != nil {
			return nil, err
		}
		if r.EffectiveDate, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertInterestRate adds one entry to a loan's rate history.
func (s *Store) InsertInterestRate(ctx context.Context, r model.InterestRate) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO interest_rates (id, account_id, rate, effective_date) VALUES (?, ?, ?, ?)`,
		r.ID, r.AccountID, r.Rate.String(), formatDate(r.EffectiveDate))
	if err != nil {
		return fmt.Errorf("inserting interest rate %s: %w", r.ID, err)
	}
	return nil
}

// ListLoanPayments returns a loan's payment rows ordered by payment number.
func (s *Store) ListLoanPayments(ctx context.Context, accountID string) ([]model.LoanEMIPayment, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, account_id, transaction_id, payment_number, payment_date, emi_cents,
		principal_cents, interest_cents, outstanding_cents, interest_rate
		FROM loan_emi_payments WHERE account_id = ? ORDER BY payment_number`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing loan payments: %w", err)
	}
	defer rows.Close()

	var out []model.LoanEMIPayment
	for rows.Next() {
		var (
			p                                     model.LoanEMIPayment
			date, rate                            string
			emi, principal, interest, outstanding int64
		)
		if err := rows.Scan(&p.ID, &p.AccountID, &p.TransactionID, &p.PaymentNumber, &date,
			&emi, &principal, &interest, &outstanding, &rate); err != nil {
			return nil, fmt.Errorf("scanning loan payment: %w", err)
		}
		p.EMIAmount = fromCents(emi)
		p.PrincipalComponent = fromCents(principal)
		p.InterestComponent = fromCents(interest)
		p.OutstandingPrincipal = fromCents(outstanding)
		if p.PaymentDate, err = parseDate(date); err != nil {
			return nil, err
		}
		if p.InterestRate, err = parseRate(rate); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceLoanPayments opens its own unit of work unless already inside one.
func (s *Store) ReplaceLoanPayments(ctx context.Context, accountID string, payments []model.LoanEMIPayment) error {
	if !s.inTx {
		return s.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
			return tx.ReplaceLoanPayments(ctx, accountID, payments)
		})
	}

	if _, err := s.conn.ExecContext(ctx, `DELETE FROM loan_emi_payments WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("clearing loan payments of %s: %w", accountID, err)
	}
	for _, p := range payments {
		var c cents
		emi := c.of("emi_amount", p.EMIAmount)
		principal := c.of("principal_component", p.PrincipalComponent)
		interest := c.of("interest_component", p.InterestComponent)
		outstanding := c.of("outstanding_principal", p.OutstandingPrincipal)
		if c.err != nil {
			return c.err
		}
		_, err := s.conn.ExecContext(ctx, `INSERT INTO loan_emi_payments (id, account_id, transaction_id,
			payment_number, payment_date, emi_cents, principal_cents, interest_cents, outstanding_cents, interest_rate)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, accountID, p.TransactionID, p.PaymentNumber, formatDate(p.PaymentDate),
			emi, principal, interest, outstanding, p.InterestRate.String())
		if err != nil {
			return fmt.Errorf("inserting loan payment %d: %w", p.PaymentNumber, err)
		}
	}
	return nil
}
