package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/ledgerly/internal/model"
)

const emiColumns = `id, account_id, transaction_id, purchase_cents, bank_charges_cents, total_cents,
	emi_months, monthly_emi_cents, remaining_installments, first_due_date, status`

func scanEMI(sc scanner) (model.EMITransaction, error) {
	var (
		e                               model.EMITransaction
		purchase, charges, total, month int64
		firstDue, status                string
	)
	err := sc.Scan(&e.ID, &e.AccountID, &e.TransactionID, &purchase, &charges, &total,
		&e.EMIMonths, &month, &e.RemainingInstallments, &firstDue, &status)
	if err != nil {
		return model.EMITransaction{}, err
	}
	e.PurchaseAmount = fromCents(purchase)
	e.BankCharges = fromCents(charges)
	e.TotalAmount = fromCents(total)
	e.MonthlyEMI = fromCents(month)
	e.Status = model.EMIStatus(status)
	if e.FirstDueDate, err = parseDate(firstDue); err != nil {
		return model.EMITransaction{}, err
	}
	return e, nil
}

// GetEMITransaction returns the EMI with id, or a NotFoundError.
func (s *Store) GetEMITransaction(ctx context.Context, id string) (model.EMITransaction, error) {
	e, err := scanEMI(s.conn.QueryRowContext(ctx, `SELECT `+emiColumns+` FROM emi_transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.EMITransaction{}, model.NotFoundError{Kind: "emi", ID: id}
	}
	if err != nil {
		return model.EMITransaction{}, fmt.Errorf("getting emi %s: %w", id, err)
	}
	return e, nil
}

// ListEMITransactions returns a card's EMIs, or every EMI when accountID is empty.
func (s *Store) ListEMITransactions(ctx context.Context, accountID string) ([]model.EMITransaction, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+emiColumns+` FROM emi_transactions WHERE ? = '' OR account_id = ? ORDER BY rowid`, accountID, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing emis: %w", err)
	}
	defer rows.Close()

	var out []model.EMITransaction
	for rows.Next() {
		e, err := scanEMI(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning emi: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func emiArgs(e model.EMITransaction) ([]any, error) {
	var c cents
	purchase := c.of("purchase_amount", e.PurchaseAmount)
	charges := c.of("bank_charges", e.BankCharges)
	total := c.of("total_amount", e.TotalAmount)
	monthly := c.of("monthly_emi", e.MonthlyEMI)
	if c.err != nil {
		return nil, c.err
	}
	return []any{e.AccountID, e.TransactionID, purchase, charges, total, e.EMIMonths, monthly,
		e.RemainingInstallments, formatDate(e.FirstDueDate), string(e.Status)}, nil
}

// InsertEMITransaction stores a new EMI.
func (s *Store) InsertEMITransaction(ctx context.Context, e model.EMITransaction) error {
	args, err := emiArgs(e)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `INSERT INTO emi_transactions (account_id, transaction_id, purchase_cents,
		bank_charges_cents, total_cents, emi_months, monthly_emi_cents, remaining_installments, first_due_date,
		status, id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, append(args, e.ID)...)
	if err != nil {
		return fmt.Errorf("inserting emi %s: %w", e.ID, err)
	}
	return nil
}

// UpdateEMITransaction overwrites an existing EMI.
func (s *Store) UpdateEMITransaction(ctx context.Context, e model.EMITransaction) error {
	args, err := emiArgs(e)
	if err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx, `UPDATE emi_transactions SET account_id = ?, transaction_id = ?,
		purchase_cents = ?, bank_charges_cents = ?, total_cents = ?, emi_months = ?, monthly_emi_cents = ?,
		remaining_installments = ?, first_due_date = ?, status = ? WHERE id = ?`, append(args, e.ID)...)
	if err != nil {
		return fmt.Errorf("updating emi %s: %w", e.ID, err)
	}
	return requireRow(res, "emi", e.ID)
}
