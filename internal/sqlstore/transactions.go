package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/ledgerly/internal/model"
)

const transactionColumns = `id, owner_id, type, from_account_id, to_account_id, amount_cents, date, description, from_advance`

func scanTransaction(sc scanner) (model.Transaction, error) {
	var (
		tx      model.Transaction
		txType  string
		amount  int64
		date    string
		advance bool
	)
	if err := sc.Scan(&tx.ID, &tx.OwnerID, &txType, &tx.FromAccountID, &tx.ToAccountID, &amount, &date, &tx.Description, &advance); err != nil {
		return model.Transaction{}, err
	}
	tx.Type = model.TransactionType(txType)
	tx.Amount = fromCents(amount)
	tx.FromAdvance = advance
	var err error
	if tx.Date, err = parseDate(date); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}

// GetTransaction returns the transaction with id, or a NotFoundError.
func (s *Store) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, model.NotFoundError{Kind: "transaction", ID: id}
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("getting transaction %s: %w", id, err)
	}
	return tx, nil
}

// ListTransactions returns the transactions matching f ordered by date.
func (s *Store) ListTransactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if f.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.AccountID != "" {
		where = append(where, "(from_account_id = ? OR to_account_id = ?)")
		args = append(args, f.AccountID, f.AccountID)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, formatDate(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "date < ?")
		args = append(args, formatDate(f.To))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date, rowid`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// InsertTransaction stores a new transaction.
func (s *Store) InsertTransaction(ctx context.Context, tx model.Transaction) error {
	amount, err := toCents("amount", tx.Amount)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, string(tx.Type), tx.FromAccountID, tx.ToAccountID, amount,
		formatDate(tx.Date), tx.Description, tx.FromAdvance)
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", tx.ID, err)
	}
	return nil
}

// UpdateTransaction overwrites an existing transaction.
func (s *Store) UpdateTransaction(ctx context.Context, tx model.Transaction) error {
	amount, err := toCents("amount", tx.Amount)
	if err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx, `UPDATE transactions SET owner_id = ?, type = ?, from_account_id = ?,
		to_account_id = ?, amount_cents = ?, date = ?, description = ?, from_advance = ? WHERE id = ?`,
		tx.OwnerID, string(tx.Type), tx.FromAccountID, tx.ToAccountID, amount,
		formatDate(tx.Date), tx.Description, tx.FromAdvance, tx.ID)
	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", tx.ID, err)
	}
	return requireRow(res, "transaction", tx.ID)
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	return requireRow(res, "transaction", id)
}

// requireRow turns a zero-row write into a NotFoundError.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return model.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
