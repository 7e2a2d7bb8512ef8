package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

const accountColumns = `id, owner_id, name, type, balance_cents, currency, credit_limit_cents,
	principal_cents, tenure_months, start_date, rate_type, current_rate, statement_day, due_day`

func scanAccount(sc scanner) (model.Account, error) {
	var (
		a                  model.Account
		balance, principal int64
		limit              sql.NullInt64
		startDate, rate    string
		acctType, rateType string
	)
	err := sc.Scan(&a.ID, &a.OwnerID, &a.Name, &acctType, &balance, &a.Currency, &limit,
		&principal, &a.TenureMonths, &startDate, &rateType, &rate, &a.StatementDay, &a.DueDay)
	if err != nil {
		return model.Account{}, err
	}
	a.Type = model.AccountType(acctType)
	a.RateType = model.RateType(rateType)
	a.Balance = fromCents(balance)
	a.Principal = fromCents(principal)
	a.CreditLimit = fromNullCents(limit)
	if a.StartDate, err = parseDate(startDate); err != nil {
		return model.Account{}, err
	}
	if a.CurrentRate, err = parseRate(rate); err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// GetAccount returns the account with id, or a NotFoundError.
func (s *Store) GetAccount(ctx context.Context, id string) (model.Account, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, model.NotFoundError{Kind: "account", ID: id}
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("getting account %s: %w", id, err)
	}
	return a, nil
}

// ListAccounts returns the owner's accounts, or all accounts when ownerID is empty.
func (s *Store) ListAccounts(ctx context.Context, ownerID string) ([]model.Account, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE ? = '' OR owner_id = ? ORDER BY rowid`, ownerID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// InsertAccount stores a new account.
func (s *Store) InsertAccount(ctx context.Context, a model.Account) error {
	var c cents
	balance := c.of("balance", a.Balance)
	principal := c.of("principal", a.Principal)
	if c.err != nil {
		return c.err
	}
	limit, err := nullCents("credit_limit", a.CreditLimit)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx, `INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Name, string(a.Type), balance, a.Currency, limit,
		principal, a.TenureMonths, formatDate(a.StartDate), string(a.RateType), a.CurrentRate.String(),
		a.StatementDay, a.DueDay)
	if err != nil {
		return fmt.Errorf("inserting account %s: %w", a.ID, err)
	}
	return nil
}

// AdjustBalance applies delta in a single UPDATE so concurrent writers never
// lose an increment.
func (s *Store) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	d, err := toCents("delta", delta)
	if err != nil {
		return decimal.Zero, err
	}
	var balance int64
	err = s.conn.QueryRowContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ? RETURNING balance_cents`, d, id).
		Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, model.NotFoundError{Kind: "account", ID: id}
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("adjusting balance of %s: %w", id, err)
	}
	return fromCents(balance), nil
}
