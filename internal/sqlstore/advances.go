package sqlstore

import (
	"context"
	"fmt"

	"github.com/cleared-dev/ledgerly/internal/model"
)

// ListAdvanceEvents returns a card's advance ledger in insertion order.
func (s *Store) ListAdvanceEvents(ctx context.Context, cardID string) ([]model.AdvanceEvent, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, card_id, transaction_id, kind, amount_cents, date FROM advance_events
		WHERE card_id = ? ORDER BY rowid`, cardID)
	if err != nil {
		return nil, fmt.Errorf("listing advance events: %w", err)
	}
	defer rows.Close()

	var out []model.AdvanceEvent
	for rows.Next() {
		var (
			ev         model.AdvanceEvent
			kind, date string
			amount     int64
		)
		if err := rows.Scan(&ev.ID, &ev.CardID, &ev.TransactionID, &kind, &amount, &date); err != nil {
			return nil, fmt.Errorf("scanning advance event: %w", err)
		}
		ev.Kind = model.AdvanceKind(kind)
		ev.Amount = fromCents(amount)
		if ev.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// AppendAdvanceEvent adds one advance event.
func (s *Store) AppendAdvanceEvent(ctx context.Context, ev model.AdvanceEvent) error {
	amount, err := toCents("amount", ev.Amount)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO advance_events (id, card_id, transaction_id, kind, amount_cents, date) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.CardID, ev.TransactionID, string(ev.Kind), amount, formatDate(ev.Date))
	if err != nil {
		return fmt.Errorf("appending advance event %s: %w", ev.ID, err)
	}
	return nil
}

// DeleteAdvanceEvents removes the events recorded for a repayment transaction.
func (s *Store) DeleteAdvanceEvents(ctx context.Context, transactionID string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM advance_events WHERE transaction_id = ?`, transactionID); err != nil {
		return fmt.Errorf("deleting advance events of %s: %w", transactionID, err)
	}
	return nil
}
