package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/ledgerly/internal/advance"
	"github.com/cleared-dev/ledgerly/internal/id"
	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/store"
)

// RepaymentResult is what Repay recorded.
type RepaymentResult struct {
	Transaction    model.Transaction
	Allocation     advance.Result
	AdvanceBalance decimal.Decimal
}

// Repay records a credit card repayment. An account-funded repayment debits
// the funding account and the card, and any amount beyond the allocations
// becomes advance balance. An advance-funded repayment only consumes advance.
func (s *Service) Repay(ctx context.Context, r advance.Repayment) (RepaymentResult, error) {
	tx := model.Transaction{
		ID:          s.newID(id.Transaction),
		Type:        model.TxCreditCardRepayment,
		ToAccountID: r.CardID,
		Amount:      r.Amount,
		Date:        model.DateOf(r.Date),
		Description: r.Description,
	}
	switch src := r.Source.(type) {
	case model.AccountSource:
		tx.FromAccountID = src.AccountID
	case model.AdvanceSource:
		tx.FromAdvance = true
	}

	var out RepaymentResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, st store.Store) error {
		card, err := st.GetAccount(ctx, r.CardID)
		if err != nil {
			return err
		}
		if card.Type != model.AccountTypeCreditCard {
			return model.ValidationError{Field: "card_id", Reason: fmt.Sprintf("account %s is %s, not a credit card", card.ID, card.Type)}
		}
		tx.OwnerID = card.OwnerID

		events, err := st.ListAdvanceEvents(ctx, r.CardID)
		if err != nil {
			return fmt.Errorf("listing advance events: %w", err)
		}
		available := advance.Balance(events)
		res, err := advance.Allocate(r, available)
		if err != nil {
			return err
		}
		if err := Validate(tx).Err(); err != nil {
			return err
		}
		if err := s.post(ctx, st, tx); err != nil {
			return err
		}
		for _, ev := range advance.Events(r, tx.ID, res, func() string { return s.newID(id.Advance) }) {
			if err := st.AppendAdvanceEvent(ctx, ev); err != nil {
				return fmt.Errorf("appending advance event: %w", err)
			}
		}
		out = RepaymentResult{Transaction: tx, Allocation: res, AdvanceBalance: res.Net(available)}
		return nil
	})
	if err != nil {
		return RepaymentResult{}, s.reject("repay", tx, err)
	}
	s.logTx(tx).WithFields(logrus.Fields{
		"advance_created":  out.Allocation.AdvanceCreated.StringFixed(2),
		"advance_consumed": out.Allocation.AdvanceConsumed.StringFixed(2),
	}).Info("repayment recorded")
	return out, nil
}

// AdvanceBalance returns the card's current advance balance.
func (s *Service) AdvanceBalance(ctx context.Context, cardID string) (decimal.Decimal, error) {
	events, err := s.store.ListAdvanceEvents(ctx, cardID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("listing advance events: %w", err)
	}
	return advance.Balance(events), nil
}

// dropAdvanceEvents removes the events a repayment recorded. It fails if the
// advance it created has since been spent.
func dropAdvanceEvents(ctx context.Context, st store.Store, tx model.Transaction) error {
	if err := st.DeleteAdvanceEvents(ctx, tx.ID); err != nil {
		return fmt.Errorf("deleting advance events: %w", err)
	}
	events, err := st.ListAdvanceEvents(ctx, tx.ToAccountID)
	if err != nil {
		return fmt.Errorf("listing advance events: %w", err)
	}
	if advance.Balance(events).IsNegative() {
		return model.ValidationError{Field: "id", Reason: "advance created by this repayment has already been consumed"}
	}
	return nil
}
