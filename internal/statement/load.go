package statement

import (
	"context"
	"fmt"
	"time"

	"github.com/cleared-dev/ledgerly/internal/advance"
	"github.com/cleared-dev/ledgerly/internal/billing"
	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/store"
)

// Load reads a card and its cycle inputs from r and computes the statement
// in force on asOf.
func Load(ctx context.Context, r store.Reader, cardID string, asOf time.Time) (Statement, error) {
	card, err := r.GetAccount(ctx, cardID)
	if err != nil {
		return Statement{}, err
	}
	if card.Type != model.AccountTypeCreditCard {
		return Statement{}, model.ValidationError{Field: "account_id", Reason: fmt.Sprintf("account %s is %s, not a credit card", card.ID, card.Type)}
	}
	period, err := billing.StatementPeriod(card.StatementDay, asOf)
	if err != nil {
		return Statement{}, err
	}

	txs, err := r.ListTransactions(ctx, model.TransactionFilter{AccountID: cardID, From: period.Start, To: period.End})
	if err != nil {
		return Statement{}, fmt.Errorf("listing transactions: %w", err)
	}
	emis, err := r.ListEMITransactions(ctx, cardID)
	if err != nil {
		return Statement{}, fmt.Errorf("listing emis: %w", err)
	}
	events, err := r.ListAdvanceEvents(ctx, cardID)
	if err != nil {
		return Statement{}, fmt.Errorf("listing advance events: %w", err)
	}

	return Compute(Input{
		AccountID:      cardID,
		StatementDay:   card.StatementDay,
		DueDay:         card.DueDay,
		Transactions:   txs,
		EMIs:           emis,
		ReferenceDate:  asOf,
		CurrentBalance: card.Balance,
		AdvanceBalance: advance.Balance(events),
	})
}
