package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/statement"
)

// CardStatement is a computed statement with its minimum due.
type CardStatement struct {
	statement.Statement
	Currency   string
	MinimumDue decimal.Decimal
}

// CardStatement computes the statement of a card as of asOf.
func (s *Service) CardStatement(ctx context.Context, cardID string, asOf time.Time) (CardStatement, error) {
	st, err := statement.Load(ctx, s.store, cardID, asOf)
	if err != nil {
		return CardStatement{}, err
	}
	card, err := s.store.GetAccount(ctx, cardID)
	if err != nil {
		return CardStatement{}, err
	}
	return CardStatement{
		Statement:  st,
		Currency:   card.Currency,
		MinimumDue: statement.MinimumDue(st.NetStatementAmount, card.Currency, s.opts.MinimumDue),
	}, nil
}
