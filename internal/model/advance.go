package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdvanceKind is the type of an advance-balance ledger event.
type AdvanceKind string

const (
	AdvanceCreated  AdvanceKind = "created"
	AdvanceConsumed AdvanceKind = "consumed"
)

// AdvanceEvent is an append-only entry in a card's advance sub-ledger.
type AdvanceEvent struct {
	ID            string
	CardID        string
	TransactionID string
	Kind          AdvanceKind
	Amount        decimal.Decimal // always positive
	Date          time.Time
}

// PaymentSource funds a credit card repayment.
type PaymentSource interface {
	isPaymentSource()
}

// AccountSource draws the repayment from a cash or bank account.
type AccountSource struct {
	AccountID string
}

// AdvanceSource settles the repayment from the card's advance balance.
type AdvanceSource struct{}

func (AccountSource) isPaymentSource() {}
func (AdvanceSource) isPaymentSource() {}
