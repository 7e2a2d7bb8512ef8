package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of ledger transaction kinds.
type TransactionType string

const (
	TxIncome              TransactionType = "income"
	TxExpense             TransactionType = "expense"
	TxTransfer            TransactionType = "transfer"
	TxWithdrawal          TransactionType = "withdrawal"
	TxLoanPayment         TransactionType = "loan_payment"
	TxCreditCardRepayment TransactionType = "credit_card_repayment"
)

// TransactionTypes lists every transaction type.
var TransactionTypes = []TransactionType{
	TxIncome, TxExpense, TxTransfer, TxWithdrawal, TxLoanPayment, TxCreditCardRepayment,
}

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	for _, known := range TransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Leg names one side of a transaction.
type Leg string

const (
	LegFrom Leg = "from"
	LegTo   Leg = "to"
)

// Transaction moves an unsigned Amount out of FromAccountID and/or into
// ToAccountID. Empty account IDs mean the leg is absent.
type Transaction struct {
	ID            string
	OwnerID       string
	Type          TransactionType
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
	// FromAdvance marks a credit card repayment settled from the card's
	// advance balance instead of a funding account.
	FromAdvance bool
}

// AccountID returns the account referenced by leg, or "".
func (t Transaction) AccountID(leg Leg) string {
	if leg == LegFrom {
		return t.FromAccountID
	}
	return t.ToAccountID
}

// Touches reports whether either leg references accountID.
func (t Transaction) Touches(accountID string) bool {
	return accountID != "" && (t.FromAccountID == accountID || t.ToAccountID == accountID)
}

// TransactionFilter narrows ListTransactions. Zero fields match everything.
type TransactionFilter struct {
	OwnerID   string
	AccountID string
	Type      TransactionType
	From      time.Time // inclusive
	To        time.Time // exclusive
}

// Match reports whether tx satisfies the filter.
func (f TransactionFilter) Match(tx Transaction) bool {
	if f.OwnerID != "" && tx.OwnerID != f.OwnerID {
		return false
	}
	if f.AccountID != "" && !tx.Touches(f.AccountID) {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !tx.Date.Before(f.To) {
		return false
	}
	return true
}
