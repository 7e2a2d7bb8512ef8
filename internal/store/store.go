// Package store defines the persistence contract the ledger engine runs on.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

// Reader is the read-only half of Store.
type Reader interface {
	GetAccount(ctx context.Context, id string) (model.Account, error)
	ListAccounts(ctx context.Context, ownerID string) ([]model.Account, error)
	GetTransaction(ctx context.Context, id string) (model.Transaction, error)
	ListTransactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error)
	ListInterestRates(ctx context.Context, accountID string) ([]model.InterestRate, error)
	ListLoanPayments(ctx context.Context, accountID string) ([]model.LoanEMIPayment, error)
	GetEMITransaction(ctx context.Context, id string) (model.EMITransaction, error)
	ListEMITransactions(ctx context.Context, accountID string) ([]model.EMITransaction, error)
	ListAdvanceEvents(ctx context.Context, cardID string) ([]model.AdvanceEvent, error)
}

// Store is the full persistence contract. Missing records are reported as
// model.NotFoundError.
type Store interface {
	Reader

	InsertAccount(ctx context.Context, a model.Account) error
	// AdjustBalance atomically adds delta to the stored balance and returns
	// the new balance.
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)

	InsertTransaction(ctx context.Context, tx model.Transaction) error
	UpdateTransaction(ctx context.Context, tx model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	InsertInterestRate(ctx context.Context, r model.InterestRate) error
	// ReplaceLoanPayments deletes every payment row of accountID and inserts payments.
	ReplaceLoanPayments(ctx context.Context, accountID string, payments []model.LoanEMIPayment) error

	InsertEMITransaction(ctx context.Context, e model.EMITransaction) error
	UpdateEMITransaction(ctx context.Context, e model.EMITransaction) error

	AppendAdvanceEvent(ctx context.Context, ev model.AdvanceEvent) error
	// DeleteAdvanceEvents removes the events recorded by transactionID.
	DeleteAdvanceEvents(ctx context.Context, transactionID string) error

	// WithinTx runs fn as one atomic unit. If fn returns an error nothing it
	// did through s is kept. Calling WithinTx on s nests into the same unit.
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
