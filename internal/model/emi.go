package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EMIStatus is the lifecycle state of a card purchase converted to installments.
type EMIStatus string

const (
	EMIActive    EMIStatus = "active"
	EMICompleted EMIStatus = "completed"
	EMICancelled EMIStatus = "cancelled"
)

// EMITransaction is a credit card purchase converted to monthly installments.
// TransactionID links the original card transaction, which statements then
// exclude so the purchase is not counted twice.
type EMITransaction struct {
	ID                    string
	AccountID             string
	TransactionID         string
	PurchaseAmount        decimal.Decimal
	BankCharges           decimal.Decimal
	TotalAmount           decimal.Decimal
	EMIMonths             int
	MonthlyEMI            decimal.Decimal
	RemainingInstallments int
	FirstDueDate          time.Time
	Status                EMIStatus
}
