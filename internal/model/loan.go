package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterestRate is one dated entry in a loan's rate history.
type InterestRate struct {
	ID            string
	AccountID     string
	Rate          decimal.Decimal // annual percent
	EffectiveDate time.Time
}

// LoanEMIPayment is one computed row of a loan's payment history.
type LoanEMIPayment struct {
	ID                   string
	AccountID            string
	TransactionID        string
	PaymentNumber        int // 1-based, gapless
	PaymentDate          time.Time
	EMIAmount            decimal.Decimal
	PrincipalComponent   decimal.Decimal
	InterestComponent    decimal.Decimal
	OutstandingPrincipal decimal.Decimal // after this payment
	InterestRate         decimal.Decimal
}
