package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies tracked accounts.
type AccountType string

const (
	AccountTypeCash       AccountType = "cash"
	AccountTypeBank       AccountType = "bank"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeLoan       AccountType = "loan"
)

// AccountTypes lists every account type in display order.
var AccountTypes = []AccountType{AccountTypeCash, AccountTypeBank, AccountTypeCreditCard, AccountTypeLoan}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeCreditCard, AccountTypeLoan:
		return true
	}
	return false
}

// IsLiability reports whether a positive balance means money owed.
func (t AccountType) IsLiability() bool {
	return t == AccountTypeCreditCard || t == AccountTypeLoan
}

// IsLiquid reports whether the account holds spendable funds (cash or bank).
func (t AccountType) IsLiquid() bool {
	return t == AccountTypeCash || t == AccountTypeBank
}

// RateType distinguishes fixed from floating loan rates.
type RateType string

const (
	RateTypeFixed    RateType = "fixed"
	RateTypeFloating RateType = "floating"
)

// Account is a cash, bank, credit card or loan account.
//
// Balance is asset-positive for cash/bank and liability-positive (amount owed)
// for credit_card/loan.
type Account struct {
	ID          string
	OwnerID     string
	Name        string
	Type        AccountType
	Balance     decimal.Decimal
	Currency    string
	CreditLimit *decimal.Decimal

	// Loan terms.
	Principal    decimal.Decimal
	TenureMonths int
	StartDate    time.Time
	RateType     RateType
	CurrentRate  decimal.Decimal // annual percent

	// Credit card billing cycle; DueDay is also used by loans.
	StatementDay int
	DueDay       int
}

// HasCreditLimit reports whether a positive credit limit is configured.
func (a Account) HasCreditLimit() bool {
	return a.CreditLimit != nil && a.CreditLimit.IsPositive()
}
