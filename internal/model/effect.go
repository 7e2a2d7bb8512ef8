package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Sign is the direction a leg moves an account balance.
type Sign int

const (
	Credit Sign = 1  // balance increases
	Debit  Sign = -1 // balance decreases
)

type effectKey struct {
	tx   TransactionType
	leg  Leg
	acct AccountType
}

// effects is the balance sign table. A missing key means the account type is
// not allowed on that leg.
var effects = map[effectKey]Sign{
	{TxIncome, LegTo, AccountTypeCash}:       Credit,
	{TxIncome, LegTo, AccountTypeBank}:       Credit,
	{TxIncome, LegTo, AccountTypeCreditCard}: Credit,

	{TxExpense, LegFrom, AccountTypeCash}:       Debit,
	{TxExpense, LegFrom, AccountTypeBank}:       Debit,
	{TxExpense, LegFrom, AccountTypeCreditCard}: Credit,

	{TxWithdrawal, LegFrom, AccountTypeCash}:       Debit,
	{TxWithdrawal, LegFrom, AccountTypeBank}:       Debit,
	{TxWithdrawal, LegFrom, AccountTypeCreditCard}: Credit,
	{TxWithdrawal, LegTo, AccountTypeCash}:         Credit,

	{TxTransfer, LegFrom, AccountTypeCash}:       Debit,
	{TxTransfer, LegFrom, AccountTypeBank}:       Debit,
	{TxTransfer, LegFrom, AccountTypeCreditCard}: Credit,
	{TxTransfer, LegTo, AccountTypeCash}:         Credit,
	{TxTransfer, LegTo, AccountTypeBank}:         Credit,
	{TxTransfer, LegTo, AccountTypeCreditCard}:   Debit,

	{TxLoanPayment, LegFrom, AccountTypeCash}:       Debit,
	{TxLoanPayment, LegFrom, AccountTypeBank}:       Debit,
	{TxLoanPayment, LegFrom, AccountTypeCreditCard}: Credit,
	{TxLoanPayment, LegTo, AccountTypeLoan}:         Debit,

	{TxCreditCardRepayment, LegFrom, AccountTypeCash}:     Debit,
	{TxCreditCardRepayment, LegFrom, AccountTypeBank}:     Debit,
	{TxCreditCardRepayment, LegTo, AccountTypeCreditCard}: Debit,
}

// Effect returns the sign a transaction of type tx applies to an account of
// type acct on the given leg.
func Effect(tx TransactionType, leg Leg, acct AccountType) (Sign, error) {
	s, ok := effects[effectKey{tx, leg, acct}]
	if !ok {
		return 0, ValidationError{
			Field:  string(leg) + "_account",
			Reason: fmt.Sprintf("%s account not allowed on %s leg of %s", acct, leg, tx),
		}
	}
	return s, nil
}

// Delta returns the signed balance change for amount on the given leg.
func Delta(tx TransactionType, leg Leg, acct AccountType, amount decimal.Decimal) (decimal.Decimal, error) {
	s, err := Effect(tx, leg, acct)
	if err != nil {
		return decimal.Zero, err
	}
	if s == Debit {
		return amount.Neg(), nil
	}
	return amount, nil
}

// LegsFor returns which legs a transaction type requires. Credit card
// repayments funded from the advance balance need no from leg.
func LegsFor(t Transaction) (from, to bool) {
	switch t.Type {
	case TxIncome:
		return false, true
	case TxExpense:
		return true, false
	case TxTransfer, TxWithdrawal, TxLoanPayment:
		return true, true
	case TxCreditCardRepayment:
		return !t.FromAdvance, true
	}
	return false, false
}
