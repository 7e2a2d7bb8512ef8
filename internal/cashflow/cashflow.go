// Package cashflow projects a month's liquid balance against card and loan
// obligations.
package cashflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/statement"
)

// LoanDue is one loan installment expected in the month.
type LoanDue struct {
	AccountID string
	DueDate   time.Time
	Amount    decimal.Decimal
}

// Input holds everything Project aggregates.
type Input struct {
	Year  int
	Month time.Month
	// Accounts carry current balances.
	Accounts []model.Account
	// Transactions from the start of the month onward; earlier ones are
	// ignored.
	Transactions    []model.Transaction
	CardStatements  []statement.Statement
	LoanDues        []LoanDue
	RemainingBudget decimal.Decimal
}

// Projection is the month's cash position.
type Projection struct {
	Year  int
	Month time.Month

	OpeningBalance decimal.Decimal // cash and bank at the start of the month
	ClosingBalance decimal.Decimal // cash and bank at the end of the month

	Income     decimal.Decimal
	Expense    decimal.Decimal
	Repayments decimal.Decimal

	CardDues        decimal.Decimal
	LoanDues        decimal.Decimal
	RemainingBudget decimal.Decimal
	// NetAvailable is ClosingBalance less every outstanding obligation.
	NetAvailable decimal.Decimal
}

// MonthRange returns [first day of month, first day of next month).
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Project aggregates in. Current cash and bank balances are walked back
// through every later transaction to the month's closing balance, then
// through the month itself to its opening balance.
func Project(in Input) (Projection, error) {
	start, end := MonthRange(in.Year, in.Month)
	p := Projection{Year: in.Year, Month: in.Month, RemainingBudget: in.RemainingBudget}

	liquid := make(map[string]model.Account)
	current := decimal.Zero
	for _, a := range in.Accounts {
		if a.Type.IsLiquid() {
			liquid[a.ID] = a
			current = current.Add(a.Balance)
		}
	}

	monthDelta, laterDelta := decimal.Zero, decimal.Zero
	for _, tx := range in.Transactions {
		if tx.Date.Before(start) {
			continue
		}
		d, err := liquidDelta(tx, liquid)
		if err != nil {
			return Projection{}, err
		}
		if !tx.Date.Before(end) {
			laterDelta = laterDelta.Add(d)
			continue
		}
		monthDelta = monthDelta.Add(d)
		switch tx.Type {
		case model.TxIncome:
			p.Income = p.Income.Add(tx.Amount)
		case model.TxExpense:
			p.Expense = p.Expense.Add(tx.Amount)
		case model.TxLoanPayment, model.TxCreditCardRepayment:
			if !tx.FromAdvance {
				p.Repayments = p.Repayments.Add(tx.Amount)
			}
		}
	}
	p.ClosingBalance = current.Sub(laterDelta)
	p.OpeningBalance = p.ClosingBalance.Sub(monthDelta)

	for _, st := range in.CardStatements {
		if st.DisplayDue {
			p.CardDues = p.CardDues.Add(st.NetStatementAmount)
		}
	}
	for _, d := range in.LoanDues {
		p.LoanDues = p.LoanDues.Add(d.Amount)
	}

	p.NetAvailable = p.ClosingBalance.Sub(p.CardDues).Sub(p.LoanDues).Sub(p.RemainingBudget)
	return p, nil
}

// liquidDelta is the effect of tx on cash and bank balances. Repayments
// settled from a card advance move no money.
func liquidDelta(tx model.Transaction, liquid map[string]model.Account) (decimal.Decimal, error) {
	total := decimal.Zero
	if tx.FromAdvance {
		return total, nil
	}
	for _, leg := range []model.Leg{model.LegFrom, model.LegTo} {
		acct, ok := liquid[tx.AccountID(leg)]
		if !ok {
			continue
		}
		d, err := model.Delta(tx.Type, leg, acct.Type, tx.Amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		total = total.Add(d)
	}
	return total, nil
}
