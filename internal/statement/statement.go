// Package statement computes credit card statement amounts for a billing cycle.
package statement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/billing"
	"github.com/cleared-dev/ledgerly/internal/installment"
	"github.com/cleared-dev/ledgerly/internal/model"
)

// Input holds everything Compute needs for one card.
type Input struct {
	AccountID      string
	StatementDay   int
	DueDay         int // 0 when unknown
	Transactions   []model.Transaction
	EMIs           []model.EMITransaction
	ReferenceDate  time.Time
	CurrentBalance decimal.Decimal
	AdvanceBalance decimal.Decimal
}

// Statement is the computed view of one billing cycle.
type Statement struct {
	AccountID          string
	Period             billing.Period
	DueDate            time.Time // zero when DueDay is unknown
	DisplayDue         bool
	TransactionsAmount decimal.Decimal
	EMIsAmount         decimal.Decimal
	StatementAmount    decimal.Decimal
	NetStatementAmount decimal.Decimal
	CurrentBalance     decimal.Decimal
	AdvanceBalance     decimal.Decimal
	// Included lists the transactions counted in TransactionsAmount.
	Included []model.Transaction
}

// Compute aggregates the card's transactions and EMI installments falling in
// the billing period resolved for ReferenceDate.
//
// Transactions converted to EMIs are skipped because their installments are
// billed instead; every unpaid installment dated in the period is billed.
// A cancelled EMI bills nothing and its purchase counts again as a plain
// card spend. Repayments settle statements and are not part of them.
func Compute(in Input) (Statement, error) {
	period, err := billing.StatementPeriod(in.StatementDay, in.ReferenceDate)
	if err != nil {
		return Statement{}, err
	}

	converted := make(map[string]bool, len(in.EMIs))
	for _, e := range in.EMIs {
		if e.TransactionID != "" && e.Status != model.EMICancelled {
			converted[e.TransactionID] = true
		}
	}

	st := Statement{
		AccountID:      in.AccountID,
		Period:         period,
		DisplayDue:     period.IsAfterStatementDate,
		CurrentBalance: in.CurrentBalance,
		AdvanceBalance: in.AdvanceBalance,
	}
	if in.DueDay > 0 {
		st.DueDate, err = billing.DueDate(in.StatementDay, in.DueDay, in.ReferenceDate)
		if err != nil {
			return Statement{}, err
		}
	}

	for _, tx := range in.Transactions {
		if !tx.Touches(in.AccountID) || !period.Contains(tx.Date) {
			continue
		}
		if converted[tx.ID] || tx.Type == model.TxCreditCardRepayment {
			continue
		}
		delta, err := cardDelta(tx, in.AccountID)
		if err != nil {
			return Statement{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		st.TransactionsAmount = st.TransactionsAmount.Add(delta)
		st.Included = append(st.Included, tx)
	}

	for _, e := range in.EMIs {
		if e.AccountID != in.AccountID {
			continue
		}
		st.EMIsAmount = st.EMIsAmount.Add(installment.DueIn(e, period.Start, period.End))
	}

	st.StatementAmount = st.TransactionsAmount.Add(st.EMIsAmount)
	st.NetStatementAmount = decimal.Max(decimal.Zero, st.StatementAmount.Sub(in.AdvanceBalance))
	return st, nil
}

// cardDelta is the balance effect of tx on the card, summed over both legs so
// a transfer between two legs on the same card nets out.
func cardDelta(tx model.Transaction, cardID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, leg := range []model.Leg{model.LegFrom, model.LegTo} {
		if tx.AccountID(leg) != cardID {
			continue
		}
		d, err := model.Delta(tx.Type, leg, model.AccountTypeCreditCard, tx.Amount)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, nil
}
