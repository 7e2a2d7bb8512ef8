// Package installment implements the lifecycle of credit card purchases
// converted to equated monthly installments.
package installment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

// NewParams holds parameters for converting a card purchase to installments.
type NewParams struct {
	ID             string
	AccountID      string
	TransactionID  string
	PurchaseAmount decimal.Decimal
	BankCharges    decimal.Decimal
	Months         int
	FirstDueDate   time.Time
}

// New validates p and returns an active EMITransaction with
// TotalAmount = purchase + charges and MonthlyEMI = total / months rounded to
// cents. The last installment absorbs the rounding residue, see Amount.
func New(p NewParams) (model.EMITransaction, error) {
	var errs model.ValidationErrors
	if p.Months <= 0 {
		errs = append(errs, model.ValidationError{Field: "emi_months", Reason: "must be positive"})
	}
	if !p.PurchaseAmount.IsPositive() {
		errs = append(errs, model.ValidationError{Field: "purchase_amount", Reason: "must be positive"})
	}
	if p.BankCharges.IsNegative() {
		errs = append(errs, model.ValidationError{Field: "bank_charges", Reason: "must not be negative"})
	}
	if p.AccountID == "" {
		errs = append(errs, model.ValidationError{Field: "account_id", Reason: "required"})
	}
	if err := errs.Err(); err != nil {
		return model.EMITransaction{}, err
	}

	total := p.PurchaseAmount.Add(p.BankCharges)
	return model.EMITransaction{
		ID:                    p.ID,
		AccountID:             p.AccountID,
		TransactionID:         p.TransactionID,
		PurchaseAmount:        p.PurchaseAmount,
		BankCharges:           p.BankCharges,
		TotalAmount:           total,
		EMIMonths:             p.Months,
		MonthlyEMI:            total.Div(decimal.NewFromInt(int64(p.Months))).Round(2),
		RemainingInstallments: p.Months,
		FirstDueDate:          model.DateOf(p.FirstDueDate),
		Status:                model.EMIActive,
	}, nil
}

// Pay records one installment. Paying the last one completes the EMI.
func Pay(e model.EMITransaction) (model.EMITransaction, error) {
	if e.Status != model.EMIActive {
		return e, fmt.Errorf("paying installment on %s emi %s", e.Status, e.ID)
	}
	if e.RemainingInstallments <= 0 {
		return e, fmt.Errorf("emi %s has no remaining installments", e.ID)
	}
	e.RemainingInstallments--
	if e.RemainingInstallments == 0 {
		e.Status = model.EMICompleted
	}
	return e, nil
}

// Unpay reverses one installment payment, reactivating a completed EMI.
func Unpay(e model.EMITransaction) (model.EMITransaction, error) {
	if e.Status == model.EMICancelled {
		return e, fmt.Errorf("reversing installment on cancelled emi %s", e.ID)
	}
	if e.RemainingInstallments >= e.EMIMonths {
		return e, fmt.Errorf("emi %s has no paid installments", e.ID)
	}
	e.RemainingInstallments++
	e.Status = model.EMIActive
	return e, nil
}

// Cancel stops an active EMI.
func Cancel(e model.EMITransaction) (model.EMITransaction, error) {
	if e.Status != model.EMIActive {
		return e, fmt.Errorf("cancelling %s emi %s", e.Status, e.ID)
	}
	e.Status = model.EMICancelled
	return e, nil
}

// Paid returns the number of installments already paid.
func Paid(e model.EMITransaction) int {
	return e.EMIMonths - e.RemainingInstallments
}

// DueDate returns the due date of installment k, counted from zero.
func DueDate(e model.EMITransaction, k int) time.Time {
	first := e.FirstDueDate
	return model.AddMonthsClamped(first, k, first.Day())
}

// Amount returns the amount of installment k. Every installment is
// MonthlyEMI except the last, which makes the plan sum to TotalAmount.
func Amount(e model.EMITransaction, k int) decimal.Decimal {
	if k < 0 || k >= e.EMIMonths {
		return decimal.Zero
	}
	if k == e.EMIMonths-1 {
		return e.TotalAmount.Sub(e.MonthlyEMI.Mul(decimal.NewFromInt(int64(k))))
	}
	return e.MonthlyEMI
}

// DueIn returns the total of unpaid installments of an active EMI whose due
// date falls in [from, to).
func DueIn(e model.EMITransaction, from, to time.Time) decimal.Decimal {
	total := decimal.Zero
	if e.Status != model.EMIActive {
		return total
	}
	for k := Paid(e); k < e.EMIMonths; k++ {
		due := DueDate(e, k)
		if !due.Before(to) {
			break
		}
		if !due.Before(from) {
			total = total.Add(Amount(e, k))
		}
	}
	return total
}

// NextDueDate returns the due date of the next unpaid installment. ok is
// false when nothing is due.
func NextDueDate(e model.EMITransaction) (time.Time, bool) {
	if e.Status != model.EMIActive || e.RemainingInstallments <= 0 {
		return time.Time{}, false
	}
	return DueDate(e, Paid(e)), true
}

// Outstanding returns the amount still to be billed.
func Outstanding(e model.EMITransaction) decimal.Decimal {
	total := decimal.Zero
	if e.Status == model.EMICancelled {
		return total
	}
	for k := Paid(e); k < e.EMIMonths; k++ {
		total = total.Add(Amount(e, k))
	}
	return total
}
