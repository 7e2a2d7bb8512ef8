// Package loan implements EMI and amortization arithmetic over a loan's
// time-varying interest rate history.
package loan

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

var (
	twelveHundred = decimal.NewFromInt(1200)
	hundred       = decimal.NewFromInt(100)
	daysPerYear   = decimal.NewFromInt(365)
	tolerance     = decimal.New(1, -2)
)

// EMI returns the equated monthly installment that repays principal over
// months at annualRatePct on a reducing balance:
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1), r = annualRatePct / 12 / 100
//
// A zero rate degenerates to P / n. The result is rounded to 2 places.
func EMI(principal, annualRatePct decimal.Decimal, months int) (decimal.Decimal, error) {
	var errs model.ValidationErrors
	if months <= 0 {
		errs = append(errs, model.ValidationError{Field: "months", Reason: "must be positive"})
	}
	if !principal.IsPositive() {
		errs = append(errs, model.ValidationError{Field: "principal", Reason: "must be positive"})
	}
	if annualRatePct.IsNegative() {
		errs = append(errs, model.ValidationError{Field: "rate", Reason: "must not be negative"})
	}
	if err := errs.Err(); err != nil {
		return decimal.Zero, err
	}

	if annualRatePct.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(months))).Round(2), nil
	}

	// The power term goes through float64; monetary arithmetic stays decimal.
	r := annualRatePct.Div(twelveHundred)
	factor := decimal.NewFromFloat(math.Pow(1+r.InexactFloat64(), float64(months)))
	emi := principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
	return emi.Round(2), nil
}

// MonthlyInterest returns one month of interest on outstanding, rounded to 2 places.
func MonthlyInterest(outstanding, annualRatePct decimal.Decimal) decimal.Decimal {
	return outstanding.Mul(annualRatePct).Div(twelveHundred).Round(2)
}

// Split is the principal/interest division of one payment.
type Split struct {
	Principal      decimal.Decimal
	Interest       decimal.Decimal
	NewOutstanding decimal.Decimal
}

// Breakdown divides payment into interest on outstanding and principal.
// A payment that does not cover the interest is rejected with
// model.InconsistentScheduleError rather than clamped.
func Breakdown(outstanding, payment, annualRatePct decimal.Decimal) (Split, error) {
	if !payment.IsPositive() {
		return Split{}, model.ValidationError{Field: "payment", Reason: "must be positive"}
	}
	interest := MonthlyInterest(outstanding, annualRatePct)
	principal := payment.Sub(interest)
	if principal.IsNegative() {
		return Split{}, model.InconsistentScheduleError{Payment: payment, Interest: interest}
	}
	newOutstanding := outstanding.Sub(principal)
	if newOutstanding.IsNegative() {
		newOutstanding = decimal.Zero
	}
	return Split{Principal: principal, Interest: interest, NewOutstanding: newOutstanding}, nil
}

// ValidatePayment checks the invariants of a single computed payment row.
func ValidatePayment(p model.LoanEMIPayment) error {
	var errs model.ValidationErrors
	sum := p.PrincipalComponent.Add(p.InterestComponent)
	if sum.Sub(p.EMIAmount).Abs().GreaterThan(tolerance) {
		errs = append(errs, model.ValidationError{
			Field:  "emi_amount",
			Reason: "principal " + p.PrincipalComponent.StringFixed(2) + " + interest " + p.InterestComponent.StringFixed(2) + " != " + p.EMIAmount.StringFixed(2),
		})
	}
	if p.OutstandingPrincipal.IsNegative() {
		errs = append(errs, model.ValidationError{Field: "outstanding_principal", Reason: "must not be negative"})
	}
	return errs.Err()
}

// ValidateSchedule checks numbering and monotonic outstanding across rows.
func ValidateSchedule(payments []model.LoanEMIPayment) error {
	var errs model.ValidationErrors
	for i, p := range payments {
		if p.PaymentNumber != i+1 {
			errs = append(errs, model.ValidationError{Field: "payment_number", Reason: "schedule numbering has a gap"})
		}
		if err := ValidatePayment(p); err != nil {
			errs = append(errs, model.ValidationError{Field: "payment", Reason: err.Error()})
		}
		if i > 0 && p.OutstandingPrincipal.GreaterThan(payments[i-1].OutstandingPrincipal) {
			errs = append(errs, model.ValidationError{Field: "outstanding_principal", Reason: "increased between payments"})
		}
	}
	return errs.Err()
}
