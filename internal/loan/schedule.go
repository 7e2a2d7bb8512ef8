package loan

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/rates"
)

// Payment is one actual payment made against a loan.
type Payment struct {
	TransactionID string
	Date          time.Time
	Amount        decimal.Decimal
}

// ScheduleParams holds the inputs of ScheduleBreakdown.
type ScheduleParams struct {
	AccountID        string
	StartDate        time.Time
	OpeningPrincipal decimal.Decimal
	Payments         []Payment
	History          []model.InterestRate
	FallbackRate     decimal.Decimal
	DueDay           int // 0 keeps each payment's own date
}

// ScheduleBreakdown folds payments in date order over the opening principal,
// using the rate in force on each payment's date, and numbers them from 1.
func ScheduleBreakdown(p ScheduleParams) ([]model.LoanEMIPayment, error) {
	if !p.OpeningPrincipal.IsPositive() {
		return nil, model.ValidationError{Field: "principal", Reason: "must be positive"}
	}

	payments := make([]Payment, len(p.Payments))
	copy(payments, p.Payments)
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].Date.Before(payments[j].Date)
	})

	start := model.DateOf(p.StartDate)
	outstanding := p.OpeningPrincipal
	out := make([]model.LoanEMIPayment, 0, len(payments))
	for i, pay := range payments {
		paid := model.DateOf(pay.Date)
		if paid.Before(start) {
			return nil, model.ValidationError{
				Field:  "payment_date",
				Reason: "payment on " + paid.Format(model.DateFormat) + " precedes loan start " + start.Format(model.DateFormat),
			}
		}
		// The row is filed under the month's due day; interest follows the
		// day the money moved.
		date := paid
		if p.DueDay > 0 {
			date = model.ClampDay(paid.Year(), paid.Month(), p.DueDay)
		}

		rate := rates.Effective(p.History, paid, p.FallbackRate)
		split, err := Breakdown(outstanding, pay.Amount, rate)
		if err != nil {
			var ise model.InconsistentScheduleError
			if errors.As(err, &ise) {
				ise.PaymentNumber = i + 1
				return nil, ise
			}
			return nil, err
		}

		out = append(out, model.LoanEMIPayment{
			AccountID:            p.AccountID,
			TransactionID:        pay.TransactionID,
			PaymentNumber:        i + 1,
			PaymentDate:          date,
			EMIAmount:            pay.Amount,
			PrincipalComponent:   split.Principal,
			InterestComponent:    split.Interest,
			OutstandingPrincipal: split.NewOutstanding,
			InterestRate:         rate,
		})
		outstanding = split.NewOutstanding
	}
	return out, nil
}

// ProjectionParams holds the inputs of ProjectSchedule.
type ProjectionParams struct {
	AccountID    string
	Principal    decimal.Decimal
	TenureMonths int
	StartDate    time.Time
	History      []model.InterestRate
	FallbackRate decimal.Decimal
	DueDay       int // 0 uses the start date's day
}

// ProjectSchedule builds the full expected schedule of a loan. The EMI is
// recomputed over the remaining principal and tenure whenever the rate in
// force changes, and the last installment clears the rounding residue.
func ProjectSchedule(p ProjectionParams) ([]model.LoanEMIPayment, error) {
	if p.TenureMonths <= 0 {
		return nil, model.ValidationError{Field: "tenure_months", Reason: "must be positive"}
	}
	day := p.DueDay
	if day <= 0 {
		day = p.StartDate.Day()
	}

	outstanding := p.Principal
	var emi, lastRate decimal.Decimal
	out := make([]model.LoanEMIPayment, 0, p.TenureMonths)
	for k := 1; k <= p.TenureMonths && outstanding.IsPositive(); k++ {
		date := model.AddMonthsClamped(p.StartDate, k, day)
		rate := rates.Effective(p.History, date, p.FallbackRate)
		if k == 1 || !rate.Equal(lastRate) {
			var err error
			emi, err = EMI(outstanding, rate, p.TenureMonths-k+1)
			if err != nil {
				return nil, err
			}
			lastRate = rate
		}

		interest := MonthlyInterest(outstanding, rate)
		principal := emi.Sub(interest)
		if principal.IsNegative() {
			return nil, model.InconsistentScheduleError{PaymentNumber: k, Payment: emi, Interest: interest}
		}
		if k == p.TenureMonths || principal.GreaterThan(outstanding) {
			principal = outstanding
		}
		outstanding = outstanding.Sub(principal)

		out = append(out, model.LoanEMIPayment{
			AccountID:            p.AccountID,
			PaymentNumber:        k,
			PaymentDate:          date,
			EMIAmount:            principal.Add(interest),
			PrincipalComponent:   principal,
			InterestComponent:    interest,
			OutstandingPrincipal: outstanding,
			InterestRate:         rate,
		})
	}
	return out, nil
}

// Summary totals a payment history.
type Summary struct {
	Count          int
	TotalPaid      decimal.Decimal
	TotalPrincipal decimal.Decimal
	TotalInterest  decimal.Decimal
	Outstanding    decimal.Decimal
}

// Summarize totals payments; Outstanding is opening when there are none.
func Summarize(opening decimal.Decimal, payments []model.LoanEMIPayment) Summary {
	s := Summary{Count: len(payments), Outstanding: opening}
	for _, p := range payments {
		s.TotalPaid = s.TotalPaid.Add(p.EMIAmount)
		s.TotalPrincipal = s.TotalPrincipal.Add(p.PrincipalComponent)
		s.TotalInterest = s.TotalInterest.Add(p.InterestComponent)
		s.Outstanding = p.OutstandingPrincipal
	}
	return s
}
