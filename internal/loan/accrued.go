package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/rates"
)

// AccrualParams holds the inputs of AccruedInterest.
type AccrualParams struct {
	Since        time.Time // last payment date, or loan start when unpaid
	AsOf         time.Time
	Outstanding  decimal.Decimal
	History      []model.InterestRate
	FallbackRate decimal.Decimal
}

// AccruedInterest sums simple daily interest (actual/365) on the outstanding
// principal across every rate segment between Since and AsOf.
func AccruedInterest(p AccrualParams) decimal.Decimal {
	if !p.Outstanding.IsPositive() {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, seg := range rates.Segments(p.History, p.Since, p.AsOf, p.FallbackRate) {
		days := decimal.NewFromInt(int64(seg.Days()))
		total = total.Add(p.Outstanding.Mul(seg.Rate).Div(hundred).Mul(days).Div(daysPerYear))
	}
	return total.Round(2)
}

// LastPaymentDate returns the latest payment date, or start when there are none.
func LastPaymentDate(start time.Time, payments []model.LoanEMIPayment) time.Time {
	last := start
	for _, p := range payments {
		if p.PaymentDate.After(last) {
			last = p.PaymentDate
		}
	}
	return last
}
