// Package advance keeps a credit card's advance balance as an append-only
// ledger of creation and consumption events.
package advance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

// Balance returns Σcreated − Σconsumed over events.
func Balance(events []model.AdvanceEvent) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range events {
		switch ev.Kind {
		case model.AdvanceCreated:
			total = total.Add(ev.Amount)
		case model.AdvanceConsumed:
			total = total.Sub(ev.Amount)
		}
	}
	return total
}

// Allocation applies part of a repayment to one statement line.
type Allocation struct {
	Reference string
	Amount    decimal.Decimal
}

// Repayment is a credit card repayment request.
type Repayment struct {
	CardID      string
	Amount      decimal.Decimal
	Date        time.Time
	Source      model.PaymentSource
	Allocations []Allocation
	Description string
}

// Result is the advance movement caused by one repayment.
type Result struct {
	Allocated       decimal.Decimal
	AdvanceCreated  decimal.Decimal
	AdvanceConsumed decimal.Decimal
}

// Net returns the advance balance after applying r to available.
func (r Result) Net(available decimal.Decimal) decimal.Decimal {
	return available.Add(r.AdvanceCreated).Sub(r.AdvanceConsumed)
}

// Allocate works out how repayment r moves the advance balance, given the
// currently available advance.
//
// An account-funded repayment with allocations creates an advance for the
// amount left over after them; without allocations the whole amount settles
// the card balance directly. An advance-funded repayment consumes its full
// amount and must not exceed available.
func Allocate(r Repayment, available decimal.Decimal) (Result, error) {
	var errs model.ValidationErrors
	if r.CardID == "" {
		errs = append(errs, model.ValidationError{Field: "card_id", Reason: "required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, model.ValidationError{Field: "amount", Reason: "must be positive"})
	}

	allocated := decimal.Zero
	for _, a := range r.Allocations {
		if !a.Amount.IsPositive() {
			errs = append(errs, model.ValidationError{Field: "allocation", Reason: "amount for " + a.Reference + " must be positive"})
			continue
		}
		allocated = allocated.Add(a.Amount)
	}
	if allocated.GreaterThan(r.Amount) {
		errs = append(errs, model.ValidationError{
			Field:  "allocation",
			Reason: "allocated " + allocated.StringFixed(2) + " exceeds repayment " + r.Amount.StringFixed(2),
		})
	}

	var res Result
	switch src := r.Source.(type) {
	case model.AccountSource:
		if src.AccountID == "" {
			errs = append(errs, model.ValidationError{Field: "source", Reason: "funding account required"})
		}
		if len(r.Allocations) == 0 {
			res.Allocated = r.Amount
		} else {
			res.Allocated = allocated
			res.AdvanceCreated = r.Amount.Sub(allocated)
		}
	case model.AdvanceSource:
		if r.Amount.GreaterThan(available) {
			errs = append(errs, model.ValidationError{
				Field:  "source",
				Reason: "advance balance " + available.StringFixed(2) + " does not cover " + r.Amount.StringFixed(2),
			})
		}
		res.Allocated = r.Amount
		res.AdvanceConsumed = r.Amount
	default:
		errs = append(errs, model.ValidationError{Field: "source", Reason: "payment source required"})
	}

	if err := errs.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Events returns the ledger events recording res for transaction txID.
// newID supplies event IDs.
func Events(r Repayment, txID string, res Result, newID func() string) []model.AdvanceEvent {
	var out []model.AdvanceEvent
	if res.AdvanceCreated.IsPositive() {
		out = append(out, model.AdvanceEvent{
			ID:            newID(),
			CardID:        r.CardID,
			TransactionID: txID,
			Kind:          model.AdvanceCreated,
			Amount:        res.AdvanceCreated,
			Date:          model.DateOf(r.Date),
		})
	}
	if res.AdvanceConsumed.IsPositive() {
		out = append(out, model.AdvanceEvent{
			ID:            newID(),
			CardID:        r.CardID,
			TransactionID: txID,
			Kind:          model.AdvanceConsumed,
			Amount:        res.AdvanceConsumed,
			Date:          model.DateOf(r.Date),
		})
	}
	return out
}
