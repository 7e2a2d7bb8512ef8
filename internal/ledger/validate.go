package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Validate checks a transaction's shape without touching storage. Every
// problem is collected so callers can report them together.
func Validate(tx model.Transaction) model.ValidationErrors {
	var errs model.ValidationErrors

	if !tx.Type.Valid() {
		errs = append(errs, model.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", tx.Type)})
	}
	if !tx.Amount.IsPositive() {
		errs = append(errs, model.ValidationError{Field: "amount", Reason: "must be positive"})
	} else if !hasCents(tx.Amount) {
		errs = append(errs, model.ValidationError{Field: "amount", Reason: fmt.Sprintf("%s has more than 2 decimal places", tx.Amount)})
	}
	if tx.Date.IsZero() {
		errs = append(errs, model.ValidationError{Field: "date", Reason: "required"})
	}
	if tx.FromAdvance && tx.Type != model.TxCreditCardRepayment {
		errs = append(errs, model.ValidationError{Field: "from_advance", Reason: "only allowed on credit_card_repayment"})
	}
	if !tx.Type.Valid() {
		return errs
	}

	needFrom, needTo := model.LegsFor(tx)
	errs = append(errs, checkLeg(tx, model.LegFrom, needFrom)...)
	errs = append(errs, checkLeg(tx, model.LegTo, needTo)...)
	if tx.FromAccountID != "" && tx.FromAccountID == tx.ToAccountID {
		errs = append(errs, model.ValidationError{Field: "to_account", Reason: "must differ from from_account"})
	}
	return errs
}

func checkLeg(tx model.Transaction, leg model.Leg, needed bool) model.ValidationErrors {
	field := string(leg) + "_account"
	switch acct := tx.AccountID(leg); {
	case needed && acct == "":
		return model.ValidationErrors{{Field: field, Reason: "required for " + string(tx.Type)}}
	case !needed && acct != "":
		return model.ValidationErrors{{Field: field, Reason: "not allowed for " + string(tx.Type)}}
	}
	return nil
}

// hasCents reports whether d has at most two decimal places.
func hasCents(d decimal.Decimal) bool {
	scaled := d.Mul(hundred)
	return scaled.Equal(scaled.Truncate(0))
}
