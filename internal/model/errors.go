package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// ValidationError describes one rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationErrors collects every problem found before a mutation.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, ve := range v {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Err returns v as an error, or nil when empty.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsValidation reports whether err carries a validation failure.
func IsValidation(err error) bool {
	var one ValidationError
	var many ValidationErrors
	return errors.As(err, &one) || errors.As(err, &many)
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CreditLimitWarning is advisory: a projected card balance exceeds its limit.
type CreditLimitWarning struct {
	AccountID string
	Limit     decimal.Decimal
	Projected decimal.Decimal
}

func (w CreditLimitWarning) String() string {
	return fmt.Sprintf("account %s: projected balance %s exceeds credit limit %s",
		w.AccountID, w.Projected.StringFixed(2), w.Limit.StringFixed(2))
}

// CreditLimitError blocks a submission whose card balance would exceed the limit.
type CreditLimitError struct {
	Warning CreditLimitWarning
}

func (e CreditLimitError) Error() string {
	return "credit limit exceeded: " + e.Warning.String()
}

// InconsistentScheduleError reports a loan payment smaller than the interest
// accrued for its period, which would need a negative principal component.
type InconsistentScheduleError struct {
	PaymentNumber int
	Payment       decimal.Decimal
	Interest      decimal.Decimal
}

func (e InconsistentScheduleError) Error() string {
	return fmt.Sprintf("payment %d of %s does not cover interest %s",
		e.PaymentNumber, e.Payment.StringFixed(2), e.Interest.StringFixed(2))
}
