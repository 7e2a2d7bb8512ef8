package statement

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

// Policy is the minimum-due rule: a percentage of the due amount with a
// per-currency floor, never more than the due amount itself.
type Policy struct {
	Percent decimal.Decimal
	Floor   decimal.Decimal
	// Floors overrides Floor by upper-case ISO currency code.
	Floors map[string]decimal.Decimal
}

// FloorFor returns the floor that applies to currency.
func (p Policy) FloorFor(currency string) decimal.Decimal {
	if f, ok := p.Floors[strings.ToUpper(currency)]; ok {
		return f
	}
	return p.Floor
}

// MinimumDue returns min(due, max(due*Percent/100, floor)), rounded to 2 places.
func MinimumDue(due decimal.Decimal, currency string, p Policy) decimal.Decimal {
	if !due.IsPositive() {
		return decimal.Zero
	}
	pct := due.Mul(p.Percent).Div(decimal.NewFromInt(100))
	return decimal.Min(due, decimal.Max(pct, p.FloorFor(currency))).Round(2)
}

// CheckCreditLimit returns a warning when projected exceeds the card's limit.
// Accounts without a limit never warn.
func CheckCreditLimit(acct model.Account, projected decimal.Decimal) *model.CreditLimitWarning {
	if acct.Type != model.AccountTypeCreditCard || !acct.HasCreditLimit() {
		return nil
	}
	if !projected.GreaterThan(*acct.CreditLimit) {
		return nil
	}
	return &model.CreditLimitWarning{AccountID: acct.ID, Limit: *acct.CreditLimit, Projected: projected}
}
