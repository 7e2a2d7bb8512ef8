package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/ledgerly/internal/billing"
	"github.com/cleared-dev/ledgerly/internal/id"
	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/store"
)

// AddAccountParams holds parameters for opening an account.
type AddAccountParams struct {
	OwnerID        string
	Name           string
	Type           model.AccountType
	Currency       string
	OpeningBalance decimal.Decimal
	CreditLimit    *decimal.Decimal

	// Loan terms.
	Principal    decimal.Decimal
	TenureMonths int
	StartDate    time.Time
	RateType     model.RateType
	Rate         decimal.Decimal

	StatementDay int
	DueDay       int
}

// AddAccount validates p and stores a new account. A loan's opening balance
// defaults to its principal and its rate becomes the first history entry.
func (s *Service) AddAccount(ctx context.Context, p AddAccountParams) (model.Account, error) {
	if err := validateAccount(p).Err(); err != nil {
		return model.Account{}, err
	}

	acct := model.Account{
		ID:           s.newID(id.Account),
		OwnerID:      p.OwnerID,
		Name:         strings.TrimSpace(p.Name),
		Type:         p.Type,
		Balance:      p.OpeningBalance,
		Currency:     strings.ToUpper(p.Currency),
		CreditLimit:  p.CreditLimit,
		StatementDay: p.StatementDay,
		DueDay:       p.DueDay,
	}
	if acct.Currency == "" {
		acct.Currency = strings.ToUpper(s.opts.DefaultCurrency)
	}
	if p.Type == model.AccountTypeLoan {
		acct.Principal = p.Principal
		acct.TenureMonths = p.TenureMonths
		acct.StartDate = model.DateOf(p.StartDate)
		acct.RateType = p.RateType
		if acct.RateType == "" {
			acct.RateType = model.RateTypeFixed
		}
		acct.CurrentRate = p.Rate
		if acct.Balance.IsZero() {
			acct.Balance = p.Principal
		}
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, st store.Store) error {
		if err := st.InsertAccount(ctx, acct); err != nil {
			return fmt.Errorf("inserting account: %w", err)
		}
		if acct.Type != model.AccountTypeLoan {
			return nil
		}
		return st.InsertInterestRate(ctx, model.InterestRate{
			ID:            s.newID(id.Rate),
			AccountID:     acct.ID,
			Rate:          acct.CurrentRate,
			EffectiveDate: acct.StartDate,
		})
	})
	if err != nil {
		return model.Account{}, err
	}
	s.log.WithFields(logrus.Fields{
		"account_id": acct.ID,
		"type":       acct.Type,
		"balance":    acct.Balance.StringFixed(2),
	}).Info("account added")
	return acct, nil
}

// Account returns one account.
func (s *Service) Account(ctx context.Context, accountID string) (model.Account, error) {
	return s.store.GetAccount(ctx, accountID)
}

// Accounts returns the accounts of ownerID, or every account when empty.
func (s *Service) Accounts(ctx context.Context, ownerID string) ([]model.Account, error) {
	accts, err := s.store.ListAccounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return accts, nil
}

func validateAccount(p AddAccountParams) model.ValidationErrors {
	var errs model.ValidationErrors
	addDay := func(field string, day int) {
		var ve model.ValidationError
		if err := billing.ValidateDay(field, day); errors.As(err, &ve) {
			errs = append(errs, ve)
		}
	}

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, model.ValidationError{Field: "name", Reason: "required"})
	}
	if !p.Type.Valid() {
		errs = append(errs, model.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown account type %q", p.Type)})
	}
	if !hasCents(p.OpeningBalance) {
		errs = append(errs, model.ValidationError{Field: "opening_balance", Reason: "more than 2 decimal places"})
	}
	if p.CreditLimit != nil {
		if p.Type != model.AccountTypeCreditCard {
			errs = append(errs, model.ValidationError{Field: "credit_limit", Reason: "only credit cards have a limit"})
		} else if p.CreditLimit.IsNegative() {
			errs = append(errs, model.ValidationError{Field: "credit_limit", Reason: "must not be negative"})
		}
	}

	switch p.Type {
	case model.AccountTypeCreditCard:
		addDay("statement_day", p.StatementDay)
		if p.DueDay != 0 {
			addDay("due_day", p.DueDay)
		}
	case model.AccountTypeLoan:
		if !p.Principal.IsPositive() {
			errs = append(errs, model.ValidationError{Field: "principal", Reason: "must be positive"})
		}
		if p.TenureMonths <= 0 {
			errs = append(errs, model.ValidationError{Field: "tenure_months", Reason: "must be positive"})
		}
		if p.StartDate.IsZero() {
			errs = append(errs, model.ValidationError{Field: "start_date", Reason: "required"})
		}
		if p.Rate.IsNegative() {
			errs = append(errs, model.ValidationError{Field: "rate", Reason: "must not be negative"})
		}
		if p.RateType != "" && p.RateType != model.RateTypeFixed && p.RateType != model.RateTypeFloating {
			errs = append(errs, model.ValidationError{Field: "rate_type", Reason: fmt.Sprintf("unknown rate type %q", p.RateType)})
		}
		if p.DueDay != 0 {
			addDay("due_day", p.DueDay)
		}
	default:
		if p.StatementDay != 0 || p.DueDay != 0 {
			errs = append(errs, model.ValidationError{Field: "statement_day", Reason: "billing days apply to credit cards and loans only"})
		}
	}
	return errs
}
