package cashflow

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/ledgerly/internal/loan"
	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/rates"
	"github.com/cleared-dev/ledgerly/internal/statement"
	"github.com/cleared-dev/ledgerly/internal/store"
)

// maxLoaders caps concurrent per-account store reads.
const maxLoaders = 4

// Service loads projection inputs from a store.
type Service struct {
	store store.Reader
	log   *logrus.Logger
}

// NewService creates a cash-flow Service.
func NewService(r store.Reader, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{store: r, log: log}
}

// MonthParams holds parameters for MonthProjection.
type MonthParams struct {
	OwnerID         string
	Year            int
	Month           time.Month
	AsOf            time.Time // statement reference date
	RemainingBudget decimal.Decimal
}

// MonthProjection loads the owner's accounts and all activity since the
// month began, then projects it. Card statements and loan dues are read concurrently.
func (s *Service) MonthProjection(ctx context.Context, p MonthParams) (Projection, error) {
	start, _ := MonthRange(p.Year, p.Month)
	accounts, err := s.store.ListAccounts(ctx, p.OwnerID)
	if err != nil {
		return Projection{}, fmt.Errorf("listing accounts: %w", err)
	}
	txs, err := s.store.ListTransactions(ctx, model.TransactionFilter{OwnerID: p.OwnerID, From: start})
	if err != nil {
		return Projection{}, fmt.Errorf("listing transactions: %w", err)
	}

	statements := make([]*statement.Statement, len(accounts))
	dues := make([]*LoanDue, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLoaders)
	for i, a := range accounts {
		i, a := i, a
		switch a.Type {
		case model.AccountTypeCreditCard:
			g.Go(func() error {
				st, err := statement.Load(gctx, s.store, a.ID, p.AsOf)
				if err != nil {
					return fmt.Errorf("statement for %s: %w", a.ID, err)
				}
				statements[i] = &st
				return nil
			})
		case model.AccountTypeLoan:
			g.Go(func() error {
				d, err := s.loanDue(gctx, a, p.Year, p.Month)
				if err != nil {
					return fmt.Errorf("loan due for %s: %w", a.ID, err)
				}
				dues[i] = d
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Projection{}, err
	}

	in := Input{
		Year:            p.Year,
		Month:           p.Month,
		Accounts:        accounts,
		Transactions:    txs,
		RemainingBudget: p.RemainingBudget,
	}
	for i := range accounts {
		if statements[i] != nil {
			in.CardStatements = append(in.CardStatements, *statements[i])
		}
		if dues[i] != nil {
			in.LoanDues = append(in.LoanDues, *dues[i])
		}
	}

	proj, err := Project(in)
	if err != nil {
		return Projection{}, err
	}
	s.log.WithFields(logrus.Fields{
		"owner_id":      p.OwnerID,
		"month":         start.Format("2006-01"),
		"net_available": proj.NetAvailable.StringFixed(2),
	}).Debug("cash flow projected")
	return proj, nil
}

// loanDue returns the installment the loan still expects in the month, or
// nil when it is settled, not yet started, or already paid this month.
func (s *Service) loanDue(ctx context.Context, a model.Account, year int, month time.Month) (*LoanDue, error) {
	payments, err := s.store.ListLoanPayments(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.ListInterestRates(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	day := a.DueDay
	if day == 0 {
		day = a.StartDate.Day()
	}
	due := model.ClampDay(year, month, day)
	if !due.After(a.StartDate) {
		return nil, nil
	}
	for _, pay := range payments {
		if pay.PaymentDate.Year() == year && pay.PaymentDate.Month() == month {
			return nil, nil
		}
	}

	sum := loan.Summarize(a.Principal, payments)
	remaining := a.TenureMonths - sum.Count
	if !sum.Outstanding.IsPositive() || remaining <= 0 {
		return nil, nil
	}
	emi, err := loan.EMI(sum.Outstanding, rates.Effective(history, due, a.CurrentRate), remaining)
	if err != nil {
		return nil, err
	}
	return &LoanDue{AccountID: a.ID, DueDate: due, Amount: emi}, nil
}
