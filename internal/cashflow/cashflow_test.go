package cashflow

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerly/internal/ledger"
	"github.com/cleared-dev/ledgerly/internal/memstore"
	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/statement"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProject(t *testing.T) {
	accounts := []model.Account{
		{ID: "bank", Type: model.AccountTypeBank, Balance: dec("1499")},
		{ID: "cash", Type: model.AccountTypeCash, Balance: dec("200")},
		{ID: "card", Type: model.AccountTypeCreditCard, Balance: dec("900")},
	}
	txs := []model.Transaction{
		{ID: "feb", Type: model.TxIncome, ToAccountID: "bank", Amount: dec("999"), Date: date(2025, 2, 28)},
		{ID: "t1", Type: model.TxIncome, ToAccountID: "bank", Amount: dec("1000"), Date: date(2025, 3, 1)},
		{ID: "t2", Type: model.TxExpense, FromAccountID: "bank", Amount: dec("300"), Date: date(2025, 3, 5)},
		{ID: "t3", Type: model.TxExpense, FromAccountID: "card", Amount: dec("100"), Date: date(2025, 3, 6)},
		{ID: "t4", Type: model.TxWithdrawal, FromAccountID: "bank", ToAccountID: "cash", Amount: dec("200"), Date: date(2025, 3, 7)},
		{ID: "t5", Type: model.TxCreditCardRepayment, FromAccountID: "bank", ToAccountID: "card", Amount: dec("400"), Date: date(2025, 3, 10)},
		{ID: "t6", Type: model.TxCreditCardRepayment, ToAccountID: "card", FromAdvance: true, Amount: dec("50"), Date: date(2025, 3, 11)},
		{ID: "apr", Type: model.TxExpense, FromAccountID: "bank", Amount: dec("1"), Date: date(2025, 4, 1)},
	}

	p, err := Project(Input{
		Year:         2025,
		Month:        time.March,
		Accounts:     accounts,
		Transactions: txs,
		CardStatements: []statement.Statement{
			{AccountID: "card", DisplayDue: true, NetStatementAmount: dec("500")},
			{AccountID: "other", DisplayDue: false, NetStatementAmount: dec("999")},
		},
		LoanDues:        []LoanDue{{AccountID: "loan", Amount: dec("250")}},
		RemainingBudget: dec("100"),
	})
	require.NoError(t, err)

	assert.True(t, p.ClosingBalance.Equal(dec("1700")), "closing %s", p.ClosingBalance)
	assert.True(t, p.OpeningBalance.Equal(dec("1400")), "opening %s", p.OpeningBalance)
	assert.True(t, p.Income.Equal(dec("1000")))
	assert.True(t, p.Expense.Equal(dec("400")))
	assert.True(t, p.Repayments.Equal(dec("400")))
	assert.True(t, p.CardDues.Equal(dec("500")))
	assert.True(t, p.LoanDues.Equal(dec("250")))
	assert.True(t, p.NetAvailable.Equal(dec("850")), "net %s", p.NetAvailable)
}

func TestProject_RejectsImpossibleLeg(t *testing.T) {
	_, err := Project(Input{
		Year:         2025,
		Month:        time.March,
		Accounts:     []model.Account{{ID: "bank", Type: model.AccountTypeBank}},
		Transactions: []model.Transaction{{ID: "bad", Type: model.TxWithdrawal, FromAccountID: "x", ToAccountID: "bank", Amount: dec("1"), Date: date(2025, 3, 1)}},
	})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, time.December)
	assert.Equal(t, date(2024, 12, 1), start)
	assert.Equal(t, date(2025, 1, 1), end)
}

func TestMonthProjection(t *testing.T) {
	ctx := context.Background()
	log, _ := logtest.NewNullLogger()
	st := memstore.New()
	svc := ledger.NewService(st, log, ledger.Options{})

	add := func(p ledger.AddAccountParams) model.Account {
		t.Helper()
		if p.OwnerID == "" {
			p.OwnerID = "u1"
		}
		p.Name = string(p.Type)
		a, err := svc.AddAccount(ctx, p)
		require.NoError(t, err)
		return a
	}
	bank := add(ledger.AddAccountParams{Type: model.AccountTypeBank, OpeningBalance: dec("5000")})
	card := add(ledger.AddAccountParams{Type: model.AccountTypeCreditCard, StatementDay: 1, DueDay: 20})
	add(ledger.AddAccountParams{Type: model.AccountTypeLoan, Principal: dec("12000"), TenureMonths: 12, StartDate: date(2025, 1, 1), DueDay: 5})
	add(ledger.AddAccountParams{OwnerID: "u2", Type: model.AccountTypeBank, OpeningBalance: dec("99999")})

	for _, tx := range []model.Transaction{
		{OwnerID: "u1", Type: model.TxIncome, ToAccountID: bank.ID, Amount: dec("2000"), Date: date(2025, 3, 2)},
		{OwnerID: "u1", Type: model.TxExpense, FromAccountID: card.ID, Amount: dec("600"), Date: date(2025, 3, 10)},
	} {
		_, err := svc.Create(ctx, tx)
		require.NoError(t, err)
	}

	p, err := NewService(st, log).MonthProjection(ctx, MonthParams{
		OwnerID:         "u1",
		Year:            2025,
		Month:           time.March,
		AsOf:            date(2025, 3, 15),
		RemainingBudget: dec("500"),
	})
	require.NoError(t, err)

	assert.True(t, p.OpeningBalance.Equal(dec("5000")), "opening %s", p.OpeningBalance)
	assert.True(t, p.ClosingBalance.Equal(dec("7000")), "closing %s", p.ClosingBalance)
	assert.True(t, p.Income.Equal(dec("2000")))
	assert.True(t, p.Expense.Equal(dec("600")))
	assert.True(t, p.CardDues.Equal(dec("600")), "card dues %s", p.CardDues)
	assert.True(t, p.LoanDues.Equal(dec("1000")), "loan dues %s", p.LoanDues)
	assert.True(t, p.NetAvailable.Equal(dec("4900")), "net %s", p.NetAvailable)
}

func TestMonthProjection_PastMonth(t *testing.T) {
	ctx := context.Background()
	log, _ := logtest.NewNullLogger()
	st := memstore.New()
	svc := ledger.NewService(st, log, ledger.Options{})

	bank, err := svc.AddAccount(ctx, ledger.AddAccountParams{OwnerID: "u1", Name: "bank", Type: model.AccountTypeBank, OpeningBalance: dec("1000")})
	require.NoError(t, err)
	for _, tx := range []model.Transaction{
		{OwnerID: "u1", Type: model.TxIncome, ToAccountID: bank.ID, Amount: dec("500"), Date: date(2025, 3, 10)},
		{OwnerID: "u1", Type: model.TxExpense, FromAccountID: bank.ID, Amount: dec("200"), Date: date(2025, 4, 10)},
		{OwnerID: "u1", Type: model.TxExpense, FromAccountID: bank.ID, Amount: dec("50"), Date: date(2025, 5, 2)},
	} {
		_, err := svc.Create(ctx, tx)
		require.NoError(t, err)
	}

	cf := NewService(st, log)
	march, err := cf.MonthProjection(ctx, MonthParams{OwnerID: "u1", Year: 2025, Month: time.March, AsOf: date(2025, 3, 31)})
	require.NoError(t, err)
	assert.True(t, march.OpeningBalance.Equal(dec("1000")), "opening %s", march.OpeningBalance)
	assert.True(t, march.ClosingBalance.Equal(dec("1500")), "closing %s", march.ClosingBalance)
	assert.True(t, march.Income.Equal(dec("500")))
	assert.True(t, march.Expense.IsZero(), "later expenses are not the month's")

	april, err := cf.MonthProjection(ctx, MonthParams{OwnerID: "u1", Year: 2025, Month: time.April, AsOf: date(2025, 4, 30)})
	require.NoError(t, err)
	assert.True(t, april.OpeningBalance.Equal(march.ClosingBalance))
	assert.True(t, april.ClosingBalance.Equal(dec("1300")), "closing %s", april.ClosingBalance)
}

func TestMonthProjection_SkipsPaidLoanMonth(t *testing.T) {
	ctx := context.Background()
	log, _ := logtest.NewNullLogger()
	st := memstore.New()
	svc := ledger.NewService(st, log, ledger.Options{})

	bank, err := svc.AddAccount(ctx, ledger.AddAccountParams{Name: "bank", Type: model.AccountTypeBank, OpeningBalance: dec("5000")})
	require.NoError(t, err)
	home, err := svc.AddAccount(ctx, ledger.AddAccountParams{
		Name: "home", Type: model.AccountTypeLoan, Principal: dec("12000"), TenureMonths: 12, StartDate: date(2025, 1, 1), DueDay: 5,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.Transaction{Type: model.TxLoanPayment, FromAccountID: bank.ID, ToAccountID: home.ID, Amount: dec("1000"), Date: date(2025, 3, 5)})
	require.NoError(t, err)

	p, err := NewService(st, log).MonthProjection(ctx, MonthParams{Year: 2025, Month: time.March, AsOf: date(2025, 3, 15)})
	require.NoError(t, err)
	assert.True(t, p.LoanDues.IsZero())
	assert.True(t, p.Repayments.Equal(dec("1000")))

	p, err = NewService(st, log).MonthProjection(ctx, MonthParams{Year: 2025, Month: time.April, AsOf: date(2025, 4, 15)})
	require.NoError(t, err)
	assert.True(t, p.LoanDues.Equal(dec("1000")), "11000 over 11 months, got %s", p.LoanDues)
}
