// Package storetest holds behaviour tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/store"
)

// Run exercises s against the store.Store contract. newStore must return an
// empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Accounts", testAccounts},
		{"AdjustBalance", testAdjustBalance},
		{"ConcurrentAdjust", testConcurrentAdjust},
		{"Transactions", testTransactions},
		{"InterestRates", testInterestRates},
		{"LoanPayments", testLoanPayments},
		{"EMITransactions", testEMITransactions},
		{"AdvanceEvents", testAdvanceEvents},
		{"WithinTxCommit", testWithinTxCommit},
		{"WithinTxRollback", testWithinTxRollback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bank(id, owner, balance string) model.Account {
	return model.Account{ID: id, OwnerID: owner, Name: "bank " + id, Type: model.AccountTypeBank, Balance: dec(balance), Currency: "INR"}
}

func testAccounts(t *testing.T, s store.Store) {
	ctx := context.Background()
	limit := dec("50000")
	card := model.Account{
		ID: "card", OwnerID: "u1", Name: "visa", Type: model.AccountTypeCreditCard,
		Balance: dec("120.50"), Currency: "INR", CreditLimit: &limit, StatementDay: 15, DueDay: 5,
	}
	home := model.Account{
		ID: "home", OwnerID: "u2", Name: "home loan", Type: model.AccountTypeLoan,
		Balance: dec("120000"), Currency: "INR", Principal: dec("120000"), TenureMonths: 240,
		StartDate: date(2024, 6, 1), RateType: model.RateTypeFloating, CurrentRate: dec("8.5"), DueDay: 7,
	}
	require.NoError(t, s.InsertAccount(ctx, card))
	require.NoError(t, s.InsertAccount(ctx, home))
	require.NoError(t, s.InsertAccount(ctx, bank("b1", "u1", "10")))
	assert.Error(t, s.InsertAccount(ctx, bank("b1", "u1", "10")), "duplicate id")

	got, err := s.GetAccount(ctx, "card")
	require.NoError(t, err)
	require.NotNil(t, got.CreditLimit)
	assert.True(t, got.CreditLimit.Equal(limit))
	assert.True(t, got.Balance.Equal(dec("120.50")))
	assert.Equal(t, 15, got.StatementDay)
	assert.Equal(t, 5, got.DueDay)

	got, err = s.GetAccount(ctx, "home")
	require.NoError(t, err)
	assert.Nil(t, got.CreditLimit)
	assert.Equal(t, 240, got.TenureMonths)
	assert.Equal(t, date(2024, 6, 1), got.StartDate)
	assert.Equal(t, model.RateTypeFloating, got.RateType)
	assert.True(t, got.CurrentRate.Equal(dec("8.5")))

	u1, err := s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, u1, 2)
	assert.Equal(t, "card", u1[0].ID)
	assert.Equal(t, "b1", u1[1].ID)

	all, err := s.ListAccounts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = s.GetAccount(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func testAdjustBalance(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertAccount(ctx, bank("b1", "u1", "100")))

	bal, err := s.AdjustBalance(ctx, "b1", dec("-30.25"))
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("69.75")))

	got, err := s.GetAccount(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("69.75")))

	_, err = s.AdjustBalance(ctx, "missing", dec("1"))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testConcurrentAdjust(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertAccount(ctx, bank("b1", "u1", "0")))

	const workers, each = 8, 25
	var wg sync.WaitGroup
	errs := make(chan error, workers*each)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				if _, err := s.AdjustBalance(ctx, "b1", dec("1.01")); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetAccount(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("202")), "got %s", got.Balance)
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()
	txs := []model.Transaction{
		{ID: "t3", OwnerID: "u1", Type: model.TxExpense, FromAccountID: "b1", Amount: dec("30"), Date: date(2025, 2, 1)},
		{ID: "t1", OwnerID: "u1", Type: model.TxIncome, ToAccountID: "b1", Amount: dec("10"), Date: date(2025, 1, 1), Description: "salary"},
		{ID: "t2", OwnerID: "u2", Type: model.TxTransfer, FromAccountID: "b2", ToAccountID: "b1", Amount: dec("20.05"), Date: date(2025, 1, 15)},
		{ID: "t4", OwnerID: "u1", Type: model.TxCreditCardRepayment, ToAccountID: "c1", Amount: dec("5"), Date: date(2025, 1, 20), FromAdvance: true},
	}
	for _, tx := range txs {
		require.NoError(t, s.InsertTransaction(ctx, tx))
	}
	assert.Error(t, s.InsertTransaction(ctx, txs[0]), "duplicate id")

	got, err := s.GetTransaction(ctx, "t4")
	require.NoError(t, err)
	assert.True(t, got.FromAdvance)
	assert.Empty(t, got.FromAccountID)
	assert.Equal(t, date(2025, 1, 20), got.Date)

	ids := func(f model.TransactionFilter) []string {
		list, err := s.ListTransactions(ctx, f)
		require.NoError(t, err)
		out := make([]string, len(list))
		for i, tx := range list {
			out[i] = tx.ID
		}
		return out
	}
	assert.Equal(t, []string{"t1", "t2", "t4", "t3"}, ids(model.TransactionFilter{}))
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(model.TransactionFilter{AccountID: "b1"}))
	assert.Equal(t, []string{"t1", "t4", "t3"}, ids(model.TransactionFilter{OwnerID: "u1"}))
	assert.Equal(t, []string{"t2"}, ids(model.TransactionFilter{Type: model.TxTransfer}))
	assert.Equal(t, []string{"t2", "t4"}, ids(model.TransactionFilter{From: date(2025, 1, 15), To: date(2025, 2, 1)}))

	upd := txs[1]
	upd.Amount = dec("11")
	upd.Description = "bonus"
	require.NoError(t, s.UpdateTransaction(ctx, upd))
	got, err = s.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(dec("11")))
	assert.Equal(t, "bonus", got.Description)

	require.NoError(t, s.DeleteTransaction(ctx, "t1"))
	_, err = s.GetTransaction(ctx, "t1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTransaction(ctx, "t1"), model.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTransaction(ctx, upd), model.ErrNotFound)
}

func testInterestRates(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertInterestRate(ctx, model.InterestRate{ID: "r2", AccountID: "L", Rate: dec("9"), EffectiveDate: date(2025, 3, 1)}))
	require.NoError(t, s.InsertInterestRate(ctx, model.InterestRate{ID: "r1", AccountID: "L", Rate: dec("8.25"), EffectiveDate: date(2025, 1, 1)}))
	require.NoError(t, s.InsertInterestRate(ctx, model.InterestRate{ID: "r3", AccountID: "other", Rate: dec("1"), EffectiveDate: date(2025, 1, 1)}))

	got, err := s.ListInterestRates(ctx, "L")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.True(t, got[0].Rate.Equal(dec("8.25")))
	assert.Equal(t, "r2", got[1].ID)
}

func testLoanPayments(t *testing.T, s store.Store) {
	ctx := context.Background()
	row := func(id string, n int) model.LoanEMIPayment {
		return model.LoanEMIPayment{
			ID: id, AccountID: "L", TransactionID: "t" + id, PaymentNumber: n,
			PaymentDate: date(2025, n+1, 5), EMIAmount: dec("10661.85"),
			PrincipalComponent: dec("9461.85"), InterestComponent: dec("1200"),
			OutstandingPrincipal: dec("110538.15"), InterestRate: dec("12"),
		}
	}
	require.NoError(t, s.ReplaceLoanPayments(ctx, "L", []model.LoanEMIPayment{row("a", 1), row("b", 2)}))
	require.NoError(t, s.ReplaceLoanPayments(ctx, "L", []model.LoanEMIPayment{row("c", 1)}))

	got, err := s.ListLoanPayments(ctx, "L")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, date(2025, 2, 5), got[0].PaymentDate)
	assert.True(t, got[0].OutstandingPrincipal.Equal(dec("110538.15")))
	assert.True(t, got[0].InterestRate.Equal(dec("12")))

	require.NoError(t, s.ReplaceLoanPayments(ctx, "L", nil))
	got, err = s.ListLoanPayments(ctx, "L")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testEMITransactions(t *testing.T, s store.Store) {
	ctx := context.Background()
	e := model.EMITransaction{
		ID: "e1", AccountID: "card", TransactionID: "t1", PurchaseAmount: dec("12000"),
		BankCharges: dec("300"), TotalAmount: dec("12300"), EMIMonths: 3, MonthlyEMI: dec("4100"),
		RemainingInstallments: 3, FirstDueDate: date(2025, 2, 15), Status: model.EMIActive,
	}
	require.NoError(t, s.InsertEMITransaction(ctx, e))
	require.NoError(t, s.InsertEMITransaction(ctx, model.EMITransaction{ID: "e2", AccountID: "other", Status: model.EMIActive, EMIMonths: 1, FirstDueDate: date(2025, 1, 1)}))

	e.RemainingInstallments = 2
	require.NoError(t, s.UpdateEMITransaction(ctx, e))

	got, err := s.GetEMITransaction(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.RemainingInstallments)
	assert.True(t, got.MonthlyEMI.Equal(dec("4100")))
	assert.Equal(t, date(2025, 2, 15), got.FirstDueDate)

	list, err := s.ListEMITransactions(ctx, "card")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t1", list[0].TransactionID)

	_, err = s.GetEMITransaction(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.UpdateEMITransaction(ctx, model.EMITransaction{ID: "nope"}), model.ErrNotFound)
}

func testAdvanceEvents(t *testing.T, s store.Store) {
	ctx := context.Background()
	events := []model.AdvanceEvent{
		{ID: "a1", CardID: "c1", TransactionID: "t1", Kind: model.AdvanceCreated, Amount: dec("200"), Date: date(2025, 2, 1)},
		{ID: "a2", CardID: "c1", TransactionID: "t2", Kind: model.AdvanceConsumed, Amount: dec("150"), Date: date(2025, 3, 1)},
		{ID: "a3", CardID: "c2", TransactionID: "t3", Kind: model.AdvanceCreated, Amount: dec("5"), Date: date(2025, 3, 1)},
	}
	for _, ev := range events {
		require.NoError(t, s.AppendAdvanceEvent(ctx, ev))
	}
	assert.Error(t, s.AppendAdvanceEvent(ctx, model.AdvanceEvent{ID: "a4", CardID: "c1", Kind: model.AdvanceCreated, Amount: dec("0")}))

	got, err := s.ListAdvanceEvents(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.AdvanceCreated, got[0].Kind)
	assert.Equal(t, model.AdvanceConsumed, got[1].Kind)

	require.NoError(t, s.DeleteAdvanceEvents(ctx, "t2"))
	got, err = s.ListAdvanceEvents(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}

func testWithinTxCommit(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertAccount(ctx, bank("b1", "u1", "100")))

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.AdjustBalance(ctx, "b1", dec("50")); err != nil {
			return err
		}
		return tx.WithinTx(ctx, func(ctx context.Context, inner store.Store) error {
			return inner.InsertTransaction(ctx, model.Transaction{ID: "t1", Type: model.TxIncome, ToAccountID: "b1", Amount: dec("50"), Date: date(2025, 1, 1)})
		})
	})
	require.NoError(t, err)

	got, err := s.GetAccount(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("150")))
	_, err = s.GetTransaction(ctx, "t1")
	assert.NoError(t, err)
}

func testWithinTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertAccount(ctx, bank("b1", "u1", "100")))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.AdjustBalance(ctx, "b1", dec("-40")); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, model.Transaction{ID: "t1", Type: model.TxExpense, FromAccountID: "b1", Amount: dec("40"), Date: date(2025, 1, 1)}); err != nil {
			return err
		}
		if err := tx.AppendAdvanceEvent(ctx, model.AdvanceEvent{ID: "a1", CardID: "c1", TransactionID: "t1", Kind: model.AdvanceCreated, Amount: dec("1"), Date: date(2025, 1, 1)}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetAccount(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("100")))
	_, err = s.GetTransaction(ctx, "t1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	events, err := s.ListAdvanceEvents(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, events)
}
