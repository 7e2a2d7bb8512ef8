package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerly/internal/advance"
	"github.com/cleared-dev/ledgerly/internal/model"
)

func TestRepay_AdvanceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, Options{})
	card := addAccount(t, svc, AddAccountParams{Type: model.AccountTypeCreditCard, OpeningBalance: dec("1000"), StatementDay: 15})
	bank := addAccount(t, svc, AddAccountParams{Type: model.AccountTypeBank, OpeningBalance: dec("5000")})

	over, err := svc.Repay(ctx, advance.Repayment{
		CardID:      card.ID,
		Amount:      dec("1200"),
		Date:        date(2025, 2, 1),
		Source:      model.AccountSource{AccountID: bank.ID},
		Allocations: []advance.Allocation{{Reference: "2025-01", Amount: dec("1000")}},
	})
	require.NoError(t, err)
	assert.True(t, over.Allocation.AdvanceCreated.Equal(dec("200")))
	assert.True(t, over.AdvanceBalance.Equal(dec("200")))
	assert.Equal(t, bank.ID, over.Transaction.FromAccountID)
	assertBalance(t, svc, bank.ID, "3800")
	assertBalance(t, svc, card.ID, "-200")

	spent, err := svc.Repay(ctx, advance.Repayment{
		CardID: card.ID,
		Amount: dec("150"),
		Date:   date(2025, 3, 1),
		Source: model.AdvanceSource{},
	})
	require.NoError(t, err)
	assert.True(t, spent.Transaction.FromAdvance)
	assert.Empty(t, spent.Transaction.FromAccountID)
	assert.True(t, spent.AdvanceBalance.Equal(dec("50")))
	assertBalance(t, svc, bank.ID, "3800")
	assertBalance(t, svc, card.ID, "-200")

	_, err = svc.Repay(ctx, advance.Repayment{CardID: card.ID, Amount: dec("100"), Date: date(2025, 3, 2), Source: model.AdvanceSource{}})
	assert.True(t, model.IsValidation(err))
	bal, err := svc.AdvanceBalance(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("50")))

	_, err = svc.Update(ctx, over.Transaction.ID, over.Transaction)
	assert.True(t, model.IsValidation(err), "repayment owning an advance is not editable")
	_, err = svc.Update(ctx, spent.Transaction.ID, spent.Transaction)
	assert.True(t, model.IsValidation(err), "advance-funded repayment is not editable")

	err = svc.Delete(ctx, over.Transaction.ID)
	assert.True(t, model.IsValidation(err), "advance already consumed")
	assertBalance(t, svc, bank.ID, "3800")

	require.NoError(t, svc.Delete(ctx, spent.Transaction.ID))
	bal, err = svc.AdvanceBalance(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("200")))

	require.NoError(t, svc.Delete(ctx, over.Transaction.ID))
	bal, err = svc.AdvanceBalance(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
	assertBalance(t, svc, bank.ID, "5000")
	assertBalance(t, svc, card.ID, "1000")
}

func TestRepay_WithoutAllocationsCreatesNoAdvance(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, Options{})
	card := addAccount(t, svc, AddAccountParams{Type: model.AccountTypeCreditCard, OpeningBalance: dec("100"), StatementDay: 15})
	cash := addAccount(t, svc, AddAccountParams{Type: model.AccountTypeCash, OpeningBalance: dec("500")})

	res, err := svc.Repay(ctx, advance.Repayment{CardID: card.ID, Amount: dec("300"), Date: date(2025, 2, 1), Source: model.AccountSource{AccountID: cash.ID}})
	require.NoError(t, err)
	assert.True(t, res.Allocation.AdvanceCreated.IsZero())
	assert.True(t, res.AdvanceBalance.IsZero())
	assertBalance(t, svc, card.ID, "-200")
	assertBalance(t, svc, cash.ID, "200")
}

func TestRepay_Rejected(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, Options{})
	card := addAccount(t, svc, AddAccountParams{Type: model.AccountTypeCreditCard, StatementDay: 15})
	bank := addAccount(t, svc, AddAccountParams{Type: model.AccountTypeBank, OpeningBalance: dec("500")})

	tests := []struct {
		name string
		r    advance.Repayment
	}{
		{"not a card", advance.Repayment{CardID: bank.ID, Amount: dec("1"), Source: model.AccountSource{AccountID: bank.ID}}},
		{"no source", advance.Repayment{CardID: card.ID, Amount: dec("1")}},
		{"over allocated", advance.Repayment{
			CardID: card.ID, Amount: dec("10"), Source: model.AccountSource{AccountID: bank.ID},
			Allocations: []advance.Allocation{{Reference: "2025-01", Amount: dec("11")}},
		}},
		{"self funded", advance.Repayment{CardID: card.ID, Amount: dec("1"), Source: model.AccountSource{AccountID: card.ID}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.r.Date = date(2025, 2, 1)
			_, err := svc.Repay(ctx, tt.r)
			require.Error(t, err)
			assert.True(t, model.IsValidation(err), "got %v", err)
		})
	}
	assertBalance(t, svc, bank.ID, "500")

	_, err := svc.Repay(ctx, advance.Repayment{CardID: "acc_nope", Amount: dec("1"), Date: date(2025, 2, 1), Source: model.AdvanceSource{}})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
