package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/store"
	"github.com/cleared-dev/ledgerly/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestWithinTx_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := New().WithinTx(ctx, func(context.Context, store.Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestListIsolatedFromCallerMutation(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.ReplaceLoanPayments(ctx, "L", []model.LoanEMIPayment{{ID: "p1", PaymentNumber: 1}}))

	got, err := s.ListLoanPayments(ctx, "L")
	require.NoError(t, err)
	got[0].PaymentNumber = 99

	again, err := s.ListLoanPayments(ctx, "L")
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].PaymentNumber)
}
