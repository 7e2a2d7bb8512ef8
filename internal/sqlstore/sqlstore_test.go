package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerly/internal/model"
	"github.com/cleared-dev/ledgerly/internal/store"
	"github.com/cleared-dev/ledgerly/internal/store/storetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "ledgerly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return openTemp(t) })
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledgerly.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.InsertAccount(ctx, model.Account{ID: "b1", Name: "bank", Type: model.AccountTypeBank, Balance: decimal.RequireFromString("12.34")}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetAccount(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("12.34")))
}

func TestRejectsSubCentAmounts(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.InsertAccount(ctx, model.Account{ID: "b1", Name: "bank", Type: model.AccountTypeBank}))

	_, err := s.AdjustBalance(ctx, "b1", decimal.RequireFromString("0.001"))
	assert.Error(t, err)
	err = s.InsertAccount(ctx, model.Account{ID: "b2", Name: "bank", Type: model.AccountTypeBank, Balance: decimal.RequireFromString("1.005")})
	assert.Error(t, err)
}

func TestRejectsUnknownAccountType(t *testing.T) {
	s := openTemp(t)
	err := s.InsertAccount(context.Background(), model.Account{ID: "x", Name: "x", Type: "wallet"})
	assert.Error(t, err)
}

func TestCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"12.34", 1234, false},
		{"-0.5", -50, false},
		{"10661.85", 1066185, false},
		{"1.001", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := toCents("amount", decimal.RequireFromString(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, fromCents(got).Equal(decimal.RequireFromString(tt.in)))
		})
	}
}
