package importer

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerly/internal/ledger"
	"github.com/cleared-dev/ledgerly/internal/memstore"
	"github.com/cleared-dev/ledgerly/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func readChase(t *testing.T) []Row {
	t.Helper()
	f, err := os.Open("testdata/chase_checking.csv")
	require.NoError(t, err)
	defer f.Close()

	rows, err := Chase.Parse(f)
	require.NoError(t, err)
	return rows
}

func TestChase_Parse(t *testing.T) {
	rows := readChase(t)
	require.Len(t, rows, 6)

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", rows[0].Description)
	assert.Equal(t, "-4.00", rows[0].Amount.StringFixed(2))
	assert.Equal(t, "ACH_DEBIT", rows[0].Type)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), rows[0].Date)

	assert.Equal(t, "ACME CONSULTING INVOICE 1042", rows[3].Description)
	assert.Equal(t, "3500.00", rows[3].Amount.StringFixed(2))

	assert.Equal(t, "ZOOM.US, INC", rows[5].Description)
	assert.Equal(t, 22, rows[5].Date.Day())
}

func TestChase_Reference(t *testing.T) {
	rows := readChase(t)
	assert.Equal(t, "chase_20250103_GITHUBPROS", rows[0].Reference)
}

func TestChase_EmptyFile(t *testing.T) {
	rows, err := Chase.Parse(strings.NewReader("Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestChase_BadRows(t *testing.T) {
	header := "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad date", "DEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n", "parsing date"},
		{"bad amount", "DEBIT,01/03/2025,desc,NOTANUMBER,ACH_DEBIT,100.00,\n", "parsing amount"},
		{"short row", "DEBIT,01/03/2025,desc\n", "reading chase CSV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Chase.Parse(strings.NewReader(header + tt.row))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSimple_Parse(t *testing.T) {
	in := "date,description,amount\n2025-03-01, Salary ,\"52,000.00\"\n2025-03-02,Rent,-18000\n"
	rows, err := Simple.Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Salary", rows[0].Description)
	assert.True(t, rows[0].Amount.Equal(dec("52000")))
	assert.True(t, rows[1].Amount.Equal(dec("-18000")))
	assert.Equal(t, "simple_20250302_Rent", rows[1].Reference)
}

func TestSimple_NoHeader(t *testing.T) {
	rows, err := Simple.Parse(strings.NewReader("2025-03-01,Coffee,-3.50\n"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSimple_BadDateAfterHeader(t *testing.T) {
	_, err := Simple.Parse(strings.NewReader("date,description,amount\n03/01/2025,Coffee,-3.50\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))

	r.Register(Chase)
	assert.NotNil(t, r.Get("Chase"))
	assert.NotNil(t, r.Get("CHASE"))
	assert.Panics(t, func() { r.Register(Chase) })

	formats := DefaultRegistry().Formats()
	sort.Strings(formats)
	assert.Equal(t, []string{"chase", "simple"}, formats)
}

func TestRow_Transaction(t *testing.T) {
	day := time.Date(2025, 3, 1, 15, 4, 0, 0, time.UTC)

	tx, ok := Row{Date: day, Amount: dec("-12.30"), Description: "lunch"}.Transaction("u1", "acc_bank")
	require.True(t, ok)
	assert.Equal(t, model.TxExpense, tx.Type)
	assert.Equal(t, "acc_bank", tx.FromAccountID)
	assert.Empty(t, tx.ToAccountID)
	assert.True(t, tx.Amount.Equal(dec("12.30")))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), tx.Date)

	tx, ok = Row{Date: day, Amount: dec("100")}.Transaction("u1", "acc_bank")
	require.True(t, ok)
	assert.Equal(t, model.TxIncome, tx.Type)
	assert.Equal(t, "acc_bank", tx.ToAccountID)

	_, ok = Row{Date: day}.Transaction("u1", "acc_bank")
	assert.False(t, ok)
}

func TestImport_RecordsAndDeduplicates(t *testing.T) {
	ctx := context.Background()
	log, _ := logtest.NewNullLogger()
	svc := ledger.NewService(memstore.New(), log, ledger.Options{})
	bank, err := svc.AddAccount(ctx, ledger.AddAccountParams{Name: "Checking", Type: model.AccountTypeBank, OpeningBalance: dec("5500")})
	require.NoError(t, err)

	rows := readChase(t)
	res, err := Import(ctx, svc, Params{AccountID: bank.ID, Rows: rows})
	require.NoError(t, err)
	assert.Len(t, res.Created, 6)
	assert.Zero(t, res.Skipped)

	acct, err := svc.Account(ctx, bank.ID)
	require.NoError(t, err)
	assert.Equal(t, "8765.35", acct.Balance.StringFixed(2), "matches the export's running balance")

	res, err = Import(ctx, svc, Params{AccountID: bank.ID, Rows: rows})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, 6, res.Skipped)
}

func TestImport_DryRun(t *testing.T) {
	ctx := context.Background()
	log, _ := logtest.NewNullLogger()
	svc := ledger.NewService(memstore.New(), log, ledger.Options{})
	bank, err := svc.AddAccount(ctx, ledger.AddAccountParams{Name: "Checking", Type: model.AccountTypeBank})
	require.NoError(t, err)

	res, err := Import(ctx, svc, Params{AccountID: bank.ID, Rows: readChase(t), DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.Created, 6)

	txs, err := svc.Transactions(ctx, model.TransactionFilter{AccountID: bank.ID})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

type failingRecorder struct {
	created int
}

func (f *failingRecorder) Transactions(context.Context, model.TransactionFilter) ([]model.Transaction, error) {
	return nil, nil
}

func (f *failingRecorder) Create(_ context.Context, tx model.Transaction) (model.Transaction, error) {
	if f.created == 2 {
		return model.Transaction{}, errors.New("disk full")
	}
	f.created++
	return tx, nil
}

func TestImport_StopsAtFirstFailure(t *testing.T) {
	rec := &failingRecorder{}
	res, err := Import(context.Background(), rec, Params{AccountID: "acc_bank", Rows: readChase(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Len(t, res.Created, 2)
}

func TestImport_RequiresAccount(t *testing.T) {
	_, err := Import(context.Background(), &failingRecorder{}, Params{})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}
