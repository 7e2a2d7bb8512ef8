package installment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerly/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func newEMI(t *testing.T, months int) model.EMITransaction {
	t.Helper()
	e, err := New(NewParams{
		ID:             "emi1",
		AccountID:      "card",
		TransactionID:  "tx1",
		PurchaseAmount: dec("1150"),
		BankCharges:    dec("50"),
		Months:         months,
		FirstDueDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return e
}

func TestNew(t *testing.T) {
	e := newEMI(t, 3)
	assert.True(t, e.TotalAmount.Equal(dec("1200")))
	assert.True(t, e.MonthlyEMI.Equal(dec("400")))
	assert.Equal(t, 3, e.RemainingInstallments)
	assert.Equal(t, model.EMIActive, e.Status)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(NewParams{AccountID: "card", PurchaseAmount: dec("100"), Months: 0})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Contains(t, err.Error(), "emi_months")

	_, err = New(NewParams{PurchaseAmount: dec("-1"), BankCharges: dec("-1"), Months: 3})
	require.Error(t, err)
	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
}

func TestLifecycle(t *testing.T) {
	e := newEMI(t, 2)

	e, err := Pay(e)
	require.NoError(t, err)
	assert.Equal(t, 1, e.RemainingInstallments)
	assert.Equal(t, model.EMIActive, e.Status)

	e, err = Pay(e)
	require.NoError(t, err)
	assert.Equal(t, 0, e.RemainingInstallments)
	assert.Equal(t, model.EMICompleted, e.Status)

	_, err = Pay(e)
	assert.Error(t, err)

	e, err = Unpay(e)
	require.NoError(t, err)
	assert.Equal(t, model.EMIActive, e.Status)
	assert.Equal(t, 1, e.RemainingInstallments)
}

func TestUnpay_NothingPaid(t *testing.T) {
	_, err := Unpay(newEMI(t, 3))
	assert.Error(t, err)
}

func TestCancel(t *testing.T) {
	e, err := Cancel(newEMI(t, 3))
	require.NoError(t, err)
	assert.Equal(t, model.EMICancelled, e.Status)
	assert.True(t, Outstanding(e).IsZero())

	_, err = Cancel(e)
	assert.Error(t, err)
	_, err = Pay(e)
	assert.Error(t, err)
	_, err = Unpay(e)
	assert.Error(t, err)

	_, ok := NextDueDate(e)
	assert.False(t, ok)
}

func TestNextDueDate(t *testing.T) {
	e := newEMI(t, 3)
	due, ok := NextDueDate(e)
	require.True(t, ok)
	assert.Equal(t, "2024-01-31", due.Format(model.DateFormat))

	e, _ = Pay(e)
	due, ok = NextDueDate(e)
	require.True(t, ok)
	assert.Equal(t, "2024-02-29", due.Format(model.DateFormat))
	assert.True(t, Outstanding(e).Equal(dec("800")))
}

func TestAmount_LastInstallmentAbsorbsResidue(t *testing.T) {
	e, err := New(NewParams{
		AccountID:      "card",
		PurchaseAmount: dec("1000"),
		Months:         3,
		FirstDueDate:   time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, e.MonthlyEMI.Equal(dec("333.33")))

	sum := decimal.Zero
	for k, want := range []string{"333.33", "333.33", "333.34"} {
		got := Amount(e, k)
		assert.True(t, got.Equal(dec(want)), "installment %d: got %s", k, got)
		sum = sum.Add(got)
	}
	assert.True(t, sum.Equal(e.TotalAmount))
	assert.True(t, Amount(e, 3).IsZero())
	assert.True(t, Outstanding(e).Equal(dec("1000")))

	e, _ = Pay(e)
	e, _ = Pay(e)
	assert.True(t, Outstanding(e).Equal(dec("333.34")))
}

func TestDueIn(t *testing.T) {
	e := newEMI(t, 3) // 400 a month from 2024-01-31
	day := func(m, d int) time.Time { return time.Date(2024, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

	assert.True(t, DueIn(e, day(1, 15), day(2, 15)).Equal(dec("400")))
	assert.True(t, DueIn(e, day(2, 15), day(3, 15)).Equal(dec("400")), "2024-02-29")
	assert.True(t, DueIn(e, day(3, 15), day(4, 15)).Equal(dec("400")))
	assert.True(t, DueIn(e, day(4, 15), day(5, 15)).IsZero())
	assert.True(t, DueIn(e, day(1, 1), day(12, 31)).Equal(dec("1200")))

	e, _ = Pay(e)
	assert.True(t, DueIn(e, day(1, 15), day(2, 15)).IsZero(), "paid installment is not billed")
	assert.True(t, DueIn(e, day(2, 15), day(3, 15)).Equal(dec("400")))

	e, _ = Cancel(e)
	assert.True(t, DueIn(e, day(2, 15), day(3, 15)).IsZero())
}
