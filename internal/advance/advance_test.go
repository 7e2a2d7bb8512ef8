package advance

import (
	"fmt"
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

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ev%d", n)
	}
}

func TestBalance(t *testing.T) {
	events := []model.AdvanceEvent{
		{Kind: model.AdvanceCreated, Amount: dec("500")},
		{Kind: model.AdvanceConsumed, Amount: dec("300")},
		{Kind: model.AdvanceCreated, Amount: dec("25.50")},
	}
	assert.True(t, Balance(events).Equal(dec("225.50")))
	assert.True(t, Balance(nil).IsZero())
}

func TestAllocate_ExcessCreatesAdvance(t *testing.T) {
	res, err := Allocate(Repayment{
		CardID: "card",
		Amount: dec("1500"),
		Source: model.AccountSource{AccountID: "bank"},
		Allocations: []Allocation{
			{Reference: "line1", Amount: dec("600")},
			{Reference: "line2", Amount: dec("400")},
		},
	}, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, res.Allocated.Equal(dec("1000")))
	assert.True(t, res.AdvanceCreated.Equal(dec("500")))
	assert.True(t, res.AdvanceConsumed.IsZero())
}

func TestAllocate_UnallocatedRepaymentSettlesBalance(t *testing.T) {
	res, err := Allocate(Repayment{
		CardID: "card",
		Amount: dec("700"),
		Source: model.AccountSource{AccountID: "bank"},
	}, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, res.Allocated.Equal(dec("700")))
	assert.True(t, res.AdvanceCreated.IsZero())
}

func TestAllocate_OverAllocated(t *testing.T) {
	_, err := Allocate(Repayment{
		CardID:      "card",
		Amount:      dec("100"),
		Source:      model.AccountSource{AccountID: "bank"},
		Allocations: []Allocation{{Reference: "line1", Amount: dec("150")}},
	}, decimal.Zero)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds repayment")
}

func TestAllocate_AdvanceSource(t *testing.T) {
	res, err := Allocate(Repayment{CardID: "card", Amount: dec("300"), Source: model.AdvanceSource{}}, dec("500"))
	require.NoError(t, err)
	assert.True(t, res.AdvanceConsumed.Equal(dec("300")))
	assert.True(t, res.Net(dec("500")).Equal(dec("200")))
}

func TestAllocate_AdvanceInsufficient(t *testing.T) {
	_, err := Allocate(Repayment{CardID: "card", Amount: dec("600"), Source: model.AdvanceSource{}}, dec("500"))
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Contains(t, err.Error(), "does not cover")
}

func TestAllocate_MissingSource(t *testing.T) {
	_, err := Allocate(Repayment{CardID: "card", Amount: dec("10")}, decimal.Zero)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment source required")

	_, err = Allocate(Repayment{CardID: "card", Amount: dec("10"), Source: model.AccountSource{}}, decimal.Zero)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "funding account required")
}

func TestAllocate_InvalidAmount(t *testing.T) {
	_, err := Allocate(Repayment{Amount: dec("0"), Source: model.AdvanceSource{}}, dec("10"))
	require.Error(t, err)
	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestEvents(t *testing.T) {
	r := Repayment{CardID: "card", Date: time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)}
	events := Events(r, "tx1", Result{AdvanceCreated: dec("500")}, seqIDs())
	require.Len(t, events, 1)
	assert.Equal(t, "ev1", events[0].ID)
	assert.Equal(t, model.AdvanceCreated, events[0].Kind)
	assert.Equal(t, "tx1", events[0].TransactionID)
	assert.Equal(t, "2024-01-20", events[0].Date.Format(model.DateFormat))

	assert.Empty(t, Events(r, "tx2", Result{Allocated: dec("10")}, seqIDs()))

	events = Events(r, "tx3", Result{AdvanceConsumed: dec("20")}, seqIDs())
	require.Len(t, events, 1)
	assert.Equal(t, model.AdvanceConsumed, events[0].Kind)
}
