package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerly/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestEMI(t *testing.T) {
	tests := []struct {
		principal, rate string
		months          int
		want            string
	}{
		{"120000", "12", 12, "10661.85"},
		{"100000", "0", 4, "25000"},
		{"1000", "0", 3, "333.33"},
		{"500000", "8.5", 240, "4339.12"},
	}
	for _, tt := range tests {
		got, err := EMI(dec(tt.principal), dec(tt.rate), tt.months)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec(tt.want)), "EMI(%s, %s, %d) = %s, want %s", tt.principal, tt.rate, tt.months, got, tt.want)
	}
}

func TestEMI_Validation(t *testing.T) {
	_, err := EMI(dec("1000"), dec("10"), 0)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	_, err = EMI(dec("0"), dec("10"), 12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "principal")

	_, err = EMI(dec("1000"), dec("-1"), 12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate")
}

func TestBreakdown(t *testing.T) {
	split, err := Breakdown(dec("120000"), dec("10661.85"), dec("12"))
	require.NoError(t, err)
	assert.True(t, split.Interest.Equal(dec("1200")))
	assert.True(t, split.Principal.Equal(dec("9461.85")))
	assert.True(t, split.NewOutstanding.Equal(dec("110538.15")))
}

func TestBreakdown_Overpayment(t *testing.T) {
	split, err := Breakdown(dec("500"), dec("1000"), dec("12"))
	require.NoError(t, err)
	assert.True(t, split.Interest.Equal(dec("5")))
	assert.True(t, split.NewOutstanding.IsZero())
}

func TestBreakdown_PaymentBelowInterest(t *testing.T) {
	_, err := Breakdown(dec("120000"), dec("1000"), dec("12"))
	require.Error(t, err)
	var ise model.InconsistentScheduleError
	require.ErrorAs(t, err, &ise)
	assert.True(t, ise.Interest.Equal(dec("1200")))
}

func TestBreakdown_NonPositivePayment(t *testing.T) {
	_, err := Breakdown(dec("1000"), dec("0"), dec("12"))
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestValidatePayment(t *testing.T) {
	ok := model.LoanEMIPayment{
		EMIAmount:            dec("100.00"),
		PrincipalComponent:   dec("80.00"),
		InterestComponent:    dec("20.01"),
		OutstandingPrincipal: dec("900"),
	}
	assert.NoError(t, ValidatePayment(ok))

	bad := ok
	bad.InterestComponent = dec("20.02")
	assert.Error(t, ValidatePayment(bad))

	neg := ok
	neg.OutstandingPrincipal = dec("-1")
	assert.Error(t, ValidatePayment(neg))
}

func TestValidateSchedule(t *testing.T) {
	row := func(n int, outstanding string) model.LoanEMIPayment {
		return model.LoanEMIPayment{
			PaymentNumber:        n,
			EMIAmount:            dec("100"),
			PrincipalComponent:   dec("90"),
			InterestComponent:    dec("10"),
			OutstandingPrincipal: dec(outstanding),
		}
	}
	assert.NoError(t, ValidateSchedule(nil))
	assert.NoError(t, ValidateSchedule([]model.LoanEMIPayment{row(1, "910"), row(2, "820")}))

	err := ValidateSchedule([]model.LoanEMIPayment{row(1, "910"), row(3, "820")})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Contains(t, err.Error(), "gap")

	err = ValidateSchedule([]model.LoanEMIPayment{row(1, "820"), row(2, "910")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "increased")

	bad := row(2, "820")
	bad.InterestComponent = dec("11")
	err = ValidateSchedule([]model.LoanEMIPayment{row(1, "910"), bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emi_amount")
}
