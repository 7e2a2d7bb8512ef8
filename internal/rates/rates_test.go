package rates

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

var history = []model.InterestRate{
	{Rate: dec("9.5"), EffectiveDate: date(2024, 6, 1)},
	{Rate: dec("8.5"), EffectiveDate: date(2024, 1, 1)},
	{Rate: dec("10"), EffectiveDate: date(2025, 1, 1)},
}

func TestEffective(t *testing.T) {
	fallback := dec("7")
	tests := []struct {
		on   time.Time
		want string
	}{
		{date(2023, 12, 31), "7"},
		{date(2024, 1, 1), "8.5"},
		{date(2024, 5, 31), "8.5"},
		{date(2024, 6, 1), "9.5"},
		{date(2024, 12, 31), "9.5"},
		{date(2025, 1, 1), "10"},
		{date(2030, 1, 1), "10"},
	}
	for _, tt := range tests {
		got := Effective(history, tt.on, fallback)
		assert.True(t, got.Equal(dec(tt.want)), "on %s got %s want %s", tt.on.Format("2006-01-02"), got, tt.want)
	}
}

func TestEffective_EmptyHistory(t *testing.T) {
	got := Effective(nil, date(2024, 1, 1), dec("11.25"))
	assert.True(t, got.Equal(dec("11.25")))
}

func TestEffective_IgnoresTimeOfDay(t *testing.T) {
	h := []model.InterestRate{{Rate: dec("9"), EffectiveDate: time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)}}
	got := Effective(h, time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), dec("8"))
	assert.True(t, got.Equal(dec("9")))
}

func TestSort_DoesNotMutate(t *testing.T) {
	sorted := Sort(history)
	assert.True(t, history[0].EffectiveDate.Equal(date(2024, 6, 1)))
	assert.True(t, sorted[0].EffectiveDate.Equal(date(2024, 1, 1)))
	assert.True(t, sorted[2].EffectiveDate.Equal(date(2025, 1, 1)))
}

func TestSegments(t *testing.T) {
	segs := Segments(history, date(2024, 5, 1), date(2025, 2, 1), dec("7"))
	require.Len(t, segs, 3)

	assert.True(t, segs[0].Start.Equal(date(2024, 5, 1)))
	assert.True(t, segs[0].End.Equal(date(2024, 6, 1)))
	assert.True(t, segs[0].Rate.Equal(dec("8.5")))
	assert.Equal(t, 31, segs[0].Days())

	assert.True(t, segs[1].Rate.Equal(dec("9.5")))
	assert.True(t, segs[2].Start.Equal(date(2025, 1, 1)))
	assert.True(t, segs[2].Rate.Equal(dec("10")))
	assert.Equal(t, 31, segs[2].Days())
}

func TestSegments_ChangeOnStart(t *testing.T) {
	segs := Segments(history, date(2024, 6, 1), date(2024, 7, 1), dec("7"))
	require.Len(t, segs, 1)
	assert.True(t, segs[0].Rate.Equal(dec("9.5")))
	assert.Equal(t, 30, segs[0].Days())
}

func TestSegments_EmptyRange(t *testing.T) {
	assert.Empty(t, Segments(history, date(2024, 6, 1), date(2024, 6, 1), dec("7")))
}
