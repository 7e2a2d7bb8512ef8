package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerly/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func ymd(t time.Time) string {
	return t.Format(model.DateFormat)
}

func TestStatementPeriod(t *testing.T) {
	tests := []struct {
		name         string
		statementDay int
		ref          time.Time
		start, end   string
		after        bool
	}{
		{"before statement", 15, date(2024, 1, 10), "2023-12-15", "2024-01-15", false},
		{"on statement", 15, date(2024, 1, 15), "2024-01-15", "2024-02-15", true},
		{"after statement", 15, date(2024, 1, 20), "2024-01-15", "2024-02-15", true},
		{"year rollover", 25, date(2024, 12, 28), "2024-12-25", "2025-01-25", true},
		{"short month end", 31, date(2024, 3, 5), "2024-02-29", "2024-03-31", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := StatementPeriod(tt.statementDay, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.start, ymd(p.Start))
			assert.Equal(t, tt.end, ymd(p.End))
			assert.Equal(t, tt.after, p.IsAfterStatementDate)
		})
	}
}

func TestStatementPeriod_ClampsFebruary(t *testing.T) {
	p, err := StatementPeriod(31, date(2024, 2, 20))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", ymd(p.StatementDate))
	assert.False(t, p.IsAfterStatementDate)
	assert.Equal(t, "2024-01-31", ymd(p.Start))
	assert.Equal(t, "2024-02-29", ymd(p.End))
}

func TestStatementPeriod_LastDayOfShortMonthCountsAsAfter(t *testing.T) {
	p, err := StatementPeriod(31, date(2023, 2, 28))
	require.NoError(t, err)
	assert.True(t, p.IsAfterStatementDate)
	assert.Equal(t, "2023-02-28", ymd(p.Start))
	assert.Equal(t, "2023-03-31", ymd(p.End))
}

func TestStatementPeriod_InvalidDay(t *testing.T) {
	_, err := StatementPeriod(0, date(2024, 1, 1))
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	_, err = StatementPeriod(32, date(2024, 1, 1))
	require.Error(t, err)
}

func TestPeriodContains(t *testing.T) {
	p, err := StatementPeriod(15, date(2024, 1, 20))
	require.NoError(t, err)
	assert.True(t, p.Contains(date(2024, 1, 15)))
	assert.True(t, p.Contains(time.Date(2024, 2, 14, 18, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(date(2024, 2, 15)))
	assert.False(t, p.Contains(date(2024, 1, 14)))
}

func TestDueDate(t *testing.T) {
	tests := []struct {
		statementDay, dueDay int
		ref                  time.Time
		want                 string
	}{
		{10, 25, date(2024, 1, 12), "2024-01-25"},
		{20, 5, date(2024, 1, 22), "2024-02-05"},
		{20, 5, date(2024, 1, 10), "2024-01-05"},
		{5, 31, date(2024, 2, 6), "2024-02-29"},
		{28, 3, date(2024, 12, 30), "2025-01-03"},
	}
	for _, tt := range tests {
		got, err := DueDate(tt.statementDay, tt.dueDay, tt.ref)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ymd(got), "statement %d due %d ref %s", tt.statementDay, tt.dueDay, ymd(tt.ref))
	}
}

func TestShouldDisplayDue(t *testing.T) {
	assert.False(t, ShouldDisplayDue(15, 0, date(2024, 1, 10)))
	assert.True(t, ShouldDisplayDue(15, 0, date(2024, 1, 20)))
	assert.True(t, ShouldDisplayDue(15, 5, date(2024, 1, 15)))
	assert.False(t, ShouldDisplayDue(0, 5, date(2024, 1, 15)))
}
