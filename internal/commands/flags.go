package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

// parseAmount parses a decimal flag value; empty is zero.
func parseAmount(flag, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, s, err)
	}
	return d, nil
}

// parseDay parses a YYYY-MM-DD flag value; empty is today.
func parseDay(flag, s string) (time.Time, error) {
	if s == "" {
		return model.DateOf(time.Now()), nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", flag, s)
	}
	return d, nil
}

// parseMonth parses a YYYY-MM flag value; empty is the current month.
func parseMonth(s string) (int, time.Month, error) {
	if s == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --month %q: expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
