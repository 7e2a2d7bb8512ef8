package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func toCents(field string, d decimal.Decimal) (int64, error) {
	c := d.Shift(2)
	if !c.Equal(c.Truncate(0)) {
		return 0, fmt.Errorf("%s %s has more than 2 decimal places", field, d)
	}
	return c.IntPart(), nil
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func nullCents(field string, d *decimal.Decimal) (sql.NullInt64, error) {
	if d == nil {
		return sql.NullInt64{}, nil
	}
	c, err := toCents(field, *d)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: c, Valid: true}, nil
}

func fromNullCents(n sql.NullInt64) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := fromCents(n.Int64)
	return &d
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateFormat)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

func parseRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing rate %q: %w", s, err)
	}
	return d, nil
}

// cents converts several amounts for one row, keeping the first error.
type cents struct {
	err error
}

func (c *cents) of(field string, d decimal.Decimal) int64 {
	if c.err != nil {
		return 0
	}
	v, err := toCents(field, d)
	if err != nil {
		c.err = err
	}
	return v
}
