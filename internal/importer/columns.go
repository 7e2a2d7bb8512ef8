package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ColumnParser reads CSV exports whose layout is fixed by column position.
// Column indexes are zero-based; TypeCol < 0 means the export has none.
type ColumnParser struct {
	Name       string
	Fields     int
	DateLayout string
	DateCol    int
	DescCol    int
	AmountCol  int
	TypeCol    int
	// Header is true when the first record is always a header. Otherwise a
	// first record whose date does not parse is taken as one.
	Header bool
}

// Chase is the Chase checking account export: Details, Posting Date,
// Description, Amount, Type, Balance, Check or Slip #.
var Chase = &ColumnParser{
	Name:       "chase",
	Fields:     7,
	DateLayout: "01/02/2006",
	DateCol:    1,
	DescCol:    2,
	AmountCol:  3,
	TypeCol:    4,
	Header:     true,
}

// Simple is "date,description,amount" with ISO dates and signed amounts.
var Simple = &ColumnParser{
	Name:       "simple",
	Fields:     3,
	DateLayout: "2006-01-02",
	DateCol:    0,
	DescCol:    1,
	AmountCol:  2,
	TypeCol:    -1,
}

// Format returns the parser name.
func (p *ColumnParser) Format() string { return p.Name }

// Parse reads all records and converts them to rows.
func (p *ColumnParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = p.Fields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", p.Name, err)
	}
	if p.Header && len(records) > 0 {
		records = records[1:]
	}

	var rows []Row
	for i, rec := range records {
		line := i + 1
		if p.Header {
			line++
		}
		row, err := p.parseRecord(rec)
		if err != nil {
			if i == 0 && !p.Header && isDateError(err) {
				continue
			}
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type dateError struct{ err error }

func (e dateError) Error() string { return e.err.Error() }
func (e dateError) Unwrap() error { return e.err }

func isDateError(err error) bool {
	_, ok := err.(dateError)
	return ok
}

func (p *ColumnParser) parseRecord(rec []string) (Row, error) {
	rawDate := strings.TrimSpace(rec[p.DateCol])
	date, err := time.Parse(p.DateLayout, rawDate)
	if err != nil {
		return Row{}, dateError{fmt.Errorf("parsing date %q: %w", rawDate, err)}
	}

	rawAmount := strings.ReplaceAll(strings.TrimSpace(rec[p.AmountCol]), ",", "")
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", rec[p.AmountCol], err)
	}

	row := Row{
		Date:        date,
		Description: strings.TrimSpace(rec[p.DescCol]),
		Amount:      amount,
	}
	if p.TypeCol >= 0 {
		row.Type = rec[p.TypeCol]
	}
	row.Reference = reference(p.Name, date, row.Description)
	return row, nil
}

// reference builds an ID like chase_20250103_GITHUBPROS from the date and
// the first ten alphanumerics of the description.
func reference(format string, date time.Time, desc string) string {
	var b strings.Builder
	for _, r := range desc {
		if b.Len() == 10 {
			break
		}
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return format + "_" + date.Format("20060102") + "_" + b.String()
}
