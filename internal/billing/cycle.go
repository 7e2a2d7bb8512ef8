// Package billing resolves credit card billing cycles and due dates from
// day-of-month configuration.
package billing

import (
	"time"

	"github.com/cleared-dev/ledgerly/internal/model"
)

// Period is the active billing cycle [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
	// StatementDate is this month's statement date, clamped to the month length.
	StatementDate time.Time
	// IsAfterStatementDate is true once this month's statement has been generated.
	IsAfterStatementDate bool
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d time.Time) bool {
	day := model.DateOf(d)
	return !day.Before(p.Start) && day.Before(p.End)
}

// ValidateDay reports an out-of-range day-of-month setting.
func ValidateDay(field string, day int) error {
	if day < 1 || day > 31 {
		return model.ValidationError{Field: field, Reason: "must be between 1 and 31"}
	}
	return nil
}

// StatementDate returns the statement date for year/month, clamped to the
// month's last day.
func StatementDate(year int, month time.Month, statementDay int) time.Time {
	return model.ClampDay(year, month, statementDay)
}

// StatementPeriod resolves the active billing cycle for ref. Before this
// month's statement date the cycle is [last, current); on or after it, the
// cycle is [current, next).
func StatementPeriod(statementDay int, ref time.Time) (Period, error) {
	if err := ValidateDay("statement_day", statementDay); err != nil {
		return Period{}, err
	}
	day := model.DateOf(ref)
	current := StatementDate(day.Year(), day.Month(), statementDay)

	p := Period{StatementDate: current}
	if day.Before(current) {
		p.Start = StatementDate(day.Year(), day.Month()-1, statementDay)
		p.End = current
	} else {
		p.IsAfterStatementDate = true
		p.Start = current
		p.End = StatementDate(day.Year(), day.Month()+1, statementDay)
	}
	return p, nil
}

// DueDate returns the payment due date of the most recently generated
// statement. The due date shares the statement's month when dueDay is on or
// after statementDay, otherwise it falls in the following month.
func DueDate(statementDay, dueDay int, ref time.Time) (time.Time, error) {
	if err := ValidateDay("due_day", dueDay); err != nil {
		return time.Time{}, err
	}
	p, err := StatementPeriod(statementDay, ref)
	if err != nil {
		return time.Time{}, err
	}
	stmt := p.Start
	if dueDay >= statementDay {
		return model.ClampDay(stmt.Year(), stmt.Month(), dueDay), nil
	}
	return model.ClampDay(stmt.Year(), stmt.Month()+1, dueDay), nil
}

// ShouldDisplayDue reports whether the current month's statement exists yet;
// due amounts are hidden before it is generated. dueDay is accepted for
// symmetry with DueDate and may be zero.
func ShouldDisplayDue(statementDay, dueDay int, ref time.Time) bool {
	p, err := StatementPeriod(statementDay, ref)
	if err != nil {
		return false
	}
	return p.IsAfterStatementDate
}
