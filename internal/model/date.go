package model

import "time"

// DateFormat is the layout used for calendar dates everywhere in ledgerly.
const DateFormat = "2006-01-02"

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// ClampDay returns the given day of year/month, pulled back to the month's
// last day when the month is shorter (day 31 in February is the 28th or 29th).
// month may be outside 1..12; it is normalized first.
func ClampDay(year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped moves t by n calendar months keeping day, clamped to the
// target month's length.
func AddMonthsClamped(t time.Time, n int, day int) time.Time {
	return ClampDay(t.Year(), t.Month()+time.Month(n), day)
}
