// Package rates resolves the annual interest rate in force on a date from a
// loan's dated rate history.
package rates

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerly/internal/model"
)

// Sort returns a copy of history ordered by EffectiveDate. Entries sharing a
// date keep their original order, so the later one wins in Effective.
func Sort(history []model.InterestRate) []model.InterestRate {
	out := make([]model.InterestRate, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveDate.Before(out[j].EffectiveDate)
	})
	return out
}

// Effective returns the rate of the latest entry with EffectiveDate <= date.
// It returns fallback when no entry is in force yet.
func Effective(history []model.InterestRate, date time.Time, fallback decimal.Decimal) decimal.Decimal {
	sorted := Sort(history)
	day := model.DateOf(date)
	// First index whose effective date is after day.
	i := sort.Search(len(sorted), func(i int) bool {
		return model.DateOf(sorted[i].EffectiveDate).After(day)
	})
	if i == 0 {
		return fallback
	}
	return sorted[i-1].Rate
}

// Segment is a half-open date range [Start, End) with a constant rate.
type Segment struct {
	Start time.Time
	End   time.Time
	Rate  decimal.Decimal
}

// Days returns the number of calendar days covered by the segment.
func (s Segment) Days() int {
	return int(s.End.Sub(s.Start).Hours() / 24)
}

// Segments splits [from, to) at every rate change inside it.
func Segments(history []model.InterestRate, from, to time.Time, fallback decimal.Decimal) []Segment {
	start := model.DateOf(from)
	end := model.DateOf(to)
	if !start.Before(end) {
		return nil
	}

	var segs []Segment
	cur := Segment{Start: start, Rate: Effective(history, start, fallback)}
	for _, r := range Sort(history) {
		d := model.DateOf(r.EffectiveDate)
		if !d.After(start) || !d.Before(end) {
			continue
		}
		if d.Equal(cur.Start) {
			cur.Rate = r.Rate
			continue
		}
		cur.End = d
		segs = append(segs, cur)
		cur = Segment{Start: d, Rate: r.Rate}
	}
	cur.End = end
	return append(segs, cur)
}
