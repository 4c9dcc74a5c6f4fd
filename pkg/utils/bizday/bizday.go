// Package bizday implements business-day arithmetic for the two-slot
// calendar. Weekends carry zero valid slots, so range iteration skips
// Saturday and Sunday entirely rather than marking them unavailable.
package bizday

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/types"
)

// Iterate returns the business days in [start, end] in chronological order
func Iterate(start, end types.Date) []types.Date {
	var days []types.Date
	for d := start; d <= end; d = d.AddDays(1) {
		if d.IsBusinessDay() {
			days = append(days, d)
		}
	}
	return days
}

// Count returns the number of business days in [start, end]
func Count(start, end types.Date) int {
	return len(Iterate(start, end))
}

// MondayOf returns the Monday of the week containing d
func MondayOf(d types.Date) types.Date {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return d.AddDays(-offset)
}

// NextBusinessDay rolls d forward to the nearest business day, returning d
// itself when it already is one.
func NextBusinessDay(d types.Date) types.Date {
	for !d.IsBusinessDay() {
		d = d.AddDays(1)
	}
	return d
}

// RangeFor maps a view granularity and anchor date to a concrete
// [start, end] range:
//
//   - Daily: the anchor itself, rolled forward off a weekend
//   - Weekly: 5 business days from the anchor's Monday
//   - Biweekly: two such weeks
//   - Monthly: every day of the anchor's calendar month
//
// The returned bounds are calendar dates; iterate with Iterate to get the
// business days inside them.
func RangeFor(anchor types.Date, g types.Granularity) (types.Date, types.Date, error) {
	if err := anchor.Validate(); err != nil {
		return "", "", goerr.Wrap(err, "invalid anchor date")
	}

	switch g {
	case types.GranularityDaily:
		d := NextBusinessDay(anchor)
		return d, d, nil

	case types.GranularityWeekly:
		monday := MondayOf(anchor)
		return monday, monday.AddDays(4), nil

	case types.GranularityBiweekly:
		monday := MondayOf(anchor)
		return monday, monday.AddDays(11), nil

	case types.GranularityMonthly:
		t := anchor.Time()
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return types.DateOf(first), types.DateOf(last), nil

	default:
		return "", "", goerr.New("invalid granularity", goerr.V("granularity", g))
	}
}
