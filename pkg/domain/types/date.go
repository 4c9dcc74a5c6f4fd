package types

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the canonical wire and storage format for Date
const DateLayout = "2006-01-02"

// Date represents a calendar date as "YYYY-MM-DD". The string form sorts
// lexicographically in chronological order, so Date values compare with
// plain string operators and serve directly as map keys.
type Date string

// ParseDate parses a "YYYY-MM-DD" string into a Date
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", goerr.Wrap(err, "invalid date", goerr.V("date", s))
	}
	return Date(s), nil
}

// DateOf converts a time.Time to a Date, dropping the time component
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Validate checks if the Date is a well-formed calendar date
func (d Date) Validate() error {
	_, err := ParseDate(string(d))
	return err
}

// Time returns the Date as a time.Time at midnight UTC
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Weekday returns the day of the week
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// IsBusinessDay reports whether the date falls on Monday through Friday
func (d Date) IsBusinessDay() bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// AddDays returns the date shifted by n calendar days
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Year returns the calendar year of the date
func (d Date) Year() int {
	return d.Time().Year()
}

// String returns the string representation of the date
func (d Date) String() string {
	return string(d)
}
