// Package datetime provides date utility functions and the serialized date
// type used in payment schedules.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/constants"
)

// DateLayout is the format used for payment dates in serialized schedules.
const DateLayout = constants.DateLayout

// Date wraps time.Time so that payment dates serialize as ISO-8601 date
// strings rather than full RFC 3339 timestamps.
type Date struct {
	time.Time
}

// NewDate constructs a Date truncated to day precision in UTC.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON formats the date as an ISO-8601 date string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.Format(DateLayout))), nil
}

// UnmarshalJSON parses an ISO-8601 date, tolerating full RFC 3339
// timestamps produced by other serializers.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", s, err)
		}
	}
	*d = NewDate(t)
	return nil
}

// MustParseTime parses a date string using the given layout and panics on
// error. This is intended for use in tests where the date string is known
// to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// AdvanceDate returns the date offset from start by the given number of
// intervals, where one interval is months calendar months plus days days.
// Monthly payment dates advance by calendar month so that a payment on the
// 15th stays on the 15th; weekly and bi-weekly dates advance by fixed runs
// of days.
func AdvanceDate(start time.Time, months, days, intervals int) time.Time {
	return start.AddDate(0, months*intervals, days*intervals)
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate, secondDate time.Time) bool {
	return firstDate.Before(secondDate)
}
