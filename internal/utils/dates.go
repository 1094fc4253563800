package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used throughout the journal
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD in t's location
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the local calendar date
func Today() string {
	return FormatDate(time.Now())
}

// AddDays shifts a YYYY-MM-DD date by n days
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DateRange returns every date from start to end inclusive.
// maxDays bounds the result to protect callers from huge ranges.
func DateRange(start, end string, maxDays int) ([]string, error) {
	s, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	if e.Before(s) {
		return nil, fmt.Errorf("end date %s is before start date %s", end, start)
	}

	days := int(e.Sub(s).Hours()/24) + 1
	if maxDays > 0 && days > maxDays {
		return nil, fmt.Errorf("date range of %d days exceeds the maximum of %d", days, maxDays)
	}

	out := make([]string, 0, days)
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, FormatDate(d))
	}
	return out, nil
}
