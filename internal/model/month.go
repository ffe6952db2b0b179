package model

import (
	"fmt"
	"strings"
	"time"
)

// Month is a calendar month, the projection's unit of time.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// FirstDay returns the first day of the month at 00:00 UTC.
func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of calendar days in the month.
func (m Month) Days() int {
	// Day 0 of the following month normalises to the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths shifts the month by n (n may be negative).
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.FirstDay().AddDate(0, n, 0))
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MonthRange returns every month from start to end inclusive.
func MonthRange(start, end Month) []Month {
	if end.Before(start) {
		return nil
	}
	n := (end.Year-start.Year)*12 + int(end.Month-start.Month) + 1
	out := make([]Month, 0, n)
	for m := start; !end.Before(m); m = m.AddMonths(1) {
		out = append(out, m)
	}
	return out
}
