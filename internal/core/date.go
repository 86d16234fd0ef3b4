package core

import (
	"strings"
	"time"
)

// Date is a calendar date with day precision. Entry dates that cannot be
// parsed produce the zero value (Valid == false); such records are still
// counted in totals but never participate in date ordering or window
// membership.
type Date struct {
	time.Time
	Valid bool
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// NewDate creates a valid Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// ParseDate parses an entry date string, truncating any time-of-day part.
// Unparseable input yields the invalid-date marker rather than an error.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return NewDate(y, int(m), d)
		}
	}
	return Date{}
}

// Key returns the date in YYYY-MM-DD form, or "" for invalid dates.
func (d Date) Key() string {
	if !d.Valid {
		return ""
	}
	return d.Format("2006-01-02")
}

// DaysBetween returns the whole days from a to b. Both dates must be valid.
func DaysBetween(a, b Date) int {
	return int(b.Sub(a.Time).Hours() / 24)
}
