// Package timeutil provides calendar helpers for roster analytics.
// Birth dates and graduation years are calendar values, so everything here
// works in a single fixed zone and never depends on the host timezone.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// FormatDate is the ISO-8601 calendar date layout (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// Zone is the timezone used for "today" when deriving the current year.
// Defaults to UTC, the CLI may override it from configuration.
var Zone = time.UTC

// Now returns the current time in Zone.
func Now() time.Time {
	return time.Now().In(Zone)
}

// CurrentYear returns the calendar year of Now.
func CurrentYear() int {
	return Now().Year()
}

// LoadZone resolves an IANA timezone name. An empty name yields UTC.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timeutil: unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// ParseDate parses a strict ISO calendar date (YYYY-MM-DD).
// Out-of-range days such as 2023-02-30 are rejected.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, time.UTC)
}

// BirthMonth returns the calendar month of an ISO date string.
// ok is false when the value cannot be parsed.
func BirthMonth(value string) (month time.Month, ok bool) {
	t, err := ParseDate(value)
	if err != nil {
		return 0, false
	}
	return t.Month(), true
}

// ValidMonth reports whether m is a calendar month number (1-12).
func ValidMonth(m int) bool {
	return m >= int(time.January) && m <= int(time.December)
}
