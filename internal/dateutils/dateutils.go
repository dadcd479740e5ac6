// Package dateutils provides common date parsing and normalization used
// throughout the sync engine. Provider APIs deliver timestamps as unix
// seconds or ISO strings, while the ledger stores human-formatted,
// day-first strings with two-digit years. Everything is normalized to an
// absolute UTC instant here.
package dateutils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	LayoutISO      = "2006-01-02"
	LayoutISOTime  = "2006-01-02T15:04:05Z07:00"
	LayoutFull     = "2006-01-02 15:04:05"
	LayoutDayFirst = "02/01/2006"
	LayoutEuropean = "02.01.2006"
)

// TwoDigitYearPivot is the cutoff for expanding two-digit years:
// yy < 50 becomes 20yy, otherwise 19yy.
const TwoDigitYearPivot = 50

// CommonFormats is the list of formats tried when parsing provider dates.
// Day-first forms come before month-first forms since every supported
// provider and the ledger itself use day-first conventions.
var CommonFormats = []string{
	LayoutISOTime,
	time.RFC3339Nano,
	LayoutFull,
	LayoutISO,
	LayoutDayFirst,
	LayoutEuropean,
	"02-01-2006",
	"2/1/2006",
}

// ParseDate attempts to parse a provider date string using the common
// formats and returns the result normalized to UTC.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// ParseLedgerDate parses a date cell as the ledger writes it: day-first,
// with either a four-digit or a two-digit year. Two-digit years expand
// with the pivot rule ("21/11/25" is 2025, "21/11/73" is 1973). The
// result is midnight UTC, since ledger cells carry no time component.
func ParseLedgerDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}

	sep := "/"
	if !strings.Contains(cell, "/") && strings.Contains(cell, ".") {
		sep = "."
	}

	parts := strings.Split(cell, sep)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("not a day-first date: %s", cell)
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in %q: %w", cell, err)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month in %q: %w", cell, err)
	}
	yearStr := strings.TrimSpace(parts[2])
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in %q: %w", cell, err)
	}
	if len(yearStr) == 2 {
		year = ExpandTwoDigitYear(year)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date out of range: %s", cell)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. 31/02 becomes 03/03), which would
	// silently accept an invalid cell. Reject anything that moved.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("invalid calendar date: %s", cell)
	}

	return t, nil
}

// ExpandTwoDigitYear applies the pivot rule to a two-digit year.
func ExpandTwoDigitYear(yy int) int {
	if yy < TwoDigitYearPivot {
		return 2000 + yy
	}
	return 1900 + yy
}

// FromUnixSeconds converts a unix-seconds timestamp to a UTC instant.
func FromUnixSeconds(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// DayUTC truncates an instant to midnight UTC, the granularity at which
// the temporal anchor compares dates.
func DayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two instants fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DayUTC(a).Equal(DayUTC(b))
}
