package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name       string
		dateStr    string
		expectedOk bool
		expectedY  int
		expectedM  time.Month
		expectedD  int
	}{
		{"ISO date", "2025-11-21", true, 2025, time.November, 21},
		{"ISO timestamp", "2025-11-21T14:30:00Z", true, 2025, time.November, 21},
		{"ISO timestamp with offset", "2025-11-21T16:30:00+02:00", true, 2025, time.November, 21},
		{"full timestamp", "2025-11-21 14:30:00", true, 2025, time.November, 21},
		{"day-first slashes", "21/11/2025", true, 2025, time.November, 21},
		{"European dots", "21.11.2025", true, 2025, time.November, 21},
		{"empty string", "", false, 0, 0, 0},
		{"garbage", "not a date", false, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			date, err := ParseDate(tc.dateStr)

			if tc.expectedOk {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedY, date.Year())
				assert.Equal(t, tc.expectedM, date.Month())
				assert.Equal(t, tc.expectedD, date.Day())
				assert.Equal(t, time.UTC, date.Location())
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseLedgerDate(t *testing.T) {
	tests := []struct {
		name       string
		cell       string
		expectedOk bool
		expected   time.Time
	}{
		{"two-digit year below pivot", "21/11/25", true, time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)},
		{"two-digit year above pivot", "21/11/73", true, time.Date(1973, 11, 21, 0, 0, 0, 0, time.UTC)},
		{"pivot boundary 49", "01/01/49", true, time.Date(2049, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"pivot boundary 50", "01/01/50", true, time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"four-digit year", "20/11/2025", true, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)},
		{"dotted separator", "20.11.25", true, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)},
		{"whitespace around cell", " 20/11/25 ", true, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)},
		{"impossible calendar date", "31/02/25", false, time.Time{}},
		{"month out of range", "10/13/25", false, time.Time{}},
		{"two parts only", "11/25", false, time.Time{}},
		{"summary row text", "Total", false, time.Time{}},
		{"empty cell", "", false, time.Time{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			date, err := ParseLedgerDate(tc.cell)

			if tc.expectedOk {
				assert.NoError(t, err)
				assert.True(t, tc.expected.Equal(date), "got %s", date)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFromUnixSeconds(t *testing.T) {
	date := FromUnixSeconds(1763682300) // 2025-11-20T23:45:00Z
	assert.Equal(t, 2025, date.Year())
	assert.Equal(t, time.November, date.Month())
	assert.Equal(t, 20, date.Day())
	assert.Equal(t, time.UTC, date.Location())
}

func TestDayUTC(t *testing.T) {
	instant := time.Date(2025, 11, 20, 23, 45, 12, 999, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), DayUTC(instant))

	// An instant in a positive-offset zone can belong to the previous UTC day.
	tz := time.FixedZone("IST", 2*60*60)
	late := time.Date(2025, 11, 21, 1, 30, 0, 0, tz)
	assert.Equal(t, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), DayUTC(late))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 11, 20, 0, 1, 0, 0, time.UTC)
	b := time.Date(2025, 11, 20, 23, 59, 0, 0, time.UTC)
	c := time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, c))
}
