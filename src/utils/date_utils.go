package utils

import (
	"time"
)

const (
	// LedgerDateFormat is the day-first date used in IG ledger exports.
	LedgerDateFormat = "02/01/06"
	// ActivityDateFormat is the timestamp used in options activity exports.
	ActivityDateFormat = "02/01/2006 3:04:05 PM"
	// ISODateFormat is used for CLI date flags.
	ISODateFormat = "2006-01-02"
	// DisplayDateFormat is the AU-style date used in formatted output.
	DisplayDateFormat = "02/01/2006"
)

// ParseLedgerDate parses a dd/mm/yy ledger date.
func ParseLedgerDate(s string) (time.Time, error) {
	return time.Parse(LedgerDateFormat, s)
}

// ParseActivityDate parses a dd/mm/yyyy hh:mm:ss AM activity timestamp.
func ParseActivityDate(s string) (time.Time, error) {
	return time.Parse(ActivityDateFormat, s)
}

// ParseISODate parses a yyyy-mm-dd date, as taken on the command line.
func ParseISODate(s string) (time.Time, error) {
	return time.Parse(ISODateFormat, s)
}

// FormatDMY renders a date as dd/mm/yyyy.
func FormatDMY(t time.Time) string {
	return t.Format(DisplayDateFormat)
}

// FinancialYearAU returns the inclusive start and end dates of the
// Australian financial year ending in the given calendar year
// (1 July of the prior year through 30 June).
func FinancialYearAU(endYear int) (time.Time, time.Time) {
	start := time.Date(endYear-1, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.June, 30, 0, 0, 0, 0, time.UTC)
	return start, end
}

// DayOf strips the time-of-day component, leaving midnight on the same
// calendar day in the same location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
