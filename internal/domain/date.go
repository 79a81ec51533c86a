package domain

import "time"

// DateLayout is the ledger key format for calendar days.
const DateLayout = "2006-01-02"

// LocalDate formats t as a local-timezone YYYY-MM-DD string. All daily
// bookkeeping is keyed on local days, not UTC.
func LocalDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight returns the start of t's local calendar day.
func Midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
