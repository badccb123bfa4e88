package library

import "time"

const (
	// MaxItemsPerMember caps how many items a member may hold at once.
	MaxItemsPerMember = 2
	// LoanPeriodDays is the number of days an item can be kept without a fine.
	LoanPeriodDays = 7
	// FinePerDay is charged for every whole day past the loan period.
	FinePerDay = 5
)

// ComputeFine returns the fine for an item issued at issued and returned at returned.
// Only whole elapsed days count, measured on the local wall clock like the
// stored timestamps, so a daylight saving change does not shift the count.
func ComputeFine(issued, returned time.Time) int {
	days := int(wallClock(returned).Sub(wallClock(issued)) / (24 * time.Hour))
	if days > LoanPeriodDays {
		return (days - LoanPeriodDays) * FinePerDay
	}
	return 0
}

// wallClock drops the zone offset of t as seen in time.Local.
func wallClock(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
