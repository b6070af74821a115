package workdays

import "time"

// PreviousWorkingDay returns the last weekday strictly before date, at 00:00
// in loc. One calendar day is subtracted first; a Saturday result moves back
// one more day and a Sunday result two more, so the answer is always Mon-Fri
// even when date falls on a Monday.
func PreviousWorkingDay(date time.Time, loc *time.Location) time.Time {
	prev := date.In(loc).AddDate(0, 0, -1)

	switch prev.Weekday() {
	case time.Saturday:
		prev = prev.AddDate(0, 0, -1)
	case time.Sunday:
		prev = prev.AddDate(0, 0, -2)
	}

	return time.Date(prev.Year(), prev.Month(), prev.Day(), 0, 0, 0, 0, loc)
}
