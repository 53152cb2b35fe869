// Package schedule computes recurrence dates and due-ness for planned
// transactions and bills. All functions are pure and work on calendar days.
package schedule

import (
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// Day truncates t to its calendar day at UTC midnight, keeping t's own
// year, month and day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOn returns the given day of a month, clamped to the month's last day.
func DateOn(year int, month time.Month, day int) time.Time {
	// Normalize month overflow (e.g. month 13) before clamping.
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := DaysIn(first.Year(), first.Month())
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// NextOccurrence returns the occurrence that follows the last materialized
// one. The base is lastCreated when set, otherwise scheduled.
//
// Monthly and yearly steps keep the scheduled day of month and clamp it to
// the target month's length, so Jan 31 advances to Feb 29 (leap year), then
// Mar 31. A none recurrence returns the base unchanged.
func NextOccurrence(scheduled time.Time, recurrence model.Recurrence, lastCreated *time.Time) time.Time {
	base := Day(scheduled)
	if lastCreated != nil {
		base = Day(*lastCreated)
	}
	anchor := scheduled.Day()

	switch recurrence {
	case model.RecurrenceDaily:
		return base.AddDate(0, 0, 1)
	case model.RecurrenceWeekly:
		return base.AddDate(0, 0, 7)
	case model.RecurrenceMonthly:
		return DateOn(base.Year(), base.Month()+1, anchor)
	case model.RecurrenceYearly:
		return DateOn(base.Year()+1, base.Month(), anchor)
	case model.RecurrenceNone:
		return base
	}
	return base
}

// IsDue reports whether date falls on or before today. Time of day is ignored.
func IsDue(date, today time.Time) bool {
	return !Day(date).After(Day(today))
}

// HasReachedEndDate reports whether next lies strictly after endDate.
// Non-recurring schedules and schedules without an end date never end this way.
func HasReachedEndDate(next time.Time, endDate *time.Time, recurrence model.Recurrence) bool {
	if !recurrence.IsRecurring() || endDate == nil {
		return false
	}
	return Day(next).After(Day(*endDate))
}

// Occurrences lists the schedule's dates within [from, to], starting at
// start. Later dates keep the day of month of scheduled, as NextOccurrence
// does. The list is capped at limit entries.
func Occurrences(scheduled, start time.Time, recurrence model.Recurrence, endDate *time.Time, from, to time.Time, limit int) []time.Time {
	from, to = Day(from), Day(to)
	var dates []time.Time

	current := Day(start)
	for len(dates) < limit && !current.After(to) {
		if endDate != nil && current.After(Day(*endDate)) {
			break
		}
		if !current.Before(from) {
			dates = append(dates, current)
		}
		if !recurrence.IsRecurring() {
			break
		}
		c := current
		current = NextOccurrence(scheduled, recurrence, &c)
	}
	return dates
}
