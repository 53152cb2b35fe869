package model

import (
	"fmt"
	"strings"
)

// Recurrence describes how often a planned transaction or bill repeats.
type Recurrence string

// Supported recurrence schedules.
const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

// Valid reports whether r is a known recurrence.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// IsRecurring reports whether r repeats at all. An empty recurrence is treated as none.
func (r Recurrence) IsRecurring() bool {
	return r != RecurrenceNone && r != ""
}

// ParseRecurrence converts user input into a Recurrence.
func ParseRecurrence(s string) (Recurrence, error) {
	r := Recurrence(strings.ToLower(strings.TrimSpace(s)))
	if r == "" || r == "once" {
		return RecurrenceNone, nil
	}
	if !r.Valid() {
		return "", fmt.Errorf("unknown recurrence %q (want none, daily, weekly, monthly or yearly)", s)
	}
	return r, nil
}
