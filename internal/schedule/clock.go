package schedule

import "time"

// Clock supplies the current time so "today" can be fixed in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.At }

// Today returns the clock's current calendar day.
func Today(c Clock) time.Time {
	return Day(c.Now())
}
