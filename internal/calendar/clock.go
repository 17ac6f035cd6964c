package calendar

import "time"

// Clock supplies the current day. Core calculators take "today" as a
// parameter; only command wiring asks a Clock.
type Clock interface {
	Today() Date
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

// Today returns the local calendar day.
func (SystemClock) Today() Date { return FromTime(time.Now()) }

// Now returns the current instant.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

// Today returns the fixed day.
func (c FixedClock) Today() Date { return FromTime(c.At) }

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.At }
