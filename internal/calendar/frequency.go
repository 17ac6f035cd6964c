package calendar

import (
	"fmt"
	"strings"
)

// Frequency is a recurrence cadence.
type Frequency string

// Supported cadences. An empty frequency steps like Monthly.
const (
	Weekly    Frequency = "Weekly"
	Biweekly  Frequency = "Biweekly"
	Monthly   Frequency = "Monthly"
	Quarterly Frequency = "Quarterly"
	Annually  Frequency = "Annually"
	OneTime   Frequency = "One-Time"
)

// ParseFrequency maps user input onto a Frequency, case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly":
		return Weekly, nil
	case "biweekly", "bi-weekly", "fortnightly":
		return Biweekly, nil
	case "monthly", "":
		return Monthly, nil
	case "quarterly":
		return Quarterly, nil
	case "annually", "yearly", "annual":
		return Annually, nil
	case "one-time", "onetime", "once":
		return OneTime, nil
	default:
		return "", fmt.Errorf("unknown frequency %q", s)
	}
}

// Recurring reports whether f repeats.
func (f Frequency) Recurring() bool {
	return f != OneTime
}

// PaychecksPerMonth is the rough paycheck count used when no due date is
// available to count real paydays.
func (f Frequency) PaychecksPerMonth() int {
	switch f {
	case Weekly:
		return 4
	case Biweekly:
		return 2
	default:
		return 1
	}
}

// Step moves d by k whole periods of f, measured from d itself. Month-based
// steps clip to the end of shorter months, but because every step is taken
// from d the original day comes back: Step(Jan 31, Monthly, 2) is Mar 31,
// where two Next calls give Mar 29. A one-time frequency does not move.
func Step(d Date, f Frequency, k int) Date {
	switch f {
	case Weekly:
		return d.AddDays(7 * k)
	case Biweekly:
		return d.AddDays(14 * k)
	case Quarterly:
		return d.AddMonths(3 * k)
	case Annually:
		return d.AddMonths(12 * k)
	case OneTime:
		return d
	default:
		return d.AddMonths(k)
	}
}

// Next steps d forward by one period of f.
func Next(d Date, f Frequency) Date {
	return Step(d, f, 1)
}

// Previous steps d backward by one period of f. It mirrors Next, so
// Previous(Next(d, f), f) == d except where month clipping loses the
// original day (Jan 31 -> Feb 29 -> Jan 29).
func Previous(d Date, f Frequency) Date {
	return Step(d, f, -1)
}

// maxAdvance bounds NextAfter for dates far in the past.
const maxAdvance = 1000

// NextAfter returns the first occurrence of the series anchored at d that is
// strictly after today, always advancing at least one step. Occurrences are
// whole offsets from d, so a month-end anchor is not eroded by clipping.
//
// A one-time series has no next occurrence; d is returned unchanged and the
// caller decides how to retire it.
func NextAfter(d Date, f Frequency, today Date) Date {
	if d.IsZero() || !f.Recurring() {
		return d
	}
	next := Step(d, f, 1)
	for k := 2; k <= maxAdvance && !next.After(today); k++ {
		next = Step(d, f, k)
	}
	return next
}
