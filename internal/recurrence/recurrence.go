// Package recurrence expands recurring items into concrete dates inside bounded windows.
//
// Every function here is best-effort: a missing date yields an empty result
// rather than an error, and every walk is capped so pathological inputs
// (a start date decades in the past, a one-time cadence) always terminate.
package recurrence

import "github.com/Veraticus/the-payday-must-flow/internal/calendar"

const (
	// MaxOccurrenceSteps caps OccurrencesInWindow.
	MaxOccurrenceSteps = 50
	// MaxPaydaySteps caps each phase of the payday walks.
	MaxPaydaySteps = 100
)

// OccurrencesInWindow steps forward from start by freq and returns every date
// in [windowStart, windowStart+days]. Dates before windowStart are stepped
// over but not returned. At most MaxOccurrenceSteps steps are taken.
func OccurrencesInWindow(start calendar.Date, freq calendar.Frequency, windowStart calendar.Date, days int) []calendar.Date {
	if start.IsZero() || windowStart.IsZero() || days < 0 {
		return nil
	}
	windowEnd := windowStart.AddDays(days)

	var out []calendar.Date
	current := start
	for i := 0; i < MaxOccurrenceSteps; i++ {
		if current.After(windowEnd) {
			break
		}
		if !current.Before(windowStart) {
			out = append(out, current)
		}
		if !freq.Recurring() {
			break
		}
		current = calendar.Next(current, freq)
	}
	return out
}

// Paydays returns the dates aligned with reference on payFreq's cadence that
// fall in [start, end], in order.
//
// The reference pay date may sit anywhere relative to the window. Every
// candidate is a whole number of periods away from reference, so a
// month-end reference keeps its day through short months.
func Paydays(start, end, reference calendar.Date, payFreq calendar.Frequency) []calendar.Date {
	var out []calendar.Date
	walkPaydays(start, end, reference, payFreq, func(d calendar.Date) {
		out = append(out, d)
	})
	return out
}

// CountPaydays returns len(Paydays(start, end, reference, payFreq)) without
// allocating the list.
func CountPaydays(start, end, reference calendar.Date, payFreq calendar.Frequency) int {
	n := 0
	walkPaydays(start, end, reference, payFreq, func(calendar.Date) { n++ })
	return n
}

// PaydateStrings is Paydays rendered as date keys, used for explanations.
func PaydateStrings(start, end, reference calendar.Date, payFreq calendar.Frequency) []string {
	days := Paydays(start, end, reference, payFreq)
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}

func walkPaydays(start, end, reference calendar.Date, payFreq calendar.Frequency, visit func(calendar.Date)) {
	if start.IsZero() || end.IsZero() || reference.IsZero() || end.Before(start) {
		return
	}
	if !payFreq.Recurring() {
		if reference.Between(start, end) {
			visit(reference)
		}
		return
	}

	k := 0
	for i := 0; i < MaxPaydaySteps && calendar.Step(reference, payFreq, k).After(start); i++ {
		k--
	}

	for i := 0; i < MaxPaydaySteps; i++ {
		current := calendar.Step(reference, payFreq, k)
		if current.After(end) {
			break
		}
		if !current.Before(start) {
			visit(current)
		}
		k++
	}
}
