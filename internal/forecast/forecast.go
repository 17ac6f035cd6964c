// Package forecast projects the liquid balance day by day from scheduled
// incomes and bucket due dates.
package forecast

import (
	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
	"github.com/Veraticus/the-payday-must-flow/internal/recurrence"
)

const (
	// DefaultDays is the usual forecast horizon.
	DefaultDays = 30
	// MaxDays bounds the horizon.
	MaxDays = 90
	// lookaheadDays is the minimum occurrence window per item.
	lookaheadDays = 35
)

// Point is one day of the forecast.
type Point struct {
	Date    calendar.Date
	Net     money.Cents
	Balance money.Cents
}

// Input carries everything Project reads. Incomes should already include
// any derived partner incomes.
type Input struct {
	Today    calendar.Date
	Accounts []model.Account
	Incomes  []model.Income
	Buckets  []model.Bucket
	Days     int
}

// StartingBalance sums checking and savings balances.
func StartingBalance(accounts []model.Account) money.Cents {
	var total money.Cents
	for _, a := range accounts {
		if !a.Deleted && a.IsLiquid() {
			total += a.CurrentBalance
		}
	}
	return total
}

// Project returns one point per day for days [today, today+Days). Items
// without a date contribute nothing.
func Project(in Input) []Point {
	days := in.Days
	if days <= 0 {
		days = DefaultDays
	}
	if days > MaxDays {
		days = MaxDays
	}
	if in.Today.IsZero() {
		return nil
	}

	window := max(days, lookaheadDays)
	net := make(map[string]money.Cents)

	for _, inc := range in.Incomes {
		if inc.Deleted || inc.Amount == 0 {
			continue
		}
		for _, d := range recurrence.OccurrencesInWindow(inc.NextDate, inc.Frequency, in.Today, window) {
			net[d.String()] += inc.Amount
		}
	}
	for _, b := range in.Buckets {
		if b.Deleted || b.OwedOnly() || b.Amount == 0 || b.DueDate.IsZero() {
			continue
		}
		start := b.DueDate
		if b.IsPaid {
			if !b.Frequency.Recurring() {
				continue
			}
			start = calendar.Next(start, b.Frequency)
		}
		for _, d := range recurrence.OccurrencesInWindow(start, b.Frequency, in.Today, window) {
			net[d.String()] -= b.Amount
		}
	}

	points := make([]Point, 0, days)
	balance := StartingBalance(in.Accounts)
	for i := 0; i < days; i++ {
		d := in.Today.AddDays(i)
		change := net[d.String()]
		balance += change
		points = append(points, Point{Date: d, Net: change, Balance: balance})
	}
	return points
}

// LowPoint returns the lowest balance in the forecast and the first day it
// occurs. ok is false for an empty forecast.
func LowPoint(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	low := points[0]
	for _, p := range points[1:] {
		if p.Balance < low.Balance {
			low = p
		}
	}
	return low, true
}
