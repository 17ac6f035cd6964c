// Package debt simulates month-by-month debt payoff under the snowball and
// avalanche strategies.
//
// Unlike the rest of the engine, amounts here are decimal dollars rather
// than cents, because monthly interest is fractional. Convert with
// money.Cents.Decimal and money.FromDecimal at the edges.
package debt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
)

// DefaultMaxMonths is the simulation horizon, 30 years.
const DefaultMaxMonths = 360

var (
	epsilon     = decimal.New(1, -2)
	twelve      = decimal.NewFromInt(12)
	hundred     = decimal.NewFromInt(100)
	centsPlaces = int32(2)
)

// Strategy orders debts for the surplus payment.
type Strategy string

// Strategies.
const (
	// Snowball pays the smallest original balance first.
	Snowball Strategy = "snowball"
	// Avalanche pays the highest rate first.
	Avalanche Strategy = "avalanche"
)

// ParseStrategy maps user input onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "snowball":
		return Snowball, nil
	case "avalanche":
		return Avalanche, nil
	default:
		return "", fmt.Errorf("unknown debt strategy %q", s)
	}
}

// Debt is one balance to pay down. Rate is the annual percentage rate.
type Debt struct {
	ID             string
	Name           string
	Balance        decimal.Decimal
	Rate           decimal.Decimal
	MinimumPayment decimal.Decimal
	Included       bool
}

// Options tunes a simulation.
type Options struct {
	Today    calendar.Date
	Extra    decimal.Decimal
	Strategy Strategy
	// Cascade lets surplus left over after the target debt is paid off flow
	// to the next debt in the same month. Without it, the surplus goes to
	// exactly one debt per month.
	Cascade   bool
	MaxMonths int
}

// Month is one simulated month.
type Month struct {
	Date     calendar.Date
	Payments map[string]decimal.Decimal
	Balances map[string]decimal.Decimal
	Target   string
	Interest decimal.Decimal
	Index    int
}

// Result summarizes a simulation.
type Result struct {
	PayoffDate    calendar.Date
	TotalInterest decimal.Decimal
	PayoffOrder   []string
	Schedule      []Month
	Months        int
	DebtFree      bool
}

type state struct {
	Debt
	original decimal.Decimal
	balance  decimal.Decimal
	paid     bool
}

// Simulate runs the payoff loop until every included debt is paid or the
// horizon is reached.
func Simulate(debts []Debt, opts Options) Result {
	maxMonths := opts.MaxMonths
	if maxMonths <= 0 {
		maxMonths = DefaultMaxMonths
	}

	var live []*state
	for _, d := range debts {
		if !d.Included || d.Balance.LessThanOrEqual(epsilon) {
			continue
		}
		live = append(live, &state{Debt: d, original: d.Balance, balance: d.Balance})
	}

	res := Result{TotalInterest: decimal.Zero, DebtFree: true, PayoffDate: opts.Today}
	if len(live) == 0 {
		return res
	}
	res.DebtFree = false

	order := prioritized(live, opts.Strategy)
	freed := decimal.Zero

	for m := 1; m <= maxMonths; m++ {
		month := Month{
			Index:    m,
			Date:     opts.Today.AddMonths(m),
			Payments: make(map[string]decimal.Decimal),
			Balances: make(map[string]decimal.Decimal),
			Interest: decimal.Zero,
		}
		surplus := opts.Extra.Add(freed)

		for _, s := range live {
			if s.paid {
				continue
			}
			interest := s.balance.Mul(s.Rate).Div(hundred).Div(twelve).Round(centsPlaces)
			s.balance = s.balance.Add(interest)
			month.Interest = month.Interest.Add(interest)

			payment := decimal.Min(s.MinimumPayment, s.balance)
			s.balance = s.balance.Sub(payment)
			month.Payments[s.ID] = payment
			if s.balance.LessThanOrEqual(epsilon) {
				surplus = surplus.Add(s.MinimumPayment.Sub(payment))
				freed = freed.Add(s.MinimumPayment)
				res.PayoffOrder = append(res.PayoffOrder, s.ID)
				s.balance = decimal.Zero
				s.paid = true
			}
		}

		for _, s := range order {
			if !surplus.IsPositive() {
				break
			}
			if s.paid {
				continue
			}
			if month.Target == "" {
				month.Target = s.ID
			}
			pay := decimal.Min(surplus, s.balance)
			s.balance = s.balance.Sub(pay)
			surplus = surplus.Sub(pay)
			month.Payments[s.ID] = month.Payments[s.ID].Add(pay)
			if s.balance.LessThanOrEqual(epsilon) {
				freed = freed.Add(s.MinimumPayment)
				res.PayoffOrder = append(res.PayoffOrder, s.ID)
				s.balance = decimal.Zero
				s.paid = true
			}
			if !opts.Cascade {
				break
			}
		}

		res.TotalInterest = res.TotalInterest.Add(month.Interest)
		allPaid := true
		for _, s := range live {
			month.Balances[s.ID] = s.balance
			if !s.paid {
				allPaid = false
			}
		}
		res.Schedule = append(res.Schedule, month)
		res.Months = m

		if allPaid {
			res.DebtFree = true
			break
		}
	}

	res.PayoffDate = opts.Today.AddMonths(res.Months)
	return res
}

// prioritized returns the surplus order. Snowball sorts by original
// balance ascending, avalanche by rate descending; ties break on id.
func prioritized(live []*state, strategy Strategy) []*state {
	out := append([]*state(nil), live...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if strategy == Avalanche {
			if c := a.Rate.Cmp(b.Rate); c != 0 {
				return c > 0
			}
		} else if c := a.original.Cmp(b.original); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return out
}
