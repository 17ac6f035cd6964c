// Package payday implements the paycheck allocation ritual: per-bucket
// suggestions, offset detection, transfer planning through the funding
// chain, the audit projection, and the commit that turns it all into a
// ledger batch.
package payday

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
	"github.com/Veraticus/the-payday-must-flow/internal/recurrence"
)

// Method names the formula family a suggestion came from.
type Method string

// Suggestion methods.
const (
	MethodGapFill Method = "gap-fill"
	MethodFixed   Method = "fixed"
)

// Suggestion is the computed share of the current paycheck for one bucket.
// Formula, Paydates and Window exist so the user can see how the number
// was reached.
type Suggestion struct {
	BucketID  string
	Name      string
	AccountID string
	Method    Method
	Formula   string
	Window    string
	Paydates  []string
	Amount    money.Cents
}

// SuggestInput carries everything Suggest reads.
type SuggestInput struct {
	Today calendar.Date
	// Reference is the household's dominant income. Its cadence counts the
	// paydays left in every window, whichever income is being allocated.
	Reference model.Income
	Accounts  []model.Account
	Buckets   []model.Bucket
	Paycheck  money.Cents
}

// Participates reports whether a bucket takes part in payday allocation.
func Participates(b model.Bucket) bool {
	return !b.Deleted && !b.OwedOnly() && !b.ExcludeFromPayday
}

// Suggest computes a suggestion for every participating bucket, in input
// order. Buckets missing the data a formula needs get a zero suggestion
// with an explanation rather than an error.
func Suggest(in SuggestInput) []Suggestion {
	var out []Suggestion
	for _, b := range in.Buckets {
		if !Participates(b) {
			continue
		}
		var s Suggestion
		if b.Kind.GapFill() {
			s = gapFill(in, b)
		} else {
			s = fixedContribution(in, b)
		}
		s.BucketID = b.ID
		s.Name = b.Name
		s.AccountID = b.AccountID
		slog.Debug("Allocation suggestion",
			"bucket", b.ID,
			"method", s.Method,
			"amount", int64(s.Amount),
			"formula", s.Formula)
		out = append(out, s)
	}
	return out
}

// gapFill spreads the shortfall to a bill's amount across the paydays left
// before it is due. A bill already paid this cycle is projected onto its
// next cycle, holding only what was allocated since the payment.
func gapFill(in SuggestInput, b model.Bucket) Suggestion {
	s := Suggestion{Method: MethodGapFill}

	due := b.DueDate
	balance := b.CurrentBalance
	if b.IsPaid {
		if !b.Frequency.Recurring() {
			s.Formula = "one-time bill already paid"
			return s
		}
		due = calendar.Next(due, b.Frequency)
		balance = b.NextCycleBalance()
	}
	if due.IsZero() {
		s.Formula = "no due date"
		return s
	}

	gap := money.Max(0, b.Amount-balance)
	s.Window = windowString(in.Today, due)

	paydays := 1
	if due.Before(in.Today) {
		s.Formula = fmt.Sprintf("%s gap, due date passed: pay in full", gap)
	} else {
		s.Paydates = recurrence.PaydateStrings(in.Today, due, in.Reference.NextDate, in.Reference.Frequency)
		if len(s.Paydates) > 1 {
			paydays = len(s.Paydates)
		}
		s.Formula = fmt.Sprintf("ceil((%s - %s) / %d paydays)", b.Amount, balance, paydays)
	}

	share := money.CeilDiv(gap, paydays)
	if share > in.Paycheck {
		share = money.Max(0, in.Paycheck)
		s.Formula += fmt.Sprintf(", capped at paycheck %s", in.Paycheck)
	}
	s.Amount = share
	return s
}

// fixedContribution divides a bucket's per-cycle amount by the reference
// paydays left in the current cycle window.
func fixedContribution(in SuggestInput, b model.Bucket) Suggestion {
	s := Suggestion{Method: MethodFixed}

	amount := b.Amount
	if b.Kind == model.BucketSavings && b.TargetBalance != nil {
		remaining := *b.TargetBalance - effectiveBalance(b, in.Accounts)
		if remaining <= 0 {
			s.Formula = fmt.Sprintf("goal of %s reached", *b.TargetBalance)
			return s
		}
		if amount <= 0 || amount > remaining {
			amount = remaining
		}
	}
	if amount <= 0 {
		s.Formula = "no amount"
		return s
	}

	if b.DueDate.IsZero() {
		n := in.Reference.Frequency.PaychecksPerMonth()
		s.Amount = money.CeilDiv(amount, n)
		s.Formula = fmt.Sprintf("ceil(%s / %d paychecks per month)", amount, n)
		return s
	}

	prev := calendar.Previous(b.DueDate, b.Frequency)
	start := prev
	if start.Before(in.Today) {
		start = in.Today
	}
	s.Window = windowString(prev, b.DueDate)

	paydays := 1
	if !b.DueDate.Before(start) {
		s.Paydates = recurrence.PaydateStrings(start, b.DueDate, in.Reference.NextDate, in.Reference.Frequency)
		if len(s.Paydates) > 1 {
			paydays = len(s.Paydates)
		}
	}
	s.Amount = money.CeilDiv(amount, paydays)
	s.Formula = fmt.Sprintf("ceil(%s / %d paydays)", amount, paydays)
	return s
}

// effectiveBalance is a goal's progress: the sum of its linked accounts when
// it has any, else its own tracked balance. Unknown links count as zero.
func effectiveBalance(b model.Bucket, accounts []model.Account) money.Cents {
	if len(b.LinkedAccountIDs) == 0 {
		return b.CurrentBalance
	}
	var total money.Cents
	for _, id := range b.LinkedAccountIDs {
		if a, ok := model.FindAccount(accounts, id); ok {
			total += a.CurrentBalance
		}
	}
	return total
}

func windowString(start, end calendar.Date) string {
	return start.String() + " to " + end.String()
}

// Allocations turns suggestions into the editable bucket -> amount map.
func Allocations(suggestions []Suggestion) map[string]money.Cents {
	out := make(map[string]money.Cents, len(suggestions))
	for _, s := range suggestions {
		out[s.BucketID] = s.Amount
	}
	return out
}
