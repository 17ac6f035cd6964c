package reserve

import (
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// AccountFree is the spendable remainder of one checking account.
type AccountFree struct {
	AccountID string
	Name      string
	Balance   money.Cents
	Reserved  money.Cents
	// Free may be negative; only the floored value feeds the total.
	Free money.Cents
}

// Summary is the global safe-to-spend figure and its per-account parts.
type Summary struct {
	Accounts    []AccountFree
	SafeToSpend money.Cents
}

// SafeToSpend sums max(0, balance - reserved) over checking accounts. A
// shortfall in one bank account is not covered by surplus in another, so
// negative free balances never offset positive ones.
func SafeToSpend(accounts []model.Account, strategy Strategy) Summary {
	var sum Summary
	for _, a := range accounts {
		if a.Deleted || a.Kind != model.AccountChecking {
			continue
		}
		r := strategy.For(a.ID)
		free := a.CurrentBalance - r.Total()
		sum.Accounts = append(sum.Accounts, AccountFree{
			AccountID: a.ID,
			Name:      a.Name,
			Balance:   a.CurrentBalance,
			Reserved:  r.Total(),
			Free:      free,
		})
		if free > 0 {
			sum.SafeToSpend += free
		}
	}
	return sum
}

// Compute builds the strategy and the safe-to-spend summary in one call.
func Compute(accounts []model.Account, buckets []model.Bucket) (Strategy, Summary) {
	s := BuildStrategy(accounts, buckets)
	return s, SafeToSpend(accounts, s)
}
