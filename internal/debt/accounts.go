package debt

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
)

// FromAccounts builds simulator inputs from credit and loan accounts. The
// minimum payment is the sum of the debt buckets that pay the account down.
// Accounts with nothing owed are returned but not included.
func FromAccounts(accounts []model.Account, buckets []model.Bucket) []Debt {
	minimums := make(map[string]decimal.Decimal)
	for _, b := range buckets {
		if b.Deleted || b.DebtAccountID == "" {
			continue
		}
		if b.Kind != model.BucketDebt && b.Kind != model.BucketLoan {
			continue
		}
		minimums[b.DebtAccountID] = minimums[b.DebtAccountID].Add(b.Amount.Decimal())
	}

	var out []Debt
	for _, a := range accounts {
		if a.Deleted || !a.IsDebt() {
			continue
		}
		rate := decimal.Zero
		if a.InterestRate != nil {
			rate = decimal.NewFromFloat(*a.InterestRate)
		}
		balance := a.CurrentBalance.Abs().Decimal()
		out = append(out, Debt{
			ID:             a.ID,
			Name:           a.Name,
			Balance:        balance,
			Rate:           rate,
			MinimumPayment: minimums[a.ID],
			Included:       balance.IsPositive(),
		})
	}
	return out
}
