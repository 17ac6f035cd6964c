// Package partner turns split-expense shares into virtual partner incomes.
package partner

import (
	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// IncomeIDPrefix prefixes the ids of derived partner incomes.
const IncomeIDPrefix = "partner:"

// monthlyShare normalizes a per-cycle amount to a monthly figure.
func monthlyShare(amount money.Cents, freq calendar.Frequency) money.Cents {
	switch freq {
	case calendar.Weekly:
		return money.CeilDiv(amount*52, 12)
	case calendar.Biweekly:
		return money.CeilDiv(amount*26, 12)
	case calendar.Quarterly:
		return money.CeilDiv(amount, 3)
	case calendar.Annually:
		return money.CeilDiv(amount, 12)
	case calendar.OneTime:
		return 0
	default:
		return amount
	}
}

// OwedPerMonth sums what the partner owes each month across split buckets
// the user fronts. Owed-only trackers are excluded.
func OwedPerMonth(p model.Partner, buckets []model.Bucket) money.Cents {
	var total money.Cents
	for _, b := range buckets {
		if b.Deleted || b.Split == nil || !b.Split.IsSplit || b.Split.IsOwedOnly {
			continue
		}
		if b.Split.PartnerID != p.ID || b.Split.Payer == model.PayerPartner {
			continue
		}
		total += monthlyShare(b.Split.PartnerAmount, b.Frequency)
	}
	return total
}

// VirtualIncomes derives one income per partner that owes something. The
// monthly total is spread across the partner's own paycheck cadence and
// lands in the partner's deposit account on their next pay date.
func VirtualIncomes(partners []model.Partner, buckets []model.Bucket) []model.Income {
	var out []model.Income
	for _, p := range partners {
		if p.Deleted || p.NextPayDate.IsZero() {
			continue
		}
		owed := OwedPerMonth(p, buckets)
		if owed <= 0 {
			continue
		}
		out = append(out, model.Income{
			ID:        IncomeIDPrefix + p.ID,
			Name:      p.Name + " share",
			Amount:    money.CeilDiv(owed, p.PayFrequency.PaychecksPerMonth()),
			Frequency: p.PayFrequency,
			NextDate:  p.NextPayDate,
			AccountID: p.DepositAccountID,
			PartnerID: p.ID,
			IsDerived: true,
		})
	}
	return out
}

// WithVirtualIncomes appends the derived partner incomes to the real ones.
func WithVirtualIncomes(incomes []model.Income, partners []model.Partner, buckets []model.Bucket) []model.Income {
	out := model.ActiveIncomes(incomes)
	return append(out, VirtualIncomes(partners, buckets)...)
}
