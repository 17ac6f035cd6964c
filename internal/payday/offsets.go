package payday

import (
	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// DefaultOffsetWindowDays is how close another income's date must be to the
// triggering paycheck to count as an offset.
const DefaultOffsetWindowDays = 3

// Offset is money expected to land in another account around the same time
// as the paycheck, reducing what has to be moved there.
type Offset struct {
	Date      calendar.Date
	IncomeID  string
	Name      string
	AccountID string
	Amount    money.Cents
	Derived   bool
	Active    bool
}

// FindOffsets returns every income other than trigger that lands within
// windowDays of it, plus every derived partner income. Offsets start active.
func FindOffsets(trigger model.Income, incomes []model.Income, windowDays int) []Offset {
	if windowDays < 0 {
		windowDays = DefaultOffsetWindowDays
	}
	var out []Offset
	for _, in := range incomes {
		if in.Deleted || in.ID == trigger.ID || in.Amount <= 0 {
			continue
		}
		if !in.IsDerived {
			if in.NextDate.IsZero() || trigger.NextDate.IsZero() {
				continue
			}
			gap := trigger.NextDate.DaysUntil(in.NextDate)
			if gap < -windowDays || gap > windowDays {
				continue
			}
		}
		out = append(out, Offset{
			IncomeID:  in.ID,
			Name:      in.Name,
			AccountID: in.AccountID,
			Date:      in.NextDate,
			Amount:    in.Amount,
			Derived:   in.IsDerived,
			Active:    true,
		})
	}
	return out
}
