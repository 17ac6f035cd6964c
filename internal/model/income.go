package model

import (
	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// Income is a recurring deposit.
type Income struct {
	NextDate  calendar.Date      `json:"nextDate"`
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Frequency calendar.Frequency `json:"frequency"`
	AccountID string             `json:"accountId"`
	// PartnerID is set on derived partner-share incomes.
	PartnerID string      `json:"partnerId,omitempty"`
	Amount    money.Cents `json:"amount"`
	IsPrimary bool        `json:"isPrimary"`
	// IsDerived marks a synthesized partner-share income. Derived incomes are
	// never persisted; advancing one advances its partner's pay date instead.
	IsDerived bool `json:"isDerived,omitempty"`
	Deleted   bool `json:"deleted,omitempty"`
}

// PrimaryIncome returns the reference income: the first one flagged primary,
// else the first active income. ok is false when there are none.
func PrimaryIncome(incomes []Income) (Income, bool) {
	var first *Income
	for i := range incomes {
		if incomes[i].Deleted {
			continue
		}
		if incomes[i].IsPrimary {
			return incomes[i], true
		}
		if first == nil {
			first = &incomes[i]
		}
	}
	if first == nil {
		return Income{}, false
	}
	return *first, true
}

// Partner is a cost-sharing counterparty.
type Partner struct {
	NextPayDate      calendar.Date      `json:"nextPayDate"`
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	PayFrequency     calendar.Frequency `json:"payFrequency"`
	DepositAccountID string             `json:"depositAccountId"`
	Deleted          bool               `json:"deleted,omitempty"`
}
