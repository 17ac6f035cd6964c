// Package model contains the plain records the planning engine computes over.
package model

import (
	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// AccountKind classifies an account.
type AccountKind string

const (
	// AccountChecking is a transactional bank account.
	AccountChecking AccountKind = "checking"
	// AccountSavings is a savings account.
	AccountSavings AccountKind = "savings"
	// AccountCredit is a credit card, usually paid from a linked checking account.
	AccountCredit AccountKind = "credit"
	// AccountInvestment is a brokerage or retirement account.
	AccountInvestment AccountKind = "investment"
	// AccountLoan is an amortizing loan.
	AccountLoan AccountKind = "loan"
	// AccountCash is physical cash.
	AccountCash AccountKind = "cash"
)

// Valid reports whether k is a known kind.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountChecking, AccountSavings, AccountCredit, AccountInvestment, AccountLoan, AccountCash:
		return true
	}
	return false
}

// AutoTransfer describes a recurring scheduled transfer into an account.
type AutoTransfer struct {
	Frequency calendar.Frequency `json:"frequency,omitempty"`
	Amount    money.Cents        `json:"amount"`
	IsAuto    bool               `json:"isAuto"`
}

// Account is a real-world account whose balance the user tracks.
type Account struct {
	AutoConfig      *AutoTransfer `json:"autoConfig,omitempty"`
	InterestRate    *float64      `json:"interestRate,omitempty"`
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Kind            AccountKind   `json:"type"`
	LinkedAccountID string        `json:"linkedAccountId,omitempty"`
	FundedFromID    string        `json:"fundedFromId,omitempty"`
	RetirementType  string        `json:"retirementType,omitempty"`
	CurrentBalance  money.Cents   `json:"currentBalance"`
	Deleted         bool          `json:"deleted,omitempty"`
}

// IsLiquid reports whether the account counts toward spendable cash.
func (a Account) IsLiquid() bool {
	return a.Kind == AccountChecking || a.Kind == AccountSavings
}

// IsDebt reports whether the account's balance is owed rather than held.
func (a Account) IsDebt() bool {
	return a.Kind == AccountCredit || a.Kind == AccountLoan
}
