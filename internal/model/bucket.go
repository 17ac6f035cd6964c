package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// ErrClearedNotPaid flags a bucket that is cleared without being paid.
var ErrClearedNotPaid = errors.New("bucket is cleared but not paid")

// BucketKind classifies an expense bucket.
type BucketKind string

const (
	// BucketBill is a fixed recurring obligation.
	BucketBill BucketKind = "bill"
	// BucketVariable is a spending pool such as groceries.
	BucketVariable BucketKind = "variable"
	// BucketSavings is a savings goal or revolving sinking fund.
	BucketSavings BucketKind = "savings"
	// BucketDebt is a payment toward a credit or loan account.
	BucketDebt BucketKind = "debt"
	// BucketLoan is treated like BucketDebt.
	BucketLoan BucketKind = "loan"
)

// Valid reports whether k is a known kind.
func (k BucketKind) Valid() bool {
	switch k {
	case BucketBill, BucketVariable, BucketSavings, BucketDebt, BucketLoan:
		return true
	}
	return false
}

// GapFill reports whether allocations for this kind fill the remaining gap
// to a target; the other kinds receive a flat contribution.
func (k BucketKind) GapFill() bool {
	return k == BucketBill || k == BucketDebt || k == BucketLoan
}

// SavingsType distinguishes goals from revolving sinking funds.
type SavingsType string

// Savings types.
const (
	SavingsGoal      SavingsType = "goal"
	SavingsRevolving SavingsType = "revolving"
)

// Payer records who fronts a split expense.
type Payer string

// Payers.
const (
	PayerMe      Payer = "me"
	PayerPartner Payer = "partner"
)

// SplitConfig describes cost sharing with a partner.
type SplitConfig struct {
	PartnerID     string      `json:"partnerId"`
	Payer         Payer       `json:"payer,omitempty"`
	PartnerAmount money.Cents `json:"partnerAmount"`
	IsSplit       bool        `json:"isSplit"`
	IsOwedOnly    bool        `json:"isOwedOnly,omitempty"`
}

// Bucket is a tracked expense, spending pool, savings goal, or debt payment
// with its own running balance.
type Bucket struct {
	DueDate           calendar.Date      `json:"dueDate"`
	Split             *SplitConfig       `json:"splitConfig,omitempty"`
	TargetBalance     *money.Cents       `json:"targetBalance,omitempty"`
	PaidAmount        *money.Cents       `json:"paidAmount,omitempty"`
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Kind              BucketKind         `json:"type"`
	Frequency         calendar.Frequency `json:"frequency"`
	AccountID         string             `json:"accountId"`
	DebtAccountID     string             `json:"totalDebtBalance,omitempty"`
	SavingsType       SavingsType        `json:"savingsType,omitempty"`
	RetirementType    string             `json:"retirementType,omitempty"`
	LinkedAccountIDs  []string           `json:"linkedAccountIds,omitempty"`
	Amount            money.Cents        `json:"amount"`
	CurrentBalance    money.Cents        `json:"currentBalance"`
	IsPaid            bool               `json:"isPaid"`
	IsCleared         bool               `json:"isCleared"`
	ExcludeFromPayday bool               `json:"excludeFromPayday,omitempty"`
	IsEssential       bool               `json:"isEssential,omitempty"`
	IsSubscription    bool               `json:"isSubscription,omitempty"`
	IsPreTax          bool               `json:"isPreTax,omitempty"`
	Deleted           bool               `json:"deleted,omitempty"`
}

// OwedOnly reports whether the bucket only tracks a partner's debt and must
// stay out of every reservation and allocation computation.
func (b Bucket) OwedOnly() bool {
	return b.Split != nil && b.Split.IsOwedOnly
}

// InTransit reports whether the bucket was paid but not yet reconciled.
func (b Bucket) InTransit() bool {
	return b.IsPaid && !b.IsCleared
}

// InTransitAmount is the part of the balance already sent to the payee:
// the balance recorded when the bucket was marked paid, capped at what the
// bucket still holds. A paid bucket with no recorded amount counts its whole
// balance.
func (b Bucket) InTransitAmount() money.Cents {
	if !b.InTransit() {
		return 0
	}
	if b.PaidAmount == nil {
		return max(b.CurrentBalance, 0)
	}
	return max(min(*b.PaidAmount, b.CurrentBalance), 0)
}

// NextCycleBalance is the balance set aside beyond what is in transit, such
// as payday allocations made after the bill was paid.
func (b Bucket) NextCycleBalance() money.Cents {
	return b.CurrentBalance - b.InTransitAmount()
}

// Validate checks the status invariant.
func (b Bucket) Validate() error {
	if b.IsCleared && !b.IsPaid {
		return fmt.Errorf("%w: %s", ErrClearedNotPaid, b.ID)
	}
	return nil
}

// UnmarshalJSON accepts the due date under any of "date", "dueDate", or
// "nextDate" and normalizes it into DueDate.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	type plain Bucket
	var aux struct {
		plain
		Date     calendar.Date `json:"date"`
		NextDate calendar.Date `json:"nextDate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = Bucket(aux.plain)
	switch {
	case !b.DueDate.IsZero():
	case !aux.Date.IsZero():
		b.DueDate = aux.Date
	case !aux.NextDate.IsZero():
		b.DueDate = aux.NextDate
	}
	return nil
}
