// Package fixtures builds payday snapshots for tests. It offers a fluent API
// so tests can describe just the records they care about.
//
// Example usage:
//
//	snap := fixtures.NewBuilder().
//		WithChecking("chk", "Checking", 300000).
//		WithIncome("job", "Job", "chk", 200000, "2024-03-15").
//		WithBill("rent", "Rent", "chk", 150000, "2024-03-20").
//		Build()
package fixtures

import (
	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// Builder accumulates records for a snapshot.
type Builder struct {
	snap model.Snapshot
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithAccount adds an arbitrary account.
func (b *Builder) WithAccount(a model.Account) *Builder {
	b.snap.Accounts = append(b.snap.Accounts, a)
	return b
}

// WithChecking adds a checking account.
func (b *Builder) WithChecking(id, name string, balance money.Cents) *Builder {
	return b.WithAccount(model.Account{ID: id, Name: name, Kind: model.AccountChecking, CurrentBalance: balance})
}

// WithSavings adds a savings account funded from fundedFrom, which may be
// empty.
func (b *Builder) WithSavings(id, name, fundedFrom string, balance money.Cents) *Builder {
	return b.WithAccount(model.Account{
		ID:             id,
		Name:           name,
		Kind:           model.AccountSavings,
		FundedFromID:   fundedFrom,
		CurrentBalance: balance,
	})
}

// WithCredit adds a credit card paid from linked. balance should be negative
// when money is owed.
func (b *Builder) WithCredit(id, name, linked string, balance money.Cents, rate float64) *Builder {
	return b.WithAccount(model.Account{
		ID:              id,
		Name:            name,
		Kind:            model.AccountCredit,
		LinkedAccountID: linked,
		CurrentBalance:  balance,
		InterestRate:    &rate,
	})
}

// WithIncome adds a biweekly income deposited to accountID.
func (b *Builder) WithIncome(id, name, accountID string, amount money.Cents, next string) *Builder {
	b.snap.Incomes = append(b.snap.Incomes, model.Income{
		ID:        id,
		Name:      name,
		AccountID: accountID,
		Amount:    amount,
		Frequency: calendar.Biweekly,
		NextDate:  calendar.MustParse(next),
		IsPrimary: len(b.snap.Incomes) == 0,
	})
	return b
}

// WithBucket adds an arbitrary bucket.
func (b *Builder) WithBucket(bucket model.Bucket) *Builder {
	b.snap.Buckets = append(b.snap.Buckets, bucket)
	return b
}

// WithBill adds an unfunded monthly bill paid from accountID.
func (b *Builder) WithBill(id, name, accountID string, amount money.Cents, due string) *Builder {
	return b.WithBucket(model.Bucket{
		ID:        id,
		Name:      name,
		Kind:      model.BucketBill,
		AccountID: accountID,
		Amount:    amount,
		Frequency: calendar.Monthly,
		DueDate:   calendar.MustParse(due),
	})
}

// WithGoal adds a one-time savings goal held in accountID.
func (b *Builder) WithGoal(id, name, accountID string, target, balance money.Cents) *Builder {
	return b.WithBucket(model.Bucket{
		ID:             id,
		Name:           name,
		Kind:           model.BucketSavings,
		SavingsType:    model.SavingsGoal,
		AccountID:      accountID,
		Frequency:      calendar.OneTime,
		TargetBalance:  &target,
		CurrentBalance: balance,
	})
}

// WithTransfer adds an arbitrary transfer edge.
func (b *Builder) WithTransfer(t model.PendingTransfer) *Builder {
	b.snap.PendingTransfers = append(b.snap.PendingTransfers, t)
	return b
}

// WithPendingTransfer adds a pending transfer edge.
func (b *Builder) WithPendingTransfer(id, from, to string, amount money.Cents) *Builder {
	return b.WithTransfer(model.PendingTransfer{
		ID:            id,
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Status:        model.TransferPending,
	})
}

// Build returns the accumulated snapshot. The builder may keep being used;
// later additions do not affect snapshots already returned.
func (b *Builder) Build() model.Snapshot {
	out := model.Snapshot{
		Accounts:         append([]model.Account(nil), b.snap.Accounts...),
		Incomes:          append([]model.Income(nil), b.snap.Incomes...),
		Buckets:          append([]model.Bucket(nil), b.snap.Buckets...),
		Partners:         append([]model.Partner(nil), b.snap.Partners...),
		Log:              append([]model.LogEntry(nil), b.snap.Log...),
		PendingTransfers: append([]model.PendingTransfer(nil), b.snap.PendingTransfers...),
	}
	return out
}
