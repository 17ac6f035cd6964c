package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

func testInput() Input {
	return Input{
		Today: calendar.MustParse("2024-03-01"),
		Accounts: []model.Account{
			{ID: "chk", Kind: model.AccountChecking, CurrentBalance: 100000},
			{ID: "sav", Kind: model.AccountSavings, CurrentBalance: 50000},
			{ID: "card", Kind: model.AccountCredit, CurrentBalance: -2000},
			{ID: "old", Kind: model.AccountChecking, CurrentBalance: 999999, Deleted: true},
		},
		Incomes: []model.Income{
			{ID: "job", Amount: 200000, Frequency: calendar.Biweekly, NextDate: calendar.MustParse("2024-03-01")},
			{ID: "undated", Amount: 500},
		},
		Buckets: []model.Bucket{
			{ID: "rent", Amount: 150000, Frequency: calendar.Monthly, DueDate: calendar.MustParse("2024-03-05")},
			{ID: "internet", Amount: 5000, Frequency: calendar.Monthly, DueDate: calendar.MustParse("2024-02-28"), IsPaid: true},
			{ID: "owed", Amount: 7000, Frequency: calendar.Monthly, DueDate: calendar.MustParse("2024-03-10"),
				Split: &model.SplitConfig{IsOwedOnly: true}},
			{ID: "no-date", Amount: 7000},
		},
		Days: 30,
	}
}

func TestStartingBalance(t *testing.T) {
	assert.Equal(t, money.Cents(150000), StartingBalance(testInput().Accounts))
}

func TestProject(t *testing.T) {
	points := Project(testInput())

	require.Len(t, points, 30)
	assert.Equal(t, "2024-03-01", points[0].Date.String())
	assert.Equal(t, "2024-03-30", points[29].Date.String())

	balances := map[string]money.Cents{}
	for _, p := range points {
		balances[p.Date.String()] = p.Balance
	}
	assert.Equal(t, money.Cents(350000), balances["2024-03-01"])
	assert.Equal(t, money.Cents(350000), balances["2024-03-04"])
	assert.Equal(t, money.Cents(200000), balances["2024-03-05"])
	assert.Equal(t, money.Cents(400000), balances["2024-03-15"])
	assert.Equal(t, money.Cents(395000), balances["2024-03-28"], "paid bill counts from its next cycle")
	assert.Equal(t, money.Cents(595000), balances["2024-03-30"])
}

func TestProjectHorizon(t *testing.T) {
	in := testInput()

	in.Days = 0
	assert.Len(t, Project(in), DefaultDays)

	in.Days = 365
	assert.Len(t, Project(in), MaxDays)

	in.Today = calendar.Date{}
	assert.Empty(t, Project(in))
}

func TestProjectIsRestartable(t *testing.T) {
	in := testInput()
	assert.Equal(t, Project(in), Project(in))
}

func TestLowPoint(t *testing.T) {
	low, ok := LowPoint(Project(testInput()))
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", low.Date.String())
	assert.Equal(t, money.Cents(200000), low.Balance)

	_, ok = LowPoint(nil)
	assert.False(t, ok)
}
