package payday

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

func chainAccounts() []model.Account {
	return []model.Account{
		{ID: "chk", Name: "Checking", Kind: model.AccountChecking, CurrentBalance: 100000},
		{ID: "hub", Name: "Hub", Kind: model.AccountChecking,
			AutoConfig: &model.AutoTransfer{IsAuto: true, Amount: 40000, Frequency: calendar.Biweekly}},
		{ID: "bills", Name: "Bills", Kind: model.AccountChecking, FundedFromID: "hub"},
		{ID: "card", Name: "Visa", Kind: model.AccountCredit, LinkedAccountID: "bills"},
	}
}

func TestFindOffsets(t *testing.T) {
	incomes := []model.Income{
		primary(),
		{ID: "side", Name: "Side gig", Amount: 10000, NextDate: calendar.MustParse("2024-03-03"), AccountID: "bills"},
		{ID: "early", Name: "Refund", Amount: 5000, NextDate: calendar.MustParse("2024-02-27"), AccountID: "bills"},
		{ID: "far", Amount: 10000, NextDate: calendar.MustParse("2024-03-10"), AccountID: "bills"},
		{ID: "undated", Amount: 10000, AccountID: "bills"},
		{ID: "partner:sam", Amount: 4000, IsDerived: true, NextDate: calendar.MustParse("2024-03-20"), AccountID: "joint"},
	}

	got := FindOffsets(primary(), incomes, DefaultOffsetWindowDays)

	ids := make([]string, 0, len(got))
	for _, o := range got {
		ids = append(ids, o.IncomeID)
		assert.True(t, o.Active, "offsets default to active")
	}
	assert.Equal(t, []string{"side", "early", "partner:sam"}, ids)
	assert.True(t, got[2].Derived)
}

func TestResolveTransfersWalksFundingChain(t *testing.T) {
	buckets := []model.Bucket{
		{ID: "rent", Name: "Rent", Kind: model.BucketBill, AccountID: "bills"},
		{ID: "netflix", Name: "Netflix", Kind: model.BucketBill, AccountID: "card"},
		{ID: "buffer", Name: "Buffer", Kind: model.BucketSavings, AccountID: "hub"},
		{ID: "groceries", Name: "Groceries", Kind: model.BucketVariable, AccountID: "chk"},
	}
	offsets := []Offset{
		{IncomeID: "side", Name: "Side gig", AccountID: "bills", Amount: 10000, Active: true},
		{IncomeID: "off", Name: "Inactive", AccountID: "bills", Amount: 99999, Active: false},
	}

	plan := ResolveTransfers(TransferInput{
		Allocations:      map[string]money.Cents{"rent": 50000, "netflix": 1500, "buffer": 5000, "groceries": 30000},
		DepositAccountID: "chk",
		Accounts:         chainAccounts(),
		Buckets:          buckets,
		Offsets:          offsets,
	})

	assert.Empty(t, plan.Issues)
	require.Len(t, plan.Transfers, 2)

	first := plan.Transfers[0]
	assert.Equal(t, "hub", first.FromAccountID)
	assert.Equal(t, "bills", first.ToAccountID)
	assert.Equal(t, money.Cents(41500), first.Amount)
	assert.Equal(t, model.TransferPending, first.Status)
	require.Len(t, first.Breakdown, 3)
	assert.Equal(t, LineNeed, first.Breakdown[0].Kind)
	assert.Equal(t, "netflix", first.Breakdown[1].Ref, "card needs count against the backing account")
	assert.Equal(t, Line{Kind: LineOffset, Ref: "side", Label: "Side gig", Amount: -10000}, first.Breakdown[2])
	assert.False(t, first.HasAuto)

	second := plan.Transfers[1]
	assert.Equal(t, "chk", second.FromAccountID)
	assert.Equal(t, "hub", second.ToAccountID)
	assert.Equal(t, money.Cents(46500), second.Amount, "downstream and direct needs merge into one edge")
	require.Len(t, second.Breakdown, 2)
	assert.Equal(t, LineDownstream, second.Breakdown[0].Kind)
	assert.Equal(t, LineNeed, second.Breakdown[1].Kind)
	assert.True(t, second.HasAuto)
	assert.Equal(t, money.Cents(6500), second.Drift)
}

func TestResolveTransfersOffsetCoversNeed(t *testing.T) {
	plan := ResolveTransfers(TransferInput{
		Allocations:      map[string]money.Cents{"rent": 5000},
		DepositAccountID: "chk",
		Accounts:         chainAccounts(),
		Buckets:          []model.Bucket{{ID: "rent", AccountID: "bills"}},
		Offsets:          []Offset{{IncomeID: "side", AccountID: "bills", Amount: 10000, Active: true}},
	})

	assert.Empty(t, plan.Transfers)
}

func TestResolveTransfersReportsCycle(t *testing.T) {
	accounts := []model.Account{
		{ID: "chk", Kind: model.AccountChecking},
		{ID: "a", Kind: model.AccountSavings, FundedFromID: "b"},
		{ID: "b", Kind: model.AccountSavings, FundedFromID: "a"},
	}

	plan := ResolveTransfers(TransferInput{
		Allocations:      map[string]money.Cents{"x": 1000},
		DepositAccountID: "chk",
		Accounts:         accounts,
		Buckets:          []model.Bucket{{ID: "x", AccountID: "a"}},
	})

	require.Len(t, plan.Issues, 1)
	assert.ErrorIs(t, plan.Issues[0].Err, ErrFundingCycle)
	require.Len(t, plan.Transfers, 2)
	assert.Equal(t, "b", plan.Transfers[0].FromAccountID)
	assert.Equal(t, "chk", plan.Transfers[1].FromAccountID, "the walk still ends at the deposit account")
}

func TestResolveTransfersBoundsDepth(t *testing.T) {
	accounts := []model.Account{{ID: "chk"}}
	for i, id := range []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"} {
		parent := ""
		if i < 6 {
			parent = []string{"a2", "a3", "a4", "a5", "a6", "a7"}[i]
		}
		accounts = append(accounts, model.Account{ID: id, FundedFromID: parent})
	}

	plan := ResolveTransfers(TransferInput{
		Allocations:      map[string]money.Cents{"x": 1000},
		DepositAccountID: "chk",
		Accounts:         accounts,
		Buckets:          []model.Bucket{{ID: "x", AccountID: "a1"}},
	})

	require.Len(t, plan.Issues, 1)
	assert.ErrorIs(t, plan.Issues[0].Err, ErrChainTooDeep)
	assert.Len(t, plan.Transfers, DefaultMaxChainDepth)
}

func TestValidateFundingGraph(t *testing.T) {
	assert.NoError(t, ValidateFundingGraph(chainAccounts()))

	cyclic := append(chainAccounts(), model.Account{ID: "loop", FundedFromID: "loop"})
	assert.ErrorIs(t, ValidateFundingGraph(cyclic), ErrFundingCycle)

	deleted := append(chainAccounts(),
		model.Account{ID: "x", FundedFromID: "y"},
		model.Account{ID: "y", FundedFromID: "x", Deleted: true})
	assert.NoError(t, ValidateFundingGraph(deleted), "tombstoned accounts break the loop")
}
