package reserve

import (
	"testing"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccounts() []model.Account {
	return []model.Account{
		{ID: "chk", Name: "Checking", Kind: model.AccountChecking, CurrentBalance: 300000},
		{ID: "chk2", Name: "Joint", Kind: model.AccountChecking, CurrentBalance: 10000},
		{ID: "card", Name: "Visa", Kind: model.AccountCredit, CurrentBalance: -45000, LinkedAccountID: "chk"},
		{ID: "sav", Name: "Savings", Kind: model.AccountSavings, CurrentBalance: 900000},
	}
}

func TestReservedAmount(t *testing.T) {
	buckets := []model.Bucket{
		{ID: "rent", AccountID: "chk", CurrentBalance: 100000},
		{ID: "power", AccountID: "chk", CurrentBalance: 8000},
		{ID: "paid", AccountID: "chk", CurrentBalance: 5000, IsPaid: true},
		{ID: "cleared", AccountID: "chk", CurrentBalance: 7000, IsPaid: true, IsCleared: true},
		{ID: "owed", AccountID: "chk", CurrentBalance: 9000, Split: &model.SplitConfig{IsOwedOnly: true}},
		{ID: "deleted", AccountID: "chk", CurrentBalance: 9000, Deleted: true},
		{ID: "other", AccountID: "sav", CurrentBalance: 1234},
	}

	assert.Equal(t, money.Cents(108000), ReservedAmount(buckets, "chk"))
	assert.Equal(t, money.Cents(1234), ReservedAmount(buckets, "sav"))
	assert.Equal(t, money.Cents(0), ReservedAmount(buckets, "missing"))
	assert.Equal(t, ReservedAmount(buckets, "chk"), ReservedAmount(buckets, "chk"), "pure function")
}

func TestBuildStrategyRedirectsCreditToBackingAccount(t *testing.T) {
	buckets := []model.Bucket{
		{ID: "netflix", Name: "Netflix", AccountID: "card", CurrentBalance: 5000},
	}

	s := BuildStrategy(testAccounts(), buckets)

	chk := s.For("chk")
	assert.Equal(t, money.Cents(5000), chk.HeldForCredit)
	assert.Equal(t, money.Cents(0), chk.Required)
	require.Len(t, chk.Items, 1)
	assert.Equal(t, "card", chk.Items[0].ViaAccountID)
	assert.Equal(t, StatusHeldForCredit, chk.Items[0].Status)

	card := s.For("card")
	assert.Equal(t, money.Cents(0), card.Total())
}

func TestBuildStrategyPartitions(t *testing.T) {
	buckets := []model.Bucket{
		{ID: "rent", AccountID: "chk", CurrentBalance: 100000},
		{ID: "water", AccountID: "chk", CurrentBalance: 4000, IsPaid: true},
		{ID: "done", AccountID: "chk", CurrentBalance: 4000, IsPaid: true, IsCleared: true},
		{ID: "owed", AccountID: "chk", CurrentBalance: 9999, Split: &model.SplitConfig{IsOwedOnly: true}},
		{ID: "card-paid", AccountID: "card", CurrentBalance: 2500, IsPaid: true},
		{ID: "ghost", AccountID: "nowhere", CurrentBalance: 100},
		{ID: "goal", AccountID: "sav", CurrentBalance: 50000, LinkedAccountIDs: []string{"sav"}},
	}

	s := BuildStrategy(testAccounts(), buckets)
	chk := s.For("chk")

	assert.Equal(t, money.Cents(100000), chk.Required)
	assert.Equal(t, money.Cents(6500), chk.Pending)
	assert.Equal(t, money.Cents(0), chk.HeldForCredit)
	assert.Len(t, chk.Items, 3)
	assert.Equal(t, []string{"chk"}, s.AccountIDs())
	assert.Equal(t, money.Cents(0), s.For("sav").Total(), "linked goals hold nothing of their own")
}

func TestPaidBucketSplitsTransitFromNextCycle(t *testing.T) {
	paid := func(amount money.Cents) *money.Cents { return &amount }
	tests := []struct {
		name         string
		bucket       model.Bucket
		wantReserved money.Cents
		wantRequired money.Cents
		wantPending  money.Cents
		wantHeld     money.Cents
		wantItems    int
	}{
		{
			name:         "allocation after paying is reserved",
			bucket:       model.Bucket{ID: "rent", AccountID: "chk", CurrentBalance: 66667, IsPaid: true, PaidAmount: paid(50000)},
			wantReserved: 16667, wantRequired: 16667, wantPending: 50000, wantItems: 2,
		},
		{
			name:        "only the paid amount",
			bucket:      model.Bucket{ID: "rent", AccountID: "chk", CurrentBalance: 50000, IsPaid: true, PaidAmount: paid(50000)},
			wantPending: 50000, wantItems: 1,
		},
		{
			name:        "no recorded amount counts the whole balance",
			bucket:      model.Bucket{ID: "rent", AccountID: "chk", CurrentBalance: 66667, IsPaid: true},
			wantPending: 66667, wantItems: 1,
		},
		{
			name:        "card bill allocation after paying is held for credit",
			bucket:      model.Bucket{ID: "netflix", AccountID: "card", CurrentBalance: 3000, IsPaid: true, PaidAmount: paid(2000)},
			wantPending: 2000, wantHeld: 1000, wantItems: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets := []model.Bucket{tt.bucket}
			assert.Equal(t, tt.wantReserved, ReservedAmount(buckets, "chk"))

			chk := BuildStrategy(testAccounts(), buckets).For("chk")
			assert.Equal(t, tt.wantRequired, chk.Required)
			assert.Equal(t, tt.wantPending, chk.Pending)
			assert.Equal(t, tt.wantHeld, chk.HeldForCredit)
			assert.Len(t, chk.Items, tt.wantItems)
		})
	}
}

func TestSafeToSpend(t *testing.T) {
	buckets := []model.Bucket{
		{ID: "rent", AccountID: "chk", CurrentBalance: 100000},
		{ID: "card", AccountID: "card", CurrentBalance: 50000},
		// Over-reserves the joint account.
		{ID: "joint", AccountID: "chk2", CurrentBalance: 25000},
	}

	_, sum := Compute(testAccounts(), buckets)

	assert.Equal(t, money.Cents(150000), sum.SafeToSpend)
	require.Len(t, sum.Accounts, 2)
	assert.Equal(t, money.Cents(150000), sum.Accounts[0].Free)
	assert.Equal(t, money.Cents(-15000), sum.Accounts[1].Free)
}

func TestSafeToSpendNeverNegative(t *testing.T) {
	accounts := []model.Account{{ID: "chk", Kind: model.AccountChecking, CurrentBalance: 100}}
	buckets := []model.Bucket{{ID: "rent", AccountID: "chk", CurrentBalance: 100000}}

	_, sum := Compute(accounts, buckets)

	assert.Equal(t, money.Cents(0), sum.SafeToSpend)
	assert.Less(t, int64(sum.Accounts[0].Free), int64(0))
}
