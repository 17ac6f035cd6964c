package payday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/ledger"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

var now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func ritualSnapshot() model.Snapshot {
	return model.Snapshot{
		Accounts: []model.Account{
			{ID: "chk", Name: "Checking", Kind: model.AccountChecking, CurrentBalance: 100000},
			{ID: "sav", Name: "Savings", Kind: model.AccountSavings},
		},
		Incomes: []model.Income{primary()},
		Buckets: []model.Bucket{
			{ID: "rent", Name: "Rent", Kind: model.BucketBill, Amount: 50000, Frequency: calendar.Monthly,
				DueDate: calendar.MustParse("2024-03-20"), AccountID: "chk"},
			{ID: "vacation", Name: "Vacation", Kind: model.BucketSavings, Amount: 20000, AccountID: "sav"},
		},
		Partners: []model.Partner{
			{ID: "sam", Name: "Sam", PayFrequency: calendar.Biweekly, NextPayDate: calendar.MustParse("2024-03-08"), DepositAccountID: "chk"},
		},
	}
}

func runToAudit(t *testing.T, clearTransfers bool) Ritual {
	t.Helper()
	r, err := Start(ritualSnapshot(), "job", today, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, money.Cents(200000), r.Deposit, "defaults to the scheduled amount")

	r, err = r.Confirm(200000)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(25000), r.Allocation("rent"))
	assert.Equal(t, money.Cents(10000), r.Allocation("vacation"))

	r, err = r.AdvanceToTransfer()
	require.NoError(t, err)
	require.Len(t, r.Plan.Transfers, 1)
	assert.Equal(t, "sav", r.Plan.Transfers[0].ToAccountID)

	if clearTransfers {
		r, err = r.CycleTransferStatus(0)
		require.NoError(t, err)
	}
	r, err = r.AdvanceToAudit()
	require.NoError(t, err)
	return r
}

func TestRitualCommitDefersPendingAllocations(t *testing.T) {
	r := runToAudit(t, false)

	byID := map[string]AuditLine{}
	for _, l := range r.Audit {
		byID[l.AccountID] = l
	}
	assert.Equal(t, money.Cents(290000), byID["chk"].Projected, "pending transfer has left the source")
	assert.Equal(t, money.Cents(0), byID["sav"].Projected, "pending transfer has not landed")

	out, err := r.Commit(now)
	require.NoError(t, err)
	done, ok := out.(Completed)
	require.True(t, ok)
	assert.Equal(t, "job", done.IncomeID)
	require.Len(t, done.PendingTransfers, 1)
	assert.Equal(t, []model.DeferredAllocation{{BucketID: "vacation", Amount: 10000}}, done.PendingTransfers[0].Allocations)

	after := ledger.Apply(ritualSnapshot(), done.Batch)
	chk, _ := after.Account("chk")
	rent, _ := after.Bucket("rent")
	vacation, _ := after.Bucket("vacation")
	job, _ := after.Income("job")
	assert.Equal(t, money.Cents(290000), chk.CurrentBalance)
	assert.Equal(t, money.Cents(25000), rent.CurrentBalance)
	assert.Equal(t, money.Cents(0), vacation.CurrentBalance, "deferred until the transfer clears")
	assert.Equal(t, "2024-03-15", job.NextDate.String())
	require.Len(t, after.PendingTransfers, 1)
	require.Len(t, after.Log, 1)
	assert.Equal(t, model.LogPayday, after.Log[0].Kind)
}

func TestRitualCommitAppliesClearedAllocations(t *testing.T) {
	r := runToAudit(t, true)

	out, err := r.Commit(now)
	require.NoError(t, err)
	done := out.(Completed)
	assert.Empty(t, done.PendingTransfers)

	after := ledger.Apply(ritualSnapshot(), done.Batch)
	sav, _ := after.Account("sav")
	vacation, _ := after.Bucket("vacation")
	assert.Equal(t, money.Cents(10000), sav.CurrentBalance)
	assert.Equal(t, money.Cents(10000), vacation.CurrentBalance)
}

func TestRitualAdjustBalance(t *testing.T) {
	r := runToAudit(t, false)

	r, err := r.AdjustBalance("chk", 289000)
	require.NoError(t, err)

	out, err := r.Commit(now)
	require.NoError(t, err)
	after := ledger.Apply(ritualSnapshot(), out.(Completed).Batch)
	chk, _ := after.Account("chk")
	assert.Equal(t, money.Cents(289000), chk.CurrentBalance)

	_, err = r.AdjustBalance("nope", 1)
	assert.Error(t, err)
}

func TestRitualStagesOnlyMoveForward(t *testing.T) {
	r, err := Start(ritualSnapshot(), "job", today, DefaultOptions())
	require.NoError(t, err)

	_, err = r.Commit(now)
	assert.ErrorIs(t, err, ErrWrongStage)
	_, err = r.AdvanceToTransfer()
	assert.ErrorIs(t, err, ErrWrongStage)
	_, err = r.Confirm(-1)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	r, err = r.Confirm(200000)
	require.NoError(t, err)
	_, err = r.Confirm(200000)
	assert.ErrorIs(t, err, ErrWrongStage)
	_, err = r.SetAllocation("ghost", 1)
	assert.ErrorIs(t, err, ErrUnknownBucket)
}

func TestRitualTransitionsDoNotMutateReceiver(t *testing.T) {
	r, err := Start(ritualSnapshot(), "job", today, DefaultOptions())
	require.NoError(t, err)
	r, err = r.Confirm(200000)
	require.NoError(t, err)

	changed, err := r.SetAllocation("rent", 1)
	require.NoError(t, err)

	assert.Equal(t, money.Cents(25000), r.Allocation("rent"))
	assert.Equal(t, money.Cents(1), changed.Allocation("rent"))
}

func TestRitualToggleOffsetKeepsStatuses(t *testing.T) {
	snap := ritualSnapshot()
	snap.Incomes = append(snap.Incomes, model.Income{ID: "side", Name: "Side", Amount: 4000,
		NextDate: calendar.MustParse("2024-03-02"), AccountID: "sav"})

	r, err := Start(snap, "job", today, DefaultOptions())
	require.NoError(t, err)
	r, err = r.Confirm(200000)
	require.NoError(t, err)
	r, err = r.AdvanceToTransfer()
	require.NoError(t, err)
	require.Len(t, r.Offsets, 1)
	require.Len(t, r.Plan.Transfers, 1)
	assert.Equal(t, money.Cents(6000), r.Plan.Transfers[0].Amount)

	r, err = r.CycleTransferStatus(0)
	require.NoError(t, err)
	r, err = r.ToggleOffset("side")
	require.NoError(t, err)

	assert.Equal(t, money.Cents(10000), r.Plan.Transfers[0].Amount)
	assert.Equal(t, model.TransferCleared, r.Plan.Transfers[0].Status)
}

func TestRitualSkip(t *testing.T) {
	r, err := Start(ritualSnapshot(), "job", today, DefaultOptions())
	require.NoError(t, err)

	out := r.Skip(now)
	skipped, ok := out.(Skipped)
	require.True(t, ok)

	after := ledger.Apply(ritualSnapshot(), skipped.Batch)
	chk, _ := after.Account("chk")
	rent, _ := after.Bucket("rent")
	job, _ := after.Income("job")
	assert.Equal(t, money.Cents(300000), chk.CurrentBalance)
	assert.Equal(t, money.Cents(0), rent.CurrentBalance)
	assert.Equal(t, "2024-03-15", job.NextDate.String())
	assert.Equal(t, model.LogPaydaySkipped, after.Log[0].Kind)
}

func TestRitualDerivedIncomeAdvancesPartner(t *testing.T) {
	snap := ritualSnapshot()
	snap.Buckets = append(snap.Buckets, model.Bucket{ID: "split", Kind: model.BucketBill, Frequency: calendar.Monthly,
		Split: &model.SplitConfig{IsSplit: true, PartnerID: "sam", PartnerAmount: 8000, Payer: model.PayerMe}})

	r, err := Start(snap, "partner:sam", today, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, money.Cents(4000), r.Deposit)

	after := ledger.Apply(snap, r.Skip(now).(Skipped).Batch)
	sam, _ := after.Partner("sam")
	assert.Equal(t, "2024-03-22", sam.NextPayDate.String())
}

func TestRitualAdvanceExpectsStartingDate(t *testing.T) {
	snap := ritualSnapshot()
	snap.Buckets = append(snap.Buckets, model.Bucket{ID: "split", Kind: model.BucketBill, Frequency: calendar.Monthly,
		Split: &model.SplitConfig{IsSplit: true, PartnerID: "sam", PartnerAmount: 8000, Payer: model.PayerMe}})

	tests := []struct {
		name   string
		income string
		want   ledger.Op
	}{
		{
			name:   "own income",
			income: "job",
			want: ledger.SetIncomeNextDate{IncomeID: "job",
				Expect: calendar.MustParse("2024-03-01"), NextDate: calendar.MustParse("2024-03-15")},
		},
		{
			name:   "derived partner income",
			income: "partner:sam",
			want: ledger.SetPartnerNextPayDate{PartnerID: "sam",
				Expect: calendar.MustParse("2024-03-08"), NextPayDate: calendar.MustParse("2024-03-22")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Start(snap, tt.income, today, DefaultOptions())
			require.NoError(t, err)
			assert.Contains(t, r.Skip(now).(Skipped).Batch.Ops, tt.want)

			r, err = r.Confirm(r.Deposit)
			require.NoError(t, err)
			r, err = r.AdvanceToTransfer()
			require.NoError(t, err)
			r, err = r.AdvanceToAudit()
			require.NoError(t, err)
			out, err := r.Commit(now)
			require.NoError(t, err)
			assert.Contains(t, out.(Completed).Batch.Ops, tt.want)
		})
	}
}

func TestRitualConsumesOneTimeIncome(t *testing.T) {
	snap := ritualSnapshot()
	snap.Incomes = append(snap.Incomes, model.Income{ID: "bonus", Name: "Bonus", Amount: 50000,
		Frequency: calendar.OneTime, NextDate: calendar.MustParse("2024-03-01"), AccountID: "chk"})

	r, err := Start(snap, "bonus", today, DefaultOptions())
	require.NoError(t, err)

	after := ledger.Apply(snap, r.Skip(now).(Skipped).Batch)
	chk, _ := after.Account("chk")
	bonus, _ := after.Income("bonus")
	assert.Equal(t, money.Cents(150000), chk.CurrentBalance)
	assert.True(t, bonus.NextDate.IsZero(), "a received one-time income has no next date")

	_, err = Start(after, "bonus", today, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnscheduledIncome)
}

func TestRitualCancel(t *testing.T) {
	r, err := Start(ritualSnapshot(), "job", today, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Cancelled{}, r.Cancel())

	_, err = Start(ritualSnapshot(), "ghost", today, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnknownIncome)
}
