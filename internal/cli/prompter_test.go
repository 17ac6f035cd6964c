package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/ledger"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
	"github.com/Veraticus/the-payday-must-flow/internal/payday"
)

var (
	ritualToday = calendar.MustParse("2024-03-01")
	ritualNow   = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
)

func ritualSnapshot() model.Snapshot {
	return model.Snapshot{
		Accounts: []model.Account{
			{ID: "chk", Name: "Checking", Kind: model.AccountChecking, CurrentBalance: 100000},
			{ID: "sav", Name: "Savings", Kind: model.AccountSavings},
		},
		Incomes: []model.Income{{ID: "job", Name: "Job", Amount: 200000, Frequency: calendar.Biweekly,
			NextDate: calendar.MustParse("2024-03-01"), AccountID: "chk", IsPrimary: true}},
		Buckets: []model.Bucket{
			{ID: "rent", Name: "Rent", Kind: model.BucketBill, Amount: 50000, Frequency: calendar.Monthly,
				DueDate: calendar.MustParse("2024-03-20"), AccountID: "chk"},
			{ID: "vacation", Name: "Vacation", Kind: model.BucketSavings, Amount: 20000, AccountID: "sav"},
		},
	}
}

func runPrompter(t *testing.T, input string) (payday.Outcome, string, error) {
	t.Helper()
	snap := ritualSnapshot()
	r, err := payday.Start(snap, "job", ritualToday, payday.DefaultOptions())
	require.NoError(t, err)

	var out bytes.Buffer
	p := NewRitualPrompter(strings.NewReader(input), &out, snap.Accounts)
	outcome, err := p.Run(context.Background(), r, ritualNow)
	return outcome, out.String(), err
}

func TestRitualPrompter_Outcomes(t *testing.T) {
	tests := []struct {
		check func(t *testing.T, outcome payday.Outcome, output string)
		name  string
		input string
	}{
		{
			name:  "accept everything",
			input: "\n\n\nc\n",
			check: func(t *testing.T, outcome payday.Outcome, output string) {
				t.Helper()
				done, ok := outcome.(payday.Completed)
				require.True(t, ok)
				after := ledger.Apply(ritualSnapshot(), done.Batch)
				chk, _ := after.Account("chk")
				assert.Equal(t, money.Cents(290000), chk.CurrentBalance)
				assert.Len(t, done.PendingTransfers, 1)
				assert.Contains(t, output, "Checking -> Savings")
				assert.Contains(t, output, "$250.00")
			},
		},
		{
			name:  "edit an allocation and clear the transfer",
			input: "2,000.00\n1 300\n\n1\n\nc\n",
			check: func(t *testing.T, outcome payday.Outcome, _ string) {
				t.Helper()
				done, ok := outcome.(payday.Completed)
				require.True(t, ok)
				assert.Empty(t, done.PendingTransfers)
				after := ledger.Apply(ritualSnapshot(), done.Batch)
				rent, _ := after.Bucket("rent")
				vacation, _ := after.Bucket("vacation")
				assert.Equal(t, money.Cents(30000), rent.CurrentBalance)
				assert.Equal(t, money.Cents(10000), vacation.CurrentBalance)
			},
		},
		{
			name:  "correct a balance at audit",
			input: "\n\n\n1 1000\nc\n",
			check: func(t *testing.T, outcome payday.Outcome, output string) {
				t.Helper()
				done, ok := outcome.(payday.Completed)
				require.True(t, ok)
				after := ledger.Apply(ritualSnapshot(), done.Batch)
				corrected := 0
				for _, a := range after.Accounts {
					if a.CurrentBalance == 100000 {
						corrected++
					}
				}
				assert.Equal(t, 1, corrected, "only the corrected account lands on $1,000.00")
				assert.Contains(t, output, "(corrected)")
			},
		},
		{
			name:  "skip",
			input: "s\n",
			check: func(t *testing.T, outcome payday.Outcome, _ string) {
				t.Helper()
				_, ok := outcome.(payday.Skipped)
				assert.True(t, ok)
			},
		},
		{
			name:  "cancel mid-way",
			input: "\nq\n",
			check: func(t *testing.T, outcome payday.Outcome, _ string) {
				t.Helper()
				_, ok := outcome.(payday.Cancelled)
				assert.True(t, ok)
			},
		},
		{
			name:  "bad input is reported and retried",
			input: "lots\n\n9 100\nfoo\n\nq\n",
			check: func(t *testing.T, outcome payday.Outcome, output string) {
				t.Helper()
				_, ok := outcome.(payday.Cancelled)
				assert.True(t, ok)
				assert.Contains(t, output, "invalid amount")
				assert.Contains(t, output, "invalid choice")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, output, err := runPrompter(t, tt.input)
			require.NoError(t, err)
			tt.check(t, outcome, output)
		})
	}
}

func TestRitualPrompter_EndOfInput(t *testing.T) {
	_, _, err := runPrompter(t, "\n")
	assert.ErrorIs(t, err, io.EOF)
}

func TestRitualPrompter_Cancelled(t *testing.T) {
	r, err := payday.Start(ritualSnapshot(), "job", ritualToday, payday.DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewRitualPrompter(strings.NewReader("\n"), &bytes.Buffer{}, nil)
	_, err = p.Run(ctx, r, ritualNow)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestParseIndexedAmount(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantIdx int
		want    money.Cents
		wantErr bool
	}{
		{name: "valid", line: "2 $1,250.50", wantIdx: 1, want: 125050},
		{name: "out of range", line: "3 10", wantErr: true},
		{name: "zero index", line: "0 10", wantErr: true},
		{name: "missing amount", line: "1", wantErr: true},
		{name: "bad amount", line: "1 ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, amount, err := parseIndexedAmount(tt.line, 2)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIdx, idx)
			assert.Equal(t, tt.want, amount)
		})
	}
}
