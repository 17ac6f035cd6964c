package payday

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/ledger"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
	"github.com/Veraticus/the-payday-must-flow/internal/partner"
)

var (
	// ErrWrongStage is returned when a transition is attempted from a stage
	// that does not allow it.
	ErrWrongStage = errors.New("wrong ritual stage")
	// ErrUnknownIncome is returned when the triggering income does not exist.
	ErrUnknownIncome = errors.New("unknown income")
	// ErrUnscheduledIncome is returned for an income with no pay date, such
	// as a one-time income that has already been received.
	ErrUnscheduledIncome = errors.New("income has no scheduled pay date")
	// ErrUnknownBucket is returned when an allocation names a missing bucket.
	ErrUnknownBucket = errors.New("unknown bucket")
	// ErrNegativeAmount is returned for negative deposits or allocations.
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Stage is a step of the ritual. Stages only move forward.
type Stage int

// Ritual stages.
const (
	StageConfirm Stage = iota
	StageAllocate
	StageTransfer
	StageAudit
)

func (s Stage) String() string {
	switch s {
	case StageConfirm:
		return "confirm"
	case StageAllocate:
		return "allocate"
	case StageTransfer:
		return "transfer"
	case StageAudit:
		return "audit"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Options tunes the ritual.
type Options struct {
	OffsetWindowDays int
	MaxChainDepth    int
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{OffsetWindowDays: DefaultOffsetWindowDays, MaxChainDepth: DefaultMaxChainDepth}
}

// AuditLine is one account's projected ending balance.
type AuditLine struct {
	AccountID string
	Name      string
	Current   money.Cents
	Projected money.Cents
	Final     money.Cents
	Adjusted  bool
}

// Ritual is the state of one paycheck allocation. It is a value: every
// transition returns a new Ritual and leaves the receiver untouched.
type Ritual struct {
	Today       calendar.Date
	allocations map[string]money.Cents
	Income      model.Income
	Reference   model.Income
	snap        model.Snapshot
	incomes     []model.Income
	Suggestions []Suggestion
	Offsets     []Offset
	Plan        Plan
	Audit       []AuditLine
	opts        Options
	Stage       Stage
	Deposit     money.Cents
}

// Start opens a ritual for incomeID, which may name a derived partner income.
func Start(snap model.Snapshot, incomeID string, today calendar.Date, opts Options) (Ritual, error) {
	incomes := partner.WithVirtualIncomes(snap.Incomes, snap.Partners, snap.Buckets)
	var trigger model.Income
	found := false
	for _, in := range incomes {
		if in.ID == incomeID {
			trigger, found = in, true
			break
		}
	}
	if !found {
		return Ritual{}, fmt.Errorf("%w: %s", ErrUnknownIncome, incomeID)
	}
	if trigger.NextDate.IsZero() {
		return Ritual{}, fmt.Errorf("%w: %s", ErrUnscheduledIncome, incomeID)
	}
	ref, ok := model.PrimaryIncome(snap.Incomes)
	if !ok {
		ref = trigger
	}
	if opts.OffsetWindowDays < 0 {
		opts.OffsetWindowDays = DefaultOffsetWindowDays
	}
	if opts.MaxChainDepth <= 0 {
		opts.MaxChainDepth = DefaultMaxChainDepth
	}
	return Ritual{
		Stage:     StageConfirm,
		Today:     today,
		Income:    trigger,
		Reference: ref,
		Deposit:   trigger.Amount,
		snap:      snap,
		incomes:   incomes,
		opts:      opts,
	}, nil
}

func (r Ritual) expect(s Stage) error {
	if r.Stage != s {
		return fmt.Errorf("%w: in %s, need %s", ErrWrongStage, r.Stage, s)
	}
	return nil
}

// Allocation returns the current allocation for a bucket.
func (r Ritual) Allocation(bucketID string) money.Cents {
	return r.allocations[bucketID]
}

// TotalAllocated sums every allocation.
func (r Ritual) TotalAllocated() money.Cents {
	var total money.Cents
	for _, v := range r.allocations {
		total += v
	}
	return total
}

// Confirm fixes the deposited amount and computes suggestions.
func (r Ritual) Confirm(amount money.Cents) (Ritual, error) {
	if err := r.expect(StageConfirm); err != nil {
		return r, err
	}
	if amount < 0 {
		return r, ErrNegativeAmount
	}
	r.Deposit = amount
	r.Suggestions = Suggest(SuggestInput{
		Today:     r.Today,
		Reference: r.Reference,
		Accounts:  r.snap.Accounts,
		Buckets:   r.snap.Buckets,
		Paycheck:  amount,
	})
	r.allocations = Allocations(r.Suggestions)
	r.Stage = StageAllocate
	return r, nil
}

// SetAllocation overrides one bucket's share.
func (r Ritual) SetAllocation(bucketID string, amount money.Cents) (Ritual, error) {
	if err := r.expect(StageAllocate); err != nil {
		return r, err
	}
	if amount < 0 {
		return r, ErrNegativeAmount
	}
	if _, ok := r.allocations[bucketID]; !ok {
		return r, fmt.Errorf("%w: %s", ErrUnknownBucket, bucketID)
	}
	r.allocations = maps.Clone(r.allocations)
	r.allocations[bucketID] = amount
	return r, nil
}

// AdvanceToTransfer finds offsets and plans the transfers.
func (r Ritual) AdvanceToTransfer() (Ritual, error) {
	if err := r.expect(StageAllocate); err != nil {
		return r, err
	}
	r.Offsets = FindOffsets(r.Income, r.incomes, r.opts.OffsetWindowDays)
	r.Plan = r.resolve(nil)
	r.Stage = StageTransfer
	return r, nil
}

// resolve plans transfers, carrying over statuses from prev by edge.
func (r Ritual) resolve(prev []Transfer) Plan {
	plan := ResolveTransfers(TransferInput{
		Allocations:      r.allocations,
		DepositAccountID: r.Income.AccountID,
		Accounts:         r.snap.Accounts,
		Buckets:          r.snap.Buckets,
		Offsets:          r.Offsets,
		MaxDepth:         r.opts.MaxChainDepth,
	})
	for i := range plan.Transfers {
		for _, p := range prev {
			if p.FromAccountID == plan.Transfers[i].FromAccountID && p.ToAccountID == plan.Transfers[i].ToAccountID {
				plan.Transfers[i].Status = p.Status
			}
		}
	}
	return plan
}

// ToggleOffset flips an offset on or off and replans.
func (r Ritual) ToggleOffset(incomeID string) (Ritual, error) {
	if err := r.expect(StageTransfer); err != nil {
		return r, err
	}
	idx := slices.IndexFunc(r.Offsets, func(o Offset) bool { return o.IncomeID == incomeID })
	if idx < 0 {
		return r, fmt.Errorf("%w: %s", ErrUnknownIncome, incomeID)
	}
	prev := r.Plan.Transfers
	r.Offsets = slices.Clone(r.Offsets)
	r.Offsets[idx].Active = !r.Offsets[idx].Active
	r.Plan = r.resolve(prev)
	return r, nil
}

// CycleTransferStatus moves transfer i to its next status.
func (r Ritual) CycleTransferStatus(i int) (Ritual, error) {
	if err := r.expect(StageTransfer); err != nil {
		return r, err
	}
	if i < 0 || i >= len(r.Plan.Transfers) {
		return r, fmt.Errorf("transfer %d out of range", i)
	}
	r.Plan.Transfers = slices.Clone(r.Plan.Transfers)
	r.Plan.Transfers[i].Status = r.Plan.Transfers[i].Status.Next()
	return r, nil
}

// AdvanceToAudit projects every account's ending balance. A pending
// transfer has left its source but not reached its destination.
func (r Ritual) AdvanceToAudit() (Ritual, error) {
	if err := r.expect(StageTransfer); err != nil {
		return r, err
	}
	r.Audit = nil
	for _, a := range model.ActiveAccounts(r.snap.Accounts) {
		projected := a.CurrentBalance
		if a.ID == r.Income.AccountID {
			projected += r.Deposit
		}
		for _, t := range r.Plan.Transfers {
			if t.FromAccountID == a.ID && t.Status != model.TransferSkipped {
				projected -= t.Amount
			}
			if t.ToAccountID == a.ID && t.Status == model.TransferCleared {
				projected += t.Amount
			}
		}
		r.Audit = append(r.Audit, AuditLine{
			AccountID: a.ID,
			Name:      a.Name,
			Current:   a.CurrentBalance,
			Projected: projected,
			Final:     projected,
		})
	}
	r.Stage = StageAudit
	return r, nil
}

// AdjustBalance hand-corrects one projected balance.
func (r Ritual) AdjustBalance(accountID string, balance money.Cents) (Ritual, error) {
	if err := r.expect(StageAudit); err != nil {
		return r, err
	}
	idx := slices.IndexFunc(r.Audit, func(l AuditLine) bool { return l.AccountID == accountID })
	if idx < 0 {
		return r, fmt.Errorf("unknown account %s", accountID)
	}
	r.Audit = slices.Clone(r.Audit)
	r.Audit[idx].Final = balance
	r.Audit[idx].Adjusted = balance != r.Audit[idx].Projected
	return r, nil
}

// Outcome is how a ritual ended: Completed, Skipped, or Cancelled.
type Outcome interface {
	outcome()
}

// Completed carries the mutations of a committed ritual.
type Completed struct {
	IncomeID         string
	PendingTransfers []model.PendingTransfer
	Batch            ledger.Batch
}

// Skipped carries the deposit and date advance of a skipped ritual.
type Skipped struct {
	IncomeID string
	Batch    ledger.Batch
}

// Cancelled means nothing is to be written.
type Cancelled struct{}

func (Completed) outcome() {}
func (Skipped) outcome()   {}
func (Cancelled) outcome() {}

// Commit turns the audited ritual into a batch. Allocations into an account
// whose incoming transfer is still pending are deferred onto that
// transfer's record; all others are applied now.
func (r Ritual) Commit(now time.Time) (Outcome, error) {
	if err := r.expect(StageAudit); err != nil {
		return nil, err
	}
	batch := ledger.Batch{Name: "payday " + r.Income.Name}
	idx := model.AccountIndex(r.snap.Accounts)

	for _, l := range r.Audit {
		if delta := l.Final - l.Current; delta != 0 {
			batch.Add(ledger.AdjustAccountBalance{AccountID: l.AccountID, Delta: delta})
		}
	}

	pending := make(map[string]int)
	var records []model.PendingTransfer
	for _, t := range r.Plan.Transfers {
		if t.Status != model.TransferPending {
			continue
		}
		if _, ok := pending[t.ToAccountID]; ok {
			continue
		}
		pending[t.ToAccountID] = len(records)
		records = append(records, model.PendingTransfer{
			ID:            uuid.NewString(),
			CreatedAt:     now,
			FromAccountID: t.FromAccountID,
			ToAccountID:   t.ToAccountID,
			IncomeID:      r.Income.ID,
			Status:        model.TransferPending,
			Amount:        t.Amount,
		})
	}

	for _, b := range r.snap.Buckets {
		amount := r.allocations[b.ID]
		if amount <= 0 || !Participates(b) {
			continue
		}
		if i, ok := pending[EffectiveAccount(b, idx)]; ok {
			records[i].Allocations = append(records[i].Allocations, model.DeferredAllocation{BucketID: b.ID, Amount: amount})
			continue
		}
		batch.Add(ledger.AdjustBucketBalance{BucketID: b.ID, Delta: amount})
	}
	for _, p := range records {
		batch.Add(ledger.CreatePendingTransfer{Transfer: p})
	}

	batch.Add(r.advanceIncome())
	batch.Add(ledger.AppendLog{Entry: r.logEntry(model.LogPayday, now, idx)})
	return Completed{IncomeID: r.Income.ID, PendingTransfers: records, Batch: batch}, nil
}

// Skip records only the deposit and the date advance. It is allowed from
// any stage.
func (r Ritual) Skip(now time.Time) Outcome {
	idx := model.AccountIndex(r.snap.Accounts)
	batch := ledger.Batch{Name: "skip payday " + r.Income.Name}
	if _, ok := idx[r.Income.AccountID]; ok && r.Deposit != 0 {
		batch.Add(ledger.AdjustAccountBalance{AccountID: r.Income.AccountID, Delta: r.Deposit})
	}
	batch.Add(r.advanceIncome())
	batch.Add(ledger.AppendLog{Entry: r.logEntry(model.LogPaydaySkipped, now, idx)})
	return Skipped{IncomeID: r.Income.ID, Batch: batch}
}

// Cancel abandons the ritual.
func (r Ritual) Cancel() Outcome {
	return Cancelled{}
}

// advanceIncome moves the triggering income past today, expecting it to still
// sit on the date the ritual was started from. A one-time income is consumed
// and left without a date. A derived partner income has no record of its
// own, so its partner's pay date moves instead.
func (r Ritual) advanceIncome() ledger.Op {
	var next calendar.Date
	if r.Income.Frequency.Recurring() {
		next = calendar.NextAfter(r.Income.NextDate, r.Income.Frequency, r.Today)
	}
	if r.Income.IsDerived {
		return ledger.SetPartnerNextPayDate{PartnerID: r.Income.PartnerID, Expect: r.Income.NextDate, NextPayDate: next}
	}
	return ledger.SetIncomeNextDate{IncomeID: r.Income.ID, Expect: r.Income.NextDate, NextDate: next}
}

func (r Ritual) logEntry(kind model.LogKind, now time.Time, idx map[string]model.Account) model.LogEntry {
	return model.LogEntry{
		ID:                uuid.NewString(),
		CreatedAt:         now,
		Kind:              kind,
		ItemID:            r.Income.ID,
		ItemName:          r.Income.Name,
		AccountName:       idx[r.Income.AccountID].Name,
		OriginalAccountID: r.Income.AccountID,
		Amount:            r.Deposit,
	}
}
