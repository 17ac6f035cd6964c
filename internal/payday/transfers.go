package payday

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// DefaultMaxChainDepth bounds the fundedFromId walk.
const DefaultMaxChainDepth = 5

var (
	// ErrFundingCycle is returned when fundedFromId links form a loop.
	ErrFundingCycle = errors.New("funding chain cycle")
	// ErrChainTooDeep is reported when a funding chain exceeds the depth bound.
	ErrChainTooDeep = errors.New("funding chain too deep")
)

// LineKind classifies a transfer breakdown line.
type LineKind string

// Breakdown line kinds.
const (
	LineNeed       LineKind = "need"
	LineOffset     LineKind = "offset"
	LineDownstream LineKind = "downstream"
)

// Line is one entry in a transfer's breakdown. Offsets carry negative amounts.
type Line struct {
	Kind   LineKind
	Ref    string
	Label  string
	Amount money.Cents
}

// Transfer is one edge of the plan.
type Transfer struct {
	FromAccountID string
	ToAccountID   string
	Status        model.TransferStatus
	Breakdown     []Line
	Amount        money.Cents
	// Drift is Amount minus the destination's configured auto-transfer.
	// It is only meaningful when HasAuto is set.
	Drift   money.Cents
	HasAuto bool
}

// Issue is a configuration problem found while planning. Planning still
// produces a usable result around it.
type Issue struct {
	Err       error
	AccountID string
}

func (i Issue) Error() string {
	return fmt.Sprintf("account %s: %v", i.AccountID, i.Err)
}

// Plan is the resolved set of transfers for one paycheck.
type Plan struct {
	Transfers []Transfer
	Issues    []Issue
}

// TransferInput carries everything ResolveTransfers reads.
type TransferInput struct {
	Allocations      map[string]money.Cents
	DepositAccountID string
	Accounts         []model.Account
	Buckets          []model.Bucket
	Offsets          []Offset
	MaxDepth         int
}

// EffectiveAccount is where a bucket's money has to sit: its own account,
// or the backing account when it lives on a linked credit card.
func EffectiveAccount(b model.Bucket, idx map[string]model.Account) string {
	acct, ok := idx[b.AccountID]
	if !ok {
		return b.AccountID
	}
	if acct.Kind == model.AccountCredit && acct.LinkedAccountID != "" {
		if _, ok := idx[acct.LinkedAccountID]; ok {
			return acct.LinkedAccountID
		}
	}
	return b.AccountID
}

type need struct {
	lines []Line
	total money.Cents
}

// ResolveTransfers groups allocations by effective account, nets active
// offsets against each group, and routes what remains from the deposit
// account through each account's funding chain. Edges sharing a source and
// destination are merged.
func ResolveTransfers(in TransferInput) Plan {
	maxDepth := in.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxChainDepth
	}
	idx := model.AccountIndex(in.Accounts)

	needs := make(map[string]*need)
	for _, b := range in.Buckets {
		amount := in.Allocations[b.ID]
		if amount <= 0 || !Participates(b) {
			continue
		}
		target := EffectiveAccount(b, idx)
		if _, ok := idx[target]; !ok {
			continue
		}
		n := needs[target]
		if n == nil {
			n = &need{}
			needs[target] = n
		}
		n.total += amount
		n.lines = append(n.lines, Line{Kind: LineNeed, Ref: b.ID, Label: b.Name, Amount: amount})
	}

	ids := make([]string, 0, len(needs))
	for id := range needs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var plan Plan
	edges := make(map[[2]string]int)
	addEdge := func(from, to string, amount money.Cents, lines []Line) {
		key := [2]string{from, to}
		if i, ok := edges[key]; ok {
			plan.Transfers[i].Amount += amount
			plan.Transfers[i].Breakdown = append(plan.Transfers[i].Breakdown, lines...)
			return
		}
		edges[key] = len(plan.Transfers)
		plan.Transfers = append(plan.Transfers, Transfer{
			FromAccountID: from,
			ToAccountID:   to,
			Amount:        amount,
			Breakdown:     lines,
			Status:        model.TransferPending,
		})
	}

	for _, id := range ids {
		if id == in.DepositAccountID {
			continue
		}
		n := needs[id]
		lines := n.lines
		net := n.total
		for _, o := range in.Offsets {
			if !o.Active || o.AccountID != id {
				continue
			}
			used := money.Min(o.Amount, net)
			if used <= 0 {
				continue
			}
			net -= used
			lines = append(lines, Line{Kind: LineOffset, Ref: o.IncomeID, Label: o.Name, Amount: -used})
		}
		if net <= 0 {
			continue
		}

		chain, err := fundingChain(idx, id, in.DepositAccountID, maxDepth)
		if err != nil {
			plan.Issues = append(plan.Issues, Issue{AccountID: id, Err: err})
		}
		// chain runs from the needy account up to its first hop below the
		// deposit account; money flows the other way.
		to := id
		for hop := 0; hop < len(chain); hop++ {
			from := in.DepositAccountID
			if hop+1 < len(chain) {
				from = chain[hop+1]
			}
			edgeLines := lines
			if hop > 0 {
				edgeLines = []Line{{Kind: LineDownstream, Ref: id, Label: "via " + idx[id].Name, Amount: net}}
			}
			addEdge(from, to, net, edgeLines)
			to = from
		}
	}

	for i := range plan.Transfers {
		t := &plan.Transfers[i]
		if dest, ok := idx[t.ToAccountID]; ok && dest.AutoConfig != nil && dest.AutoConfig.IsAuto {
			t.HasAuto = true
			t.Drift = t.Amount - dest.AutoConfig.Amount
		}
	}
	return plan
}

// fundingChain walks fundedFromId from start toward deposit and returns the
// accounts that receive a transfer, nearest the need first. A missing or
// unknown parent means the account is funded straight from deposit. On a
// cycle or an over-long chain the walk stops and the last account reached
// is funded from deposit directly.
func fundingChain(idx map[string]model.Account, start, deposit string, maxDepth int) ([]string, error) {
	chain := []string{start}
	seen := map[string]bool{start: true}
	current := start
	for {
		parent := idx[current].FundedFromID
		if parent == "" || parent == deposit {
			return chain, nil
		}
		if _, ok := idx[parent]; !ok {
			return chain, nil
		}
		if seen[parent] {
			return chain, fmt.Errorf("%w: %s -> %s", ErrFundingCycle, current, parent)
		}
		if len(chain) >= maxDepth {
			return chain, fmt.Errorf("%w: more than %d hops from %s", ErrChainTooDeep, maxDepth, start)
		}
		seen[parent] = true
		chain = append(chain, parent)
		current = parent
	}
}

// ValidateFundingGraph rejects account sets whose fundedFromId links loop.
func ValidateFundingGraph(accounts []model.Account) error {
	idx := model.AccountIndex(accounts)
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		seen := map[string]bool{id: true}
		current := id
		for {
			parent := idx[current].FundedFromID
			if parent == "" {
				break
			}
			if _, ok := idx[parent]; !ok {
				break
			}
			if seen[parent] {
				return fmt.Errorf("%w: %s -> %s", ErrFundingCycle, current, parent)
			}
			seen[parent] = true
			current = parent
		}
	}
	return nil
}
