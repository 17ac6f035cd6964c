// Package reserve computes how much of each account's balance is earmarked
// for bucket obligations and how much is left to spend.
package reserve

import (
	"log/slog"
	"sort"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// ReservedAmount sums the tracked balances of the buckets living in
// accountID. Owed-only and cleared buckets are excluded, and a paid bucket
// counts only what was allocated to it after the payment left; nothing is
// inferred from due dates.
func ReservedAmount(buckets []model.Bucket, accountID string) money.Cents {
	var total money.Cents
	for _, b := range buckets {
		if b.AccountID != accountID || b.Deleted || b.OwedOnly() || b.IsCleared {
			continue
		}
		total += b.NextCycleBalance()
	}
	return total
}

// ItemStatus says which total a reserved item counts toward.
type ItemStatus string

// Item statuses.
const (
	StatusRequired      ItemStatus = "required"
	StatusPending       ItemStatus = "pending"
	StatusHeldForCredit ItemStatus = "held_for_credit"
)

// ReservedItem is one bucket's contribution to an account's reservation.
type ReservedItem struct {
	BucketID string
	Name     string
	// ViaAccountID is the credit account whose bucket was redirected here.
	ViaAccountID string
	Status       ItemStatus
	Amount       money.Cents
}

// Reservation holds the earmarked totals for one account.
type Reservation struct {
	AccountID     string
	Items         []ReservedItem
	Required      money.Cents
	Pending       money.Cents
	HeldForCredit money.Cents
}

// Total is everything earmarked in the account.
func (r Reservation) Total() money.Cents {
	return r.Required + r.Pending + r.HeldForCredit
}

// Strategy is the per-account reservation breakdown.
type Strategy struct {
	byAccount map[string]*Reservation
}

// For returns the reservation for accountID; unknown accounts reserve nothing.
func (s Strategy) For(accountID string) Reservation {
	if r, ok := s.byAccount[accountID]; ok {
		return *r
	}
	return Reservation{AccountID: accountID}
}

// AccountIDs lists the accounts holding a non-empty reservation, sorted.
func (s Strategy) AccountIDs() []string {
	ids := make([]string, 0, len(s.byAccount))
	for id, r := range s.byAccount {
		if len(r.Items) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// BuildStrategy partitions bucket balances into required, pending, and
// held-for-credit totals per account. A bucket billed to a credit account
// that names a backing checking account counts against the backing account,
// since that is where the money to pay the card sits. A paid bucket's
// in-transit amount is pending; anything allocated to it since is reserved
// like an unpaid balance.
func BuildStrategy(accounts []model.Account, buckets []model.Bucket) Strategy {
	idx := model.AccountIndex(accounts)
	s := Strategy{byAccount: make(map[string]*Reservation)}

	get := func(id string) *Reservation {
		r, ok := s.byAccount[id]
		if !ok {
			r = &Reservation{AccountID: id}
			s.byAccount[id] = r
		}
		return r
	}

	for _, b := range buckets {
		if b.Deleted || b.OwedOnly() || b.IsCleared || b.CurrentBalance == 0 {
			continue
		}
		// Goals tracking linked real accounts hold no money of their own.
		if len(b.LinkedAccountIDs) > 0 {
			continue
		}
		acct, ok := idx[b.AccountID]
		if !ok {
			slog.Debug("skipping bucket with unknown account", "bucket", b.ID, "account", b.AccountID)
			continue
		}

		target, via := acct.ID, ""
		if acct.Kind == model.AccountCredit {
			if backing, ok := idx[acct.LinkedAccountID]; ok {
				target, via = backing.ID, acct.ID
			}
		}

		r := get(target)
		if pending := b.InTransitAmount(); pending != 0 {
			r.Pending += pending
			r.Items = append(r.Items, ReservedItem{BucketID: b.ID, Name: b.Name, ViaAccountID: via,
				Status: StatusPending, Amount: pending})
		}
		held := b.NextCycleBalance()
		if held == 0 {
			continue
		}
		item := ReservedItem{BucketID: b.ID, Name: b.Name, ViaAccountID: via, Amount: held}
		if via != "" {
			item.Status = StatusHeldForCredit
			r.HeldForCredit += held
		} else {
			item.Status = StatusRequired
			r.Required += held
		}
		r.Items = append(r.Items, item)
	}
	return s
}
