package tui

import (
	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/forecast"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/partner"
	"github.com/Veraticus/the-payday-must-flow/internal/reserve"
)

// dashboard is everything the views render, derived from one snapshot.
type dashboard struct {
	today    calendar.Date
	strategy reserve.Strategy
	names    map[string]string
	low      forecast.Point
	summary  reserve.Summary
	accounts []model.Account
	buckets  []model.Bucket
	points   []forecast.Point
	pending  []model.PendingTransfer
	hasLow   bool
}

func buildDashboard(snap model.Snapshot, today calendar.Date, days int) dashboard {
	accounts := model.ActiveAccounts(snap.Accounts)
	buckets := model.ActiveBuckets(snap.Buckets)
	incomes := partner.WithVirtualIncomes(model.ActiveIncomes(snap.Incomes), snap.Partners, buckets)

	strategy, summary := reserve.Compute(accounts, buckets)
	points := forecast.Project(forecast.Input{
		Today:    today,
		Accounts: accounts,
		Incomes:  incomes,
		Buckets:  buckets,
		Days:     days,
	})
	low, hasLow := forecast.LowPoint(points)

	d := dashboard{
		today:    today,
		strategy: strategy,
		summary:  summary,
		accounts: accounts,
		buckets:  buckets,
		points:   points,
		low:      low,
		hasLow:   hasLow,
		names:    make(map[string]string, len(accounts)),
	}
	for _, a := range accounts {
		d.names[a.ID] = a.Name
	}
	for _, t := range snap.PendingTransfers {
		if t.Status == model.TransferPending {
			d.pending = append(d.pending, t)
		}
	}
	return d
}

func (d dashboard) accountName(id string) string {
	if n, ok := d.names[id]; ok {
		return n
	}
	return id
}

// goalProgress returns how far a savings goal is toward its target, in
// [0, 1]. ok is false for buckets without a target.
func goalProgress(b model.Bucket) (float64, bool) {
	if b.TargetBalance == nil || *b.TargetBalance <= 0 {
		return 0, false
	}
	p := float64(b.CurrentBalance) / float64(*b.TargetBalance)
	return min(max(p, 0), 1), true
}

func bucketStatus(b model.Bucket) string {
	switch {
	case b.IsCleared:
		return "cleared"
	case b.IsPaid:
		return "in transit"
	case b.CurrentBalance >= b.Amount && b.Amount > 0:
		return "funded"
	default:
		return "open"
	}
}
