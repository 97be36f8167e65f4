package stats

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
)

type Gateway interface {
	FetchStats(ctx context.Context, domain ledger.Domain) (ledger.StatsSnapshot, error)
}

// Aggregator maintains per-domain overview snapshots. They are hydrated
// wholesale from the server and then mutated incrementally as records are
// optimistically added or removed, until the next full refresh overwrites them.
type Aggregator struct {
	mu        sync.Mutex
	gateway   Gateway
	snapshots map[ledger.Domain]*ledger.StatsSnapshot
	recent    map[ledger.Domain][]RecordSummary
}

func NewAggregator(gateway Gateway) *Aggregator {
	return &Aggregator{
		gateway:   gateway,
		snapshots: make(map[ledger.Domain]*ledger.StatsSnapshot),
		recent:    make(map[ledger.Domain][]RecordSummary),
	}
}

// Refresh replaces the snapshot for the domain from the server. On failure
// the prior snapshot stays in place.
func (a *Aggregator) Refresh(ctx context.Context, domain ledger.Domain) error {
	snapshot, err := a.gateway.FetchStats(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to refresh %s stats: %w", domain, err)
	}
	if snapshot.CategoryBreakdown == nil {
		snapshot.CategoryBreakdown = make(map[string]ledger.CategoryStat)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshots[domain] = &snapshot
	return nil
}

// Snapshot returns a deep copy of the domain snapshot.
func (a *Aggregator) Snapshot(domain ledger.Domain) (ledger.StatsSnapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	snapshot, ok := a.snapshots[domain]
	if !ok {
		return ledger.StatsSnapshot{}, false
	}
	return snapshot.Clone(), true
}

// ApplyDelta incrementally adjusts the domain snapshot for one record
// mutation. againstCeiling distinguishes changing a budget's allocated
// amount (which only moves the TotalBudget accumulator) from spending
// against a budget; the two are never conflated.
func (a *Aggregator) ApplyDelta(domain ledger.Domain, amount decimal.Decimal, category string, op ledger.AdjustOp, againstCeiling bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	snapshot := a.snapshots[domain]
	if snapshot == nil {
		// Optimistic mutations may land before the first refresh; start from
		// zero so nothing is lost and the next refresh overwrites wholesale.
		snapshot = &ledger.StatsSnapshot{CategoryBreakdown: make(map[string]ledger.CategoryStat)}
		a.snapshots[domain] = snapshot
	}

	if againstCeiling {
		if op == ledger.OpAdd {
			snapshot.TotalBudget = snapshot.TotalBudget.Add(amount)
		} else {
			snapshot.TotalBudget = snapshot.TotalBudget.Sub(amount)
			if snapshot.TotalBudget.IsNegative() {
				snapshot.TotalBudget = decimal.Zero
			}
		}
		return
	}

	stat := snapshot.CategoryBreakdown[category]
	if op == ledger.OpAdd {
		snapshot.TotalSpent = snapshot.TotalSpent.Add(amount)
		snapshot.TotalExpenses++
		stat.Total = stat.Total.Add(amount)
		stat.Count++
		snapshot.CategoryBreakdown[category] = stat
		return
	}

	snapshot.TotalSpent = snapshot.TotalSpent.Sub(amount)
	if snapshot.TotalSpent.IsNegative() {
		snapshot.TotalSpent = decimal.Zero
	}
	if snapshot.TotalExpenses > 0 {
		snapshot.TotalExpenses--
	}
	stat.Total = stat.Total.Sub(amount)
	stat.Count--
	if stat.Count <= 0 {
		delete(snapshot.CategoryBreakdown, category)
	} else {
		if stat.Total.IsNegative() {
			stat.Total = decimal.Zero
		}
		snapshot.CategoryBreakdown[category] = stat
	}
}

func recentLimit(domain ledger.Domain) int {
	if domain == ledger.DomainBudgetExpense {
		return RecentBudgetLimit
	}
	return RecentFreeLimit
}

// PushRecent inserts a summary at the head of the domain's recent-activity
// list, evicting past the bound.
func (a *Aggregator) PushRecent(domain ledger.Domain, summary RecordSummary) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entries := append([]RecordSummary{summary}, a.recent[domain]...)
	if limit := recentLimit(domain); len(entries) > limit {
		entries = entries[:limit]
	}
	a.recent[domain] = entries
}

// DropRecent removes the summary with the given id, if present.
func (a *Aggregator) DropRecent(domain ledger.Domain, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entries := a.recent[domain]
	for i, entry := range entries {
		if entry.ID == id {
			a.recent[domain] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// RenameRecent swaps a provisional id for the server-issued one.
func (a *Aggregator) RenameRecent(domain ledger.Domain, oldID, newID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entries := a.recent[domain]
	for i := range entries {
		if entries[i].ID == oldID {
			entries[i].ID = newID
			return
		}
	}
}

func (a *Aggregator) Recent(domain ledger.Domain) []RecordSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	entries := a.recent[domain]
	out := make([]RecordSummary, len(entries))
	copy(out, entries)
	return out
}

// Reset drops all snapshots and recent activity, used on session teardown.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshots = make(map[ledger.Domain]*ledger.StatsSnapshot)
	a.recent = make(map[ledger.Domain][]RecordSummary)
}
