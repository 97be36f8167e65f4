package stats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
)

// Mocks
type MockGateway struct {
	snapshot ledger.StatsSnapshot
	failing  bool
}

func (m *MockGateway) FetchStats(ctx context.Context, domain ledger.Domain) (ledger.StatsSnapshot, error) {
	if m.failing {
		return ledger.StatsSnapshot{}, errors.New("connection refused")
	}
	return m.snapshot.Clone(), nil
}

func TestRefreshFailureKeepsPriorSnapshot(t *testing.T) {
	gateway := &MockGateway{snapshot: ledger.StatsSnapshot{
		TotalSpent:    decimal.NewFromInt(1000),
		TotalExpenses: 4,
		CategoryBreakdown: map[string]ledger.CategoryStat{
			"Food": {Total: decimal.NewFromInt(1000), Count: 4},
		},
	}}
	aggregator := NewAggregator(gateway)
	ctx := context.Background()

	if err := aggregator.Refresh(ctx, ledger.DomainFreeExpense); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	gateway.failing = true
	if err := aggregator.Refresh(ctx, ledger.DomainFreeExpense); err == nil {
		t.Fatal("Expected refresh error, got nil")
	}

	snapshot, ok := aggregator.Snapshot(ledger.DomainFreeExpense)
	if !ok {
		t.Fatal("Prior snapshot was dropped")
	}
	if !snapshot.TotalSpent.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Prior snapshot changed: TotalSpent=%s", snapshot.TotalSpent)
	}
}

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name         string
		op           ledger.AdjustOp
		amount       int64
		category     string
		wantSpent    int64
		wantCount    int
		wantEntry    bool
		wantEntryCnt int
	}{
		{name: "add creates category entry", op: ledger.OpAdd, amount: 200, category: "Travel", wantSpent: 1200, wantCount: 5, wantEntry: true, wantEntryCnt: 1},
		{name: "add grows existing entry", op: ledger.OpAdd, amount: 100, category: "Food", wantSpent: 1100, wantCount: 5, wantEntry: true, wantEntryCnt: 5},
		{name: "subtract shrinks entry", op: ledger.OpSubtract, amount: 250, category: "Food", wantSpent: 750, wantCount: 3, wantEntry: true, wantEntryCnt: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &MockGateway{snapshot: ledger.StatsSnapshot{
				TotalSpent:    decimal.NewFromInt(1000),
				TotalExpenses: 4,
				CategoryBreakdown: map[string]ledger.CategoryStat{
					"Food": {Total: decimal.NewFromInt(1000), Count: 4},
				},
			}}
			aggregator := NewAggregator(gateway)
			if err := aggregator.Refresh(context.Background(), ledger.DomainFreeExpense); err != nil {
				t.Fatalf("Refresh failed: %v", err)
			}

			aggregator.ApplyDelta(ledger.DomainFreeExpense, decimal.NewFromInt(tt.amount), tt.category, tt.op, false)

			snapshot, _ := aggregator.Snapshot(ledger.DomainFreeExpense)
			if !snapshot.TotalSpent.Equal(decimal.NewFromInt(tt.wantSpent)) {
				t.Errorf("TotalSpent mismatch: got %s, want %d", snapshot.TotalSpent, tt.wantSpent)
			}
			if snapshot.TotalExpenses != tt.wantCount {
				t.Errorf("TotalExpenses mismatch: got %d, want %d", snapshot.TotalExpenses, tt.wantCount)
			}
			entry, ok := snapshot.CategoryBreakdown[tt.category]
			if ok != tt.wantEntry {
				t.Fatalf("Entry presence mismatch: got %v, want %v", ok, tt.wantEntry)
			}
			if ok && entry.Count != tt.wantEntryCnt {
				t.Errorf("Entry count mismatch: got %d, want %d", entry.Count, tt.wantEntryCnt)
			}
		})
	}
}

func TestApplyDeltaRemovesEmptyCategory(t *testing.T) {
	aggregator := NewAggregator(&MockGateway{})

	amount := decimal.NewFromInt(120)
	aggregator.ApplyDelta(ledger.DomainFreeExpense, amount, "Books", ledger.OpAdd, false)
	aggregator.ApplyDelta(ledger.DomainFreeExpense, amount, "Books", ledger.OpSubtract, false)

	snapshot, ok := aggregator.Snapshot(ledger.DomainFreeExpense)
	if !ok {
		t.Fatal("Snapshot missing after deltas")
	}
	if _, exists := snapshot.CategoryBreakdown["Books"]; exists {
		t.Error("Category entry should be removed once its count reaches zero")
	}
	if !snapshot.TotalSpent.Equal(decimal.Zero) {
		t.Errorf("TotalSpent should be back at zero, got %s", snapshot.TotalSpent)
	}
	if snapshot.TotalExpenses != 0 {
		t.Errorf("TotalExpenses should be back at zero, got %d", snapshot.TotalExpenses)
	}
}

func TestCeilingDeltaNeverTouchesSpending(t *testing.T) {
	aggregator := NewAggregator(&MockGateway{})

	aggregator.ApplyDelta(ledger.DomainBudgetExpense, decimal.NewFromInt(2000), "", ledger.OpAdd, true)

	snapshot, _ := aggregator.Snapshot(ledger.DomainBudgetExpense)
	if !snapshot.TotalBudget.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("TotalBudget mismatch: got %s, want 2000", snapshot.TotalBudget)
	}
	if !snapshot.TotalSpent.Equal(decimal.Zero) || snapshot.TotalExpenses != 0 {
		t.Errorf("Ceiling delta leaked into spending: spent=%s count=%d", snapshot.TotalSpent, snapshot.TotalExpenses)
	}
	if len(snapshot.CategoryBreakdown) != 0 {
		t.Errorf("Ceiling delta leaked into breakdown: %v", snapshot.CategoryBreakdown)
	}
}

func TestRecentActivityBounds(t *testing.T) {
	tests := []struct {
		name   string
		domain ledger.Domain
		limit  int
	}{
		{name: "free domain keeps seven", domain: ledger.DomainFreeExpense, limit: RecentFreeLimit},
		{name: "budget domain keeps five", domain: ledger.DomainBudgetExpense, limit: RecentBudgetLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aggregator := NewAggregator(&MockGateway{})

			for i := 0; i < tt.limit+3; i++ {
				aggregator.PushRecent(tt.domain, RecordSummary{
					ID:     fmt.Sprintf("r-%d", i),
					Amount: decimal.NewFromInt(int64(i)),
				})
			}

			recent := aggregator.Recent(tt.domain)
			if len(recent) != tt.limit {
				t.Fatalf("Recent length mismatch: got %d, want %d", len(recent), tt.limit)
			}
			// newest first, oldest evicted
			if recent[0].ID != fmt.Sprintf("r-%d", tt.limit+2) {
				t.Errorf("Head mismatch: got %q", recent[0].ID)
			}
			if recent[len(recent)-1].ID != "r-3" {
				t.Errorf("Tail mismatch: got %q", recent[len(recent)-1].ID)
			}
		})
	}
}

func TestRecentDropAndRename(t *testing.T) {
	aggregator := NewAggregator(&MockGateway{})

	aggregator.PushRecent(ledger.DomainFreeExpense, RecordSummary{ID: "tmp-1"})
	aggregator.PushRecent(ledger.DomainFreeExpense, RecordSummary{ID: "tmp-2"})

	aggregator.RenameRecent(ledger.DomainFreeExpense, "tmp-1", "srv-1")
	aggregator.DropRecent(ledger.DomainFreeExpense, "tmp-2")

	recent := aggregator.Recent(ledger.DomainFreeExpense)
	if len(recent) != 1 {
		t.Fatalf("Recent length mismatch: got %d, want 1", len(recent))
	}
	if recent[0].ID != "srv-1" {
		t.Errorf("Rename not applied: got %q", recent[0].ID)
	}
}
