package records

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
)

// Mocks
type MockLoader struct {
	result  LoadResult
	failing bool
}

func (m *MockLoader) ListRecords(ctx context.Context, domain ledger.Domain, filters Filters, page, pageSize int) (LoadResult, error) {
	if m.failing {
		return LoadResult{}, errors.New("connection refused")
	}
	return m.result, nil
}

func confirmedRecord(id string, amount int64) ledger.Record {
	return ledger.Record{
		ID:       id,
		Domain:   ledger.DomainFreeExpense,
		Amount:   decimal.NewFromInt(amount),
		Category: "Food",
	}
}

func loadedStore(t *testing.T, loader *MockLoader) *Store {
	t.Helper()
	store := NewStore(ledger.DomainFreeExpense, loader)
	if err := store.Load(context.Background(), Filters{}, 1, 10); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return store
}

func TestLoadFailureKeepsPriorContent(t *testing.T) {
	loader := &MockLoader{result: LoadResult{
		Items:      []ledger.Record{confirmedRecord("r-1", 100)},
		Page:       1,
		TotalPages: 1,
		TotalCount: 1,
	}}
	store := loadedStore(t, loader)

	loader.failing = true
	if err := store.Load(context.Background(), Filters{Category: "Travel"}, 2, 10); err == nil {
		t.Fatal("Expected load error, got nil")
	}

	if got := len(store.Records()); got != 1 {
		t.Errorf("Records were overwritten on failed load: got %d, want 1", got)
	}
	if store.PageInfo().TotalCount != 1 {
		t.Errorf("TotalCount changed on failed load: got %d, want 1", store.PageInfo().TotalCount)
	}
	if store.Filters().Category != "" {
		t.Errorf("Filters changed on failed load: got %q", store.Filters().Category)
	}
}

func TestOptimisticInsertLifecycle(t *testing.T) {
	tests := []struct {
		name      string
		confirm   bool
		wantCount int
		wantID    string
	}{
		{name: "confirm swaps provisional for server record", confirm: true, wantCount: 2, wantID: "srv-9"},
		{name: "revert removes provisional record", confirm: false, wantCount: 1, wantID: "r-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &MockLoader{result: LoadResult{
				Items:      []ledger.Record{confirmedRecord("r-1", 100)},
				Page:       1,
				TotalPages: 1,
				TotalCount: 1,
			}}
			store := loadedStore(t, loader)

			provisional := confirmedRecord(ledger.NewTempID(), 50)
			store.ApplyOptimisticInsert(provisional)

			if store.PageInfo().TotalCount != 2 {
				t.Fatalf("TotalCount after insert: got %d, want 2", store.PageInfo().TotalCount)
			}
			head := store.Records()[0]
			if head.ID != provisional.ID {
				t.Fatalf("Provisional record not prepended: head is %q", head.ID)
			}
			if !head.IsProvisional() {
				t.Fatalf("Expected provisional head, got %q", head.ID)
			}

			if tt.confirm {
				store.ConfirmInsert(provisional.ID, confirmedRecord("srv-9", 50))
			} else {
				store.RevertInsert(provisional.ID)
			}

			if got := store.PageInfo().TotalCount; got != tt.wantCount {
				t.Errorf("TotalCount mismatch: got %d, want %d", got, tt.wantCount)
			}
			if head := store.Records()[0]; head.ID != tt.wantID {
				t.Errorf("Head record mismatch: got %q, want %q", head.ID, tt.wantID)
			}
			for _, record := range store.Records() {
				if record.IsProvisional() {
					t.Errorf("Leftover provisional record: %q", record.ID)
				}
			}
		})
	}
}

func TestConfirmInsertAppendsWhenProvisionalGone(t *testing.T) {
	loader := &MockLoader{result: LoadResult{
		Items:      []ledger.Record{confirmedRecord("r-1", 100)},
		Page:       1,
		TotalPages: 1,
		TotalCount: 1,
	}}
	store := loadedStore(t, loader)

	// The provisional record disappeared because the list was reloaded
	// between the optimistic insert and the server confirmation.
	store.ConfirmInsert("tmp-gone", confirmedRecord("srv-1", 42))

	recs := store.Records()
	if len(recs) != 2 {
		t.Fatalf("Confirmed record was dropped: got %d records", len(recs))
	}
	if recs[len(recs)-1].ID != "srv-1" {
		t.Errorf("Confirmed record not appended: tail is %q", recs[len(recs)-1].ID)
	}
}

func TestUpdateAndDeleteMissingIsNoop(t *testing.T) {
	loader := &MockLoader{result: LoadResult{
		Items:      []ledger.Record{confirmedRecord("r-1", 100)},
		Page:       1,
		TotalPages: 1,
		TotalCount: 1,
	}}
	store := loadedStore(t, loader)

	newCategory := "Travel"
	if _, ok := store.ApplyOptimisticUpdate("ghost", FieldPatch{Category: &newCategory}); ok {
		t.Error("Update of a missing id should be a no-op")
	}
	if _, _, ok := store.ApplyOptimisticDelete("ghost"); ok {
		t.Error("Delete of a missing id should be a no-op")
	}
	if store.PageInfo().TotalCount != 1 {
		t.Errorf("TotalCount changed by no-op: got %d, want 1", store.PageInfo().TotalCount)
	}
}

func TestOptimisticUpdatePatchesInPlace(t *testing.T) {
	loader := &MockLoader{result: LoadResult{
		Items:      []ledger.Record{confirmedRecord("r-1", 100)},
		Page:       1,
		TotalPages: 1,
		TotalCount: 1,
	}}
	store := loadedStore(t, loader)

	amount := decimal.NewFromInt(250)
	reason := "groceries"
	prev, ok := store.ApplyOptimisticUpdate("r-1", FieldPatch{Amount: &amount, Reason: &reason})
	if !ok {
		t.Fatal("Expected patch to apply")
	}
	if !prev.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Prior snapshot mismatch: got %s, want 100", prev.Amount)
	}

	patched, _ := store.Get("r-1")
	if !patched.Amount.Equal(amount) || patched.Reason != reason {
		t.Errorf("Patch not applied: got amount=%s reason=%q", patched.Amount, patched.Reason)
	}
	if patched.Category != "Food" {
		t.Errorf("Untouched field changed: got %q", patched.Category)
	}

	// rollback path restores the prior copy exactly
	store.Replace(prev)
	restored, _ := store.Get("r-1")
	if !restored.Amount.Equal(decimal.NewFromInt(100)) || restored.Reason != "" {
		t.Errorf("Replace did not restore prior state: %+v", restored)
	}
}

func TestDeleteRestoreKeepsPosition(t *testing.T) {
	loader := &MockLoader{result: LoadResult{
		Items: []ledger.Record{
			confirmedRecord("r-1", 100),
			confirmedRecord("r-2", 200),
			confirmedRecord("r-3", 300),
		},
		Page:       1,
		TotalPages: 1,
		TotalCount: 3,
	}}
	store := loadedStore(t, loader)

	removed, index, ok := store.ApplyOptimisticDelete("r-2")
	if !ok {
		t.Fatal("Expected delete to apply")
	}
	if index != 1 {
		t.Fatalf("Index mismatch: got %d, want 1", index)
	}
	if store.PageInfo().TotalCount != 2 {
		t.Fatalf("TotalCount after delete: got %d, want 2", store.PageInfo().TotalCount)
	}

	store.RestoreAt(index, removed)
	recs := store.Records()
	if recs[1].ID != "r-2" {
		t.Errorf("Restore position mismatch: got %q at index 1", recs[1].ID)
	}
	if store.PageInfo().TotalCount != 3 {
		t.Errorf("TotalCount after restore: got %d, want 3", store.PageInfo().TotalCount)
	}
}

func TestPaginationBoundAfterOptimisticChurn(t *testing.T) {
	const initialCount = 40
	items := make([]ledger.Record, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, confirmedRecord(fmt.Sprintf("r-%d", i), 10))
	}
	loader := &MockLoader{result: LoadResult{
		Items:      items,
		Page:       1,
		TotalPages: 4,
		TotalCount: initialCount,
	}}
	store := loadedStore(t, loader)

	const inserts = 5
	for i := 0; i < inserts; i++ {
		store.ApplyOptimisticInsert(confirmedRecord(ledger.NewTempID(), 10))
	}
	deletes := []string{"r-0", "r-3", "r-7"}
	for _, id := range deletes {
		if _, _, ok := store.ApplyOptimisticDelete(id); !ok {
			t.Fatalf("delete %s did not apply", id)
		}
	}

	want := initialCount + inserts - len(deletes)
	if got := store.PageInfo().TotalCount; got != want {
		t.Errorf("TotalCount mismatch: got %d, want %d", got, want)
	}
}
