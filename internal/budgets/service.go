package budgets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appErrors "github.com/Developer-Chandan-Dev/first-sass-app-sub000/apperrors"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
)

type Gateway interface {
	ListBudgets(ctx context.Context, activeOnly bool) ([]ledger.Budget, error)
	CreateBudget(ctx context.Context, budget ledger.Budget) (ledger.Budget, error)
	UpdateBudget(ctx context.Context, budget ledger.Budget) (ledger.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	UpdateBudgetStatus(ctx context.Context, id string, status ledger.BudgetStatus) error
}

// Tracker keeps each budget's derived spent/remaining/percentage synchronized
// with the budget-expense records referencing it. It is the single writer of
// those fields; spend changes arrive as O(1) increments, never rescans.
type Tracker struct {
	mu      sync.Mutex
	gateway Gateway
	budgets map[string]*ledger.Budget
	order   []string
}

func NewTracker(gateway Gateway) *Tracker {
	return &Tracker{
		gateway: gateway,
		budgets: make(map[string]*ledger.Budget),
	}
}

// Load hydrates the tracker from the server, which pre-joins the aggregates.
// On failure the prior state is left untouched.
func (t *Tracker) Load(ctx context.Context, activeOnly bool) error {
	loaded, err := t.gateway.ListBudgets(ctx, activeOnly)
	if err != nil {
		return fmt.Errorf("failed to load budgets: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.budgets = make(map[string]*ledger.Budget, len(loaded))
	t.order = make([]string, 0, len(loaded))
	for i := range loaded {
		budget := loaded[i]
		budget.Recalc()
		t.budgets[budget.ID] = &budget
		t.order = append(t.order, budget.ID)
	}
	return nil
}

func (t *Tracker) Get(id string) (ledger.Budget, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	budget, ok := t.budgets[id]
	if !ok {
		return ledger.Budget{}, false
	}
	return *budget, true
}

func (t *Tracker) Budgets() []ledger.Budget {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ledger.Budget, 0, len(t.order))
	for _, id := range t.order {
		if budget, ok := t.budgets[id]; ok {
			out = append(out, *budget)
		}
	}
	return out
}

// AdjustSpent applies one spend increment or decrement to a single budget and
// recomputes its derived fields. Spent is clamped at zero on subtract so
// out-of-order rollbacks cannot drive it negative. A missing budget is a
// no-op: the referenced budget may have been removed meanwhile.
func (t *Tracker) AdjustSpent(id string, amount decimal.Decimal, op ledger.AdjustOp) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	budget, ok := t.budgets[id]
	if !ok {
		return false
	}
	if op == ledger.OpAdd {
		budget.Spent = budget.Spent.Add(amount)
	} else {
		budget.Spent = budget.Spent.Sub(amount)
		if budget.Spent.IsNegative() {
			budget.Spent = decimal.Zero
		}
	}
	budget.Recalc()
	return true
}

// DeriveStatus resolves the effective lifecycle status at the given time.
// A past end date means expired, unless the stored status is an explicit
// terminal or paused state, which dates never override.
func DeriveStatus(budget ledger.Budget, now time.Time) ledger.BudgetStatus {
	if budget.Status == ledger.StatusCompleted || budget.Status == ledger.StatusPaused {
		return budget.Status
	}
	if !budget.EndDate.IsZero() && budget.EndDate.Before(now) {
		return ledger.StatusExpired
	}
	return budget.Status
}

// Badge is the UI-facing label. Exceedance is a presentation concern only;
// the underlying status field is untouched at or past 100%.
func Badge(budget ledger.Budget, now time.Time) string {
	if budget.Percentage >= 100 {
		return "exceeded"
	}
	return string(DeriveStatus(budget, now))
}

// SetStatus applies a user-driven transition and persists it. The optimistic
// local change is reverted when the network call fails. Expired is date-derived
// only and can never be set directly.
func (t *Tracker) SetStatus(ctx context.Context, id string, status ledger.BudgetStatus) error {
	switch status {
	case ledger.StatusRunning, ledger.StatusPaused, ledger.StatusCompleted:
	case ledger.StatusExpired:
		return fmt.Errorf("%w: expired status is derived from the end date and cannot be set", appErrors.ErrInvalidInput)
	default:
		return fmt.Errorf("%w: unknown budget status: %q", appErrors.ErrInvalidInput, status)
	}

	t.mu.Lock()
	budget, ok := t.budgets[id]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: budget %s is not loaded", appErrors.ErrNotFound, id)
	}
	prev := budget.Status
	budget.Status = status
	t.mu.Unlock()

	if err := t.gateway.UpdateBudgetStatus(ctx, id, status); err != nil {
		t.mu.Lock()
		if budget, ok := t.budgets[id]; ok {
			budget.Status = prev
		}
		t.mu.Unlock()
		return fmt.Errorf("%w: failed to persist status change: %v", appErrors.ErrMutationRejected, err)
	}
	return nil
}

// Insert adds a budget optimistically at the head of the listing order.
func (t *Tracker) Insert(budget ledger.Budget) {
	budget.Recalc()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.budgets[budget.ID] = &budget
	t.order = append([]string{budget.ID}, t.order...)
}

// Confirm swaps a provisional budget for the server-confirmed one, keeping
// the listing position.
func (t *Tracker) Confirm(tempID string, serverBudget ledger.Budget) {
	serverBudget.Recalc()
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, id := range t.order {
		if id == tempID {
			t.order[i] = serverBudget.ID
			delete(t.budgets, tempID)
			t.budgets[serverBudget.ID] = &serverBudget
			return
		}
	}
	t.budgets[serverBudget.ID] = &serverBudget
	t.order = append(t.order, serverBudget.ID)
}

// Replace restores or overwrites a budget in place.
func (t *Tracker) Replace(budget ledger.Budget) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.budgets[budget.ID]; !ok {
		return false
	}
	t.budgets[budget.ID] = &budget
	return true
}

// Remove deletes a budget and returns its snapshot and listing position for
// rollback.
func (t *Tracker) Remove(id string) (ledger.Budget, int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	budget, ok := t.budgets[id]
	if !ok {
		return ledger.Budget{}, 0, false
	}
	delete(t.budgets, id)
	for i, ordered := range t.order {
		if ordered == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return *budget, i, true
		}
	}
	return *budget, 0, true
}

// RestoreAt reinserts a removed budget at its original listing position.
func (t *Tracker) RestoreAt(index int, budget ledger.Budget) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.budgets[budget.ID] = &budget
	if index < 0 {
		index = 0
	}
	if index > len(t.order) {
		index = len(t.order)
	}
	t.order = append(t.order[:index], append([]string{budget.ID}, t.order[index:]...)...)
}

// Reset drops all loaded budgets, used on session teardown.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.budgets = make(map[string]*ledger.Budget)
	t.order = nil
}
