package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appErrors "github.com/Developer-Chandan-Dev/first-sass-app-sub000/apperrors"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/budgets"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/contextutil"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/records"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/stats"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/logging"
)

const defaultTimeout = 15 * time.Second

type Gateway interface {
	CreateRecord(ctx context.Context, record ledger.Record) (ledger.Record, error)
	UpdateRecord(ctx context.Context, id string, patch records.FieldPatch) (ledger.Record, error)
	DeleteRecord(ctx context.Context, id string) error
	DeleteRecords(ctx context.Context, ids []string) error
	CreateBudget(ctx context.Context, budget ledger.Budget) (ledger.Budget, error)
	UpdateBudget(ctx context.Context, budget ledger.Budget) (ledger.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
}

// Controller is the single orchestration point for every create, update and
// delete. It applies the optimistic mutation synchronously, issues the network
// call under a timeout, and confirms or reverts so the record stores, budget
// tracker and stats aggregator always observe a consistent sequence.
type Controller struct {
	gateway Gateway
	stores  map[ledger.Domain]*records.Store
	budgets *budgets.Tracker
	stats   *stats.Aggregator
	timeout time.Duration

	mu  sync.Mutex
	log []Operation
}

type Option func(*Controller)

// WithTimeout bounds each network call; expiry takes the same revert path as
// an explicit failure, so a hung call cannot leave optimistic state applied
// forever.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewController(gateway Gateway, stores map[ledger.Domain]*records.Store, tracker *budgets.Tracker, aggregator *stats.Aggregator, opts ...Option) *Controller {
	c := &Controller{
		gateway: gateway,
		stores:  stores,
		budgets: tracker,
		stats:   aggregator,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// callCtx bounds the network call and stamps it with the operation id, so
// server-side traces correlate with the reconciliation log.
func (c *Controller) callCtx(ctx context.Context, opID string) (context.Context, context.CancelFunc) {
	return context.WithTimeout(contextutil.WithTraceID(ctx, opID), c.timeout)
}

func (c *Controller) begin(kind OpKind, domain ledger.Domain, targetID string) string {
	op := Operation{
		ID:        uuid.New().String(),
		Kind:      kind,
		Domain:    domain,
		TargetID:  targetID,
		State:     StatePending,
		StartedAt: time.Now().UTC(),
	}
	c.mu.Lock()
	c.log = append(c.log, op)
	c.mu.Unlock()
	return op.ID
}

func (c *Controller) finish(opID string, state OpState, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.log {
		if c.log[i].ID == opID {
			c.log[i].State = state
			c.log[i].FinishedAt = time.Now().UTC()
			if err != nil {
				c.log[i].Err = err.Error()
				logging.Logger.Warnf("%s on %s rolled back: %v", c.log[i].Kind, c.log[i].TargetID, err)
			}
			return
		}
	}
}

// Operations returns a copy of the reconciliation log.
func (c *Controller) Operations() []Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Operation, len(c.log))
	copy(out, c.log)
	return out
}

func (c *Controller) store(domain ledger.Domain) (*records.Store, error) {
	store, ok := c.stores[domain]
	if !ok {
		return nil, fmt.Errorf("%w: no store for domain %q", appErrors.ErrInternal, domain)
	}
	return store, nil
}

// applyEffects applies (or, with OpSubtract, removes) a record's derived
// effects: the stats deltas for expense domains and the budget spend for
// budget expenses. Income records carry no derived stats.
func (c *Controller) applyEffects(record ledger.Record, op ledger.AdjustOp) {
	if !record.Domain.IsExpense() {
		return
	}
	c.stats.ApplyDelta(record.Domain, record.Amount, record.Category, op, false)
	if record.Domain == ledger.DomainBudgetExpense {
		c.budgets.AdjustSpent(record.BudgetRef, record.Amount, op)
	}
}

func summaryOf(record ledger.Record) stats.RecordSummary {
	return stats.RecordSummary{
		ID:       record.ID,
		Amount:   record.Amount,
		Category: record.Category,
		Reason:   record.Reason,
		Date:     record.Date,
	}
}

// AddRecord synthesizes a provisional record, applies it everywhere before
// any network traffic, then confirms or reverts once the create resolves.
func (c *Controller) AddRecord(ctx context.Context, draft ledger.Record) (ledger.Record, error) {
	if err := draft.Validate(); err != nil {
		return ledger.Record{}, err
	}
	store, err := c.store(draft.Domain)
	if err != nil {
		return ledger.Record{}, err
	}

	now := time.Now().UTC()
	provisional := draft
	provisional.ID = ledger.NewTempID()
	provisional.CreatedAt = now
	if provisional.Date.IsZero() {
		provisional.Date = now
	}

	opID := c.begin(OpAddRecord, provisional.Domain, provisional.ID)

	store.ApplyOptimisticInsert(provisional)
	c.applyEffects(provisional, ledger.OpAdd)
	if provisional.Domain.IsExpense() {
		c.stats.PushRecent(provisional.Domain, summaryOf(provisional))
	}

	callCtx, cancel := c.callCtx(ctx, opID)
	defer cancel()
	confirmed, err := c.gateway.CreateRecord(callCtx, provisional)
	if err != nil {
		store.RevertInsert(provisional.ID)
		c.applyEffects(provisional, ledger.OpSubtract)
		if provisional.Domain.IsExpense() {
			c.stats.DropRecent(provisional.Domain, provisional.ID)
		}
		wrapped := fmt.Errorf("%w: failed to add %s record: %v", appErrors.ErrMutationRejected, provisional.Domain, err)
		c.finish(opID, StateRolledBack, wrapped)
		return ledger.Record{}, wrapped
	}

	// Deltas were already applied optimistically; only the identity changes.
	store.ConfirmInsert(provisional.ID, confirmed)
	if provisional.Domain.IsExpense() {
		c.stats.RenameRecent(provisional.Domain, provisional.ID, confirmed.ID)
	}
	c.finish(opID, StateConfirmed, nil)
	return confirmed, nil
}

// UpdateRecord patches a record optimistically and reconciles the derived
// stats with the difference between the old and new field values. A target
// that is no longer present locally is a no-op.
func (c *Controller) UpdateRecord(ctx context.Context, domain ledger.Domain, id string, patch records.FieldPatch) error {
	store, err := c.store(domain)
	if err != nil {
		return err
	}

	prev, ok := store.ApplyOptimisticUpdate(id, patch)
	if !ok {
		return nil
	}
	patched, _ := store.Get(id)

	opID := c.begin(OpUpdateRecord, domain, id)

	c.applyEffects(prev, ledger.OpSubtract)
	c.applyEffects(patched, ledger.OpAdd)

	callCtx, cancel := c.callCtx(ctx, opID)
	defer cancel()
	confirmed, err := c.gateway.UpdateRecord(callCtx, id, patch)
	if err != nil {
		c.applyEffects(patched, ledger.OpSubtract)
		c.applyEffects(prev, ledger.OpAdd)
		store.Replace(prev)
		wrapped := fmt.Errorf("%w: failed to update %s record: %v", appErrors.ErrMutationRejected, domain, err)
		c.finish(opID, StateRolledBack, wrapped)
		return wrapped
	}

	store.Replace(confirmed)
	c.finish(opID, StateConfirmed, nil)
	return nil
}

// DeleteRecord removes a record optimistically, applying the inverse deltas
// computed from the pre-delete snapshot. A missing target is a no-op.
func (c *Controller) DeleteRecord(ctx context.Context, domain ledger.Domain, id string) error {
	store, err := c.store(domain)
	if err != nil {
		return err
	}

	removed, index, ok := store.ApplyOptimisticDelete(id)
	if !ok {
		return nil
	}

	opID := c.begin(OpDeleteRecord, domain, id)

	c.applyEffects(removed, ledger.OpSubtract)
	if removed.Domain.IsExpense() {
		c.stats.DropRecent(removed.Domain, removed.ID)
	}

	callCtx, cancel := c.callCtx(ctx, opID)
	defer cancel()
	if err := c.gateway.DeleteRecord(callCtx, id); err != nil {
		store.RestoreAt(index, removed)
		c.applyEffects(removed, ledger.OpAdd)
		if removed.Domain.IsExpense() {
			c.stats.PushRecent(removed.Domain, summaryOf(removed))
		}
		wrapped := fmt.Errorf("%w: failed to delete %s record: %v", appErrors.ErrMutationRejected, domain, err)
		c.finish(opID, StateRolledBack, wrapped)
		return wrapped
	}

	c.finish(opID, StateConfirmed, nil)
	return nil
}

type removal struct {
	record ledger.Record
	index  int
}

// DeleteRecords applies the optimistic removal to every selected record
// individually, then issues one batched request. The batch is all-or-nothing:
// a failure restores every removal in reverse order.
func (c *Controller) DeleteRecords(ctx context.Context, domain ledger.Domain, ids []string) error {
	store, err := c.store(domain)
	if err != nil {
		return err
	}

	removals := make([]removal, 0, len(ids))
	removedIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		removed, index, ok := store.ApplyOptimisticDelete(id)
		if !ok {
			continue
		}
		c.applyEffects(removed, ledger.OpSubtract)
		if removed.Domain.IsExpense() {
			c.stats.DropRecent(removed.Domain, removed.ID)
		}
		removals = append(removals, removal{record: removed, index: index})
		removedIDs = append(removedIDs, id)
	}
	if len(removals) == 0 {
		return nil
	}

	opID := c.begin(OpBulkDelete, domain, fmt.Sprintf("%d records", len(removedIDs)))

	callCtx, cancel := c.callCtx(ctx, opID)
	defer cancel()
	if err := c.gateway.DeleteRecords(callCtx, removedIDs); err != nil {
		for i := len(removals) - 1; i >= 0; i-- {
			r := removals[i]
			store.RestoreAt(r.index, r.record)
			c.applyEffects(r.record, ledger.OpAdd)
			if r.record.Domain.IsExpense() {
				c.stats.PushRecent(r.record.Domain, summaryOf(r.record))
			}
		}
		wrapped := fmt.Errorf("%w: failed to delete %d %s records: %v", appErrors.ErrMutationRejected, len(removedIDs), domain, err)
		c.finish(opID, StateRolledBack, wrapped)
		return wrapped
	}

	c.finish(opID, StateConfirmed, nil)
	return nil
}

// AddBudget creates a budget optimistically. The allocated amount flows to
// the stats aggregator as a ceiling delta, never as spending.
func (c *Controller) AddBudget(ctx context.Context, draft ledger.Budget) (ledger.Budget, error) {
	if err := draft.Validate(); err != nil {
		return ledger.Budget{}, err
	}

	provisional := draft
	provisional.ID = ledger.NewTempID()
	if provisional.Status == "" {
		provisional.Status = ledger.StatusRunning
	}
	provisional.IsActive = true
	provisional.Spent = decimal.Zero
	provisional.Recalc()

	opID := c.begin(OpAddBudget, ledger.DomainBudgetExpense, provisional.ID)

	c.budgets.Insert(provisional)
	c.stats.ApplyDelta(ledger.DomainBudgetExpense, provisional.Amount, "", ledger.OpAdd, true)

	callCtx, cancel := c.callCtx(ctx, opID)
	defer cancel()
	confirmed, err := c.gateway.CreateBudget(callCtx, provisional)
	if err != nil {
		c.budgets.Remove(provisional.ID)
		c.stats.ApplyDelta(ledger.DomainBudgetExpense, provisional.Amount, "", ledger.OpSubtract, true)
		wrapped := fmt.Errorf("%w: failed to add budget: %v", appErrors.ErrMutationRejected, err)
		c.finish(opID, StateRolledBack, wrapped)
		return ledger.Budget{}, wrapped
	}

	c.budgets.Confirm(provisional.ID, confirmed)
	c.finish(opID, StateConfirmed, nil)
	return confirmed, nil
}

// UpdateBudget replaces a budget's user-editable fields. Spent is derived
// state owned by the tracker and is carried over, not taken from the caller.
func (c *Controller) UpdateBudget(ctx context.Context, budget ledger.Budget) error {
	if err := budget.Validate(); err != nil {
		return err
	}
	prev, ok := c.budgets.Get(budget.ID)
	if !ok {
		return nil
	}

	next := budget
	next.Spent = prev.Spent
	next.Recalc()
	ceilingDiff := next.Amount.Sub(prev.Amount)

	opID := c.begin(OpUpdateBudget, ledger.DomainBudgetExpense, budget.ID)

	c.budgets.Replace(next)
	c.applyCeilingDiff(ceilingDiff)

	callCtx, cancel := c.callCtx(ctx, opID)
	defer cancel()
	confirmed, err := c.gateway.UpdateBudget(callCtx, next)
	if err != nil {
		c.budgets.Replace(prev)
		c.applyCeilingDiff(ceilingDiff.Neg())
		wrapped := fmt.Errorf("%w: failed to update budget: %v", appErrors.ErrMutationRejected, err)
		c.finish(opID, StateRolledBack, wrapped)
		return wrapped
	}

	confirmed.Recalc()
	c.budgets.Replace(confirmed)
	c.finish(opID, StateConfirmed, nil)
	return nil
}

func (c *Controller) applyCeilingDiff(diff decimal.Decimal) {
	switch {
	case diff.IsPositive():
		c.stats.ApplyDelta(ledger.DomainBudgetExpense, diff, "", ledger.OpAdd, true)
	case diff.IsNegative():
		c.stats.ApplyDelta(ledger.DomainBudgetExpense, diff.Neg(), "", ledger.OpSubtract, true)
	}
}

// DeleteBudget removes a budget and its ceiling contribution. A missing
// target is a no-op.
func (c *Controller) DeleteBudget(ctx context.Context, id string) error {
	removed, index, ok := c.budgets.Remove(id)
	if !ok {
		return nil
	}

	opID := c.begin(OpDeleteBudget, ledger.DomainBudgetExpense, id)

	c.stats.ApplyDelta(ledger.DomainBudgetExpense, removed.Amount, "", ledger.OpSubtract, true)

	callCtx, cancel := c.callCtx(ctx, opID)
	defer cancel()
	if err := c.gateway.DeleteBudget(callCtx, id); err != nil {
		c.budgets.RestoreAt(index, removed)
		c.stats.ApplyDelta(ledger.DomainBudgetExpense, removed.Amount, "", ledger.OpAdd, true)
		wrapped := fmt.Errorf("%w: failed to delete budget: %v", appErrors.ErrMutationRejected, err)
		c.finish(opID, StateRolledBack, wrapped)
		return wrapped
	}

	c.finish(opID, StateConfirmed, nil)
	return nil
}

// SetBudgetStatus drives a user status transition through the tracker, which
// persists it and reverts the optimistic change on failure.
func (c *Controller) SetBudgetStatus(ctx context.Context, id string, status ledger.BudgetStatus) error {
	opID := c.begin(OpBudgetStatus, ledger.DomainBudgetExpense, id)

	callCtx, cancel := c.callCtx(ctx, opID)
	defer cancel()
	if err := c.budgets.SetStatus(callCtx, id, status); err != nil {
		c.finish(opID, StateRolledBack, err)
		return err
	}
	c.finish(opID, StateConfirmed, nil)
	return nil
}
