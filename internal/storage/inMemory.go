package storage

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appErrors "github.com/Developer-Chandan-Dev/first-sass-app-sub000/apperrors"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/records"
)

// InMemoryLedger backs the reference API server. Records are kept newest
// first; budget aggregates are recomputed from the linked expenses on every
// listing, making the server the source of truth the client re-derives from.
type InMemoryLedger struct {
	mu      sync.Mutex
	records []ledger.Record
	budgets []ledger.Budget
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (m *InMemoryLedger) ListRecords(filter RecordFilter, page, pageSize int) ([]ledger.Record, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []ledger.Record{}
	for _, record := range m.records {
		if filter.matches(record) {
			matched = append(matched, record)
		}
	}

	total := len(matched)
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []ledger.Record{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total
}

func (m *InMemoryLedger) SaveRecord(record ledger.Record) ledger.Record {
	record.ID = uuid.New().String()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Date.IsZero() {
		record.Date = record.CreatedAt
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]ledger.Record{record}, m.records...)
	return record
}

func (m *InMemoryLedger) UpdateRecord(id string, patch records.FieldPatch) (ledger.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			patch.ApplyTo(&m.records[i])
			return m.records[i], nil
		}
	}
	return ledger.Record{}, fmt.Errorf("%w: record %s", appErrors.ErrNotFound, id)
}

func (m *InMemoryLedger) DeleteRecord(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, record := range m.records {
		if record.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: record %s", appErrors.ErrNotFound, id)
}

// DeleteRecords is all-or-nothing: every id is verified before anything is
// removed, so the batch endpoint keeps its atomic contract.
func (m *InMemoryLedger) DeleteRecords(ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	indexByID := make(map[string]bool, len(m.records))
	for _, record := range m.records {
		indexByID[record.ID] = true
	}
	for _, id := range ids {
		if !indexByID[id] {
			return fmt.Errorf("%w: record %s", appErrors.ErrNotFound, id)
		}
	}

	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	kept := m.records[:0]
	for _, record := range m.records {
		if !doomed[record.ID] {
			kept = append(kept, record)
		}
	}
	m.records = kept
	return nil
}

func (m *InMemoryLedger) spentFor(budgetID string) decimal.Decimal {
	spent := decimal.Zero
	for _, record := range m.records {
		if record.Domain == ledger.DomainBudgetExpense && record.BudgetRef == budgetID {
			spent = spent.Add(record.Amount)
		}
	}
	return spent
}

// ListBudgets joins the derived aggregates onto each budget.
func (m *InMemoryLedger) ListBudgets(activeOnly bool) []ledger.Budget {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []ledger.Budget{}
	for _, budget := range m.budgets {
		if activeOnly && !budget.IsActive {
			continue
		}
		budget.Spent = m.spentFor(budget.ID)
		budget.Recalc()
		out = append(out, budget)
	}
	return out
}

func (m *InMemoryLedger) SaveBudget(budget ledger.Budget) ledger.Budget {
	budget.ID = uuid.New().String()
	if budget.Status == "" {
		budget.Status = ledger.StatusRunning
	}
	budget.IsActive = true
	budget.Spent = decimal.Zero
	budget.Recalc()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets = append([]ledger.Budget{budget}, m.budgets...)
	return budget
}

func (m *InMemoryLedger) UpdateBudget(updated ledger.Budget) (ledger.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.budgets {
		if m.budgets[i].ID == updated.ID {
			updated.Status = m.budgets[i].Status
			updated.IsActive = m.budgets[i].IsActive
			updated.Spent = m.spentFor(updated.ID)
			updated.Recalc()
			m.budgets[i] = updated
			return updated, nil
		}
	}
	return ledger.Budget{}, fmt.Errorf("%w: budget %s", appErrors.ErrNotFound, updated.ID)
}

func (m *InMemoryLedger) UpdateBudgetStatus(id string, status ledger.BudgetStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.budgets {
		if m.budgets[i].ID == id {
			m.budgets[i].Status = status
			m.budgets[i].IsActive = status == ledger.StatusRunning
			return nil
		}
	}
	return fmt.Errorf("%w: budget %s", appErrors.ErrNotFound, id)
}

func (m *InMemoryLedger) DeleteBudget(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, budget := range m.budgets {
		if budget.ID == id {
			m.budgets = append(m.budgets[:i], m.budgets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: budget %s", appErrors.ErrNotFound, id)
}

// ComputeStats builds the overview snapshot for one expense domain: all-time
// totals, the per-category breakdown and the previous-calendar-month window.
func (m *InMemoryLedger) ComputeStats(domain ledger.Domain, now time.Time) ledger.StatsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := ledger.StatsSnapshot{
		CategoryBreakdown: make(map[string]ledger.CategoryStat),
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	for _, record := range m.records {
		if record.Domain != domain {
			continue
		}
		snapshot.TotalSpent = snapshot.TotalSpent.Add(record.Amount)
		snapshot.TotalExpenses++

		stat := snapshot.CategoryBreakdown[record.Category]
		stat.Total = stat.Total.Add(record.Amount)
		stat.Count++
		snapshot.CategoryBreakdown[record.Category] = stat

		if !record.Date.Before(prevMonthStart) && record.Date.Before(monthStart) {
			snapshot.PreviousMonthSpent = snapshot.PreviousMonthSpent.Add(record.Amount)
			snapshot.PreviousMonthExpenses++
		}
	}

	if domain == ledger.DomainBudgetExpense {
		for _, budget := range m.budgets {
			snapshot.TotalBudget = snapshot.TotalBudget.Add(budget.Amount)
		}
	}
	return snapshot
}
