package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appErrors "github.com/Developer-Chandan-Dev/first-sass-app-sub000/apperrors"
)

// Domain discriminates the record variants. BudgetRef is only meaningful
// on the budget-expense variant.
type Domain string

const (
	DomainIncome        Domain = "income"
	DomainFreeExpense   Domain = "free-expense"
	DomainBudgetExpense Domain = "budget-expense"
)

func (d Domain) Valid() bool {
	switch d {
	case DomainIncome, DomainFreeExpense, DomainBudgetExpense:
		return true
	}
	return false
}

// IsExpense reports whether records of this domain count as spending.
func (d Domain) IsExpense() bool {
	return d == DomainFreeExpense || d == DomainBudgetExpense
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

type Recurrence struct {
	IsRecurring bool      `json:"is_recurring"`
	Frequency   Frequency `json:"frequency"`
}

// TempIDPrefix marks provisional ids issued before server confirmation.
const TempIDPrefix = "tmp-"

func NewTempID() string {
	return TempIDPrefix + uuid.New().String()
}

type Record struct {
	ID          string          `json:"id"`
	Domain      Domain          `json:"domain"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Reason      string          `json:"reason"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	BudgetRef   string          `json:"budget_ref,omitempty"`
	Recurrence  *Recurrence     `json:"recurrence,omitempty"`
	BalanceLink string          `json:"balance_link,omitempty"`
}

func (r Record) IsProvisional() bool {
	return strings.HasPrefix(r.ID, TempIDPrefix)
}

func (r Record) Validate() error {
	if !r.Domain.Valid() {
		return fmt.Errorf("%w: unknown record domain: %q", appErrors.ErrInvalidInput, r.Domain)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("%w: record amount cannot be negative", appErrors.ErrInvalidInput)
	}
	if r.Domain == DomainBudgetExpense && r.BudgetRef == "" {
		return fmt.Errorf("%w: budget expense requires a budget reference", appErrors.ErrInvalidInput)
	}
	if r.Domain != DomainBudgetExpense && r.BudgetRef != "" {
		return fmt.Errorf("%w: budget reference is only valid on budget expenses", appErrors.ErrInvalidInput)
	}
	return nil
}

type BudgetStatus string

const (
	StatusRunning   BudgetStatus = "running"
	StatusPaused    BudgetStatus = "paused"
	StatusCompleted BudgetStatus = "completed"
	StatusExpired   BudgetStatus = "expired"
)

type BudgetDuration string

const (
	DurationMonthly BudgetDuration = "monthly"
	DurationWeekly  BudgetDuration = "weekly"
	DurationCustom  BudgetDuration = "custom"
)

type Budget struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category,omitempty"`
	Duration  BudgetDuration  `json:"duration"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	IsActive  bool            `json:"is_active"`
	Status    BudgetStatus    `json:"status"`

	// Derived from the linked budget-expense records, never authoritative.
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

// Recalc recomputes Remaining and Percentage from Amount and Spent.
// Remaining never goes below zero and a zero allocation yields 0%.
func (b *Budget) Recalc() {
	b.Remaining = b.Amount.Sub(b.Spent)
	if b.Remaining.IsNegative() {
		b.Remaining = decimal.Zero
	}
	if b.Amount.IsPositive() {
		ratio, _ := b.Spent.Div(b.Amount).Float64()
		b.Percentage = Round2(ratio * 100)
	} else {
		b.Percentage = 0
	}
}

func (b *Budget) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: budget name is empty", appErrors.ErrInvalidInput)
	}
	if b.Amount.IsNegative() {
		return fmt.Errorf("%w: budget amount cannot be negative", appErrors.ErrInvalidInput)
	}
	switch b.Duration {
	case DurationMonthly, DurationWeekly, DurationCustom:
	default:
		return fmt.Errorf("%w: unknown budget duration: %q", appErrors.ErrInvalidInput, b.Duration)
	}
	return nil
}

type AdjustOp string

const (
	OpAdd      AdjustOp = "add"
	OpSubtract AdjustOp = "subtract"
)

type CategoryStat struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type StatsSnapshot struct {
	TotalSpent            decimal.Decimal         `json:"total_spent"`
	TotalExpenses         int                     `json:"total_expenses"`
	TotalBudget           decimal.Decimal         `json:"total_budget"`
	CategoryBreakdown     map[string]CategoryStat `json:"category_breakdown"`
	PreviousMonthSpent    decimal.Decimal         `json:"previous_month_spent"`
	PreviousMonthExpenses int                     `json:"previous_month_expenses"`
}

// MonthlyChange is the month-over-month spend change in percent.
// A zero previous month is defined as 0%, never NaN or Inf.
func (s StatsSnapshot) MonthlyChange() float64 {
	if !s.PreviousMonthSpent.IsPositive() {
		return 0
	}
	ratio, _ := s.TotalSpent.Sub(s.PreviousMonthSpent).Div(s.PreviousMonthSpent).Float64()
	return Round2(ratio * 100)
}

// ExpenseChange is the record-count delta against the previous month.
func (s StatsSnapshot) ExpenseChange() int {
	return s.TotalExpenses - s.PreviousMonthExpenses
}

// Clone deep-copies the snapshot so callers cannot alias the breakdown map.
func (s StatsSnapshot) Clone() StatsSnapshot {
	out := s
	out.CategoryBreakdown = make(map[string]CategoryStat, len(s.CategoryBreakdown))
	for category, stat := range s.CategoryBreakdown {
		out.CategoryBreakdown[category] = stat
	}
	return out
}

func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
