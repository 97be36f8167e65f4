package ledger

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       Record
		expectedMsg string
	}{
		{
			name:        "Fail - Unknown domain",
			input:       Record{Domain: "savings", Amount: decimal.NewFromInt(10)},
			expectedMsg: "unknown record domain",
		},
		{
			name:        "Fail - Negative amount",
			input:       Record{Domain: DomainIncome, Amount: decimal.NewFromInt(-5)},
			expectedMsg: "cannot be negative",
		},
		{
			name:        "Fail - Budget expense without reference",
			input:       Record{Domain: DomainBudgetExpense, Amount: decimal.NewFromInt(10)},
			expectedMsg: "requires a budget reference",
		},
		{
			name:        "Fail - Free expense with budget reference",
			input:       Record{Domain: DomainFreeExpense, Amount: decimal.NewFromInt(10), BudgetRef: "b-1"},
			expectedMsg: "only valid on budget expenses",
		},
		{
			name:  "Success - Valid income",
			input: Record{Domain: DomainIncome, Amount: decimal.NewFromInt(10), Category: "salary"},
		},
		{
			name:  "Success - Valid budget expense",
			input: Record{Domain: DomainBudgetExpense, Amount: decimal.NewFromInt(10), BudgetRef: "b-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()

			if tt.expectedMsg != "" {
				if err == nil {
					t.Fatalf("Expected error containing %q, but got nil", tt.expectedMsg)
				}
				if !strings.Contains(err.Error(), tt.expectedMsg) {
					t.Errorf("Error message mismatch:\n Got:  %q\n Want: %q", err.Error(), tt.expectedMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Expected success, but got error: %v", err)
				}
			}
		})
	}
}

func TestBudgetRecalc(t *testing.T) {
	tests := []struct {
		name           string
		amount         int64
		spent          int64
		wantRemaining  int64
		wantPercentage float64
	}{
		{name: "under budget", amount: 2000, spent: 800, wantRemaining: 1200, wantPercentage: 40},
		{name: "exactly spent", amount: 500, spent: 500, wantRemaining: 0, wantPercentage: 100},
		{name: "overspent clamps remaining", amount: 100, spent: 150, wantRemaining: 0, wantPercentage: 150},
		{name: "zero allocation yields zero percent", amount: 0, spent: 50, wantRemaining: 0, wantPercentage: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Budget{Amount: decimal.NewFromInt(tt.amount), Spent: decimal.NewFromInt(tt.spent)}
			b.Recalc()

			if !b.Remaining.Equal(decimal.NewFromInt(tt.wantRemaining)) {
				t.Errorf("Remaining mismatch: got %s, want %d", b.Remaining, tt.wantRemaining)
			}
			if b.Percentage != tt.wantPercentage {
				t.Errorf("Percentage mismatch: got %v, want %v", b.Percentage, tt.wantPercentage)
			}
		})
	}
}

func TestMonthlyChange(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		previous int64
		want     float64
	}{
		{name: "increase", current: 1500, previous: 1000, want: 50},
		{name: "decrease", current: 500, previous: 1000, want: -50},
		{name: "zero previous is zero percent", current: 1200, previous: 0, want: 0},
		{name: "flat", current: 1000, previous: 1000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := StatsSnapshot{
				TotalSpent:         decimal.NewFromInt(tt.current),
				PreviousMonthSpent: decimal.NewFromInt(tt.previous),
			}
			if got := s.MonthlyChange(); got != tt.want {
				t.Errorf("MonthlyChange mismatch: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChangeRounding(t *testing.T) {
	s := StatsSnapshot{
		TotalSpent:         decimal.NewFromInt(1000),
		PreviousMonthSpent: decimal.NewFromInt(300),
	}
	// (1000-300)/300*100 = 233.333... rounds to two decimals
	if got := s.MonthlyChange(); got != 233.33 {
		t.Errorf("MonthlyChange mismatch: got %v, want 233.33", got)
	}
}
