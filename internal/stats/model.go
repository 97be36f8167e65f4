package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordSummary is the lightweight shape kept for recent-activity views.
type RecordSummary struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Reason   string          `json:"reason"`
	Date     time.Time       `json:"date"`
}

const (
	RecentFreeLimit   = 7
	RecentBudgetLimit = 5
)
