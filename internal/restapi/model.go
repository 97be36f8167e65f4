package restapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/records"
)

type ListRecordsResponse struct {
	Items      []ledger.Record `json:"items"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	TotalCount int             `json:"total_count"`
}

type ListBudgetsResponse struct {
	Items []ledger.Budget `json:"items"`
}

// RecordPatch is the wire shape of a partial record update. Absent fields
// are left untouched server-side, mirroring records.FieldPatch.
type RecordPatch struct {
	Amount      *decimal.Decimal   `json:"amount,omitempty"`
	Category    *string            `json:"category,omitempty"`
	Reason      *string            `json:"reason,omitempty"`
	Date        *time.Time         `json:"date,omitempty"`
	Recurrence  *ledger.Recurrence `json:"recurrence,omitempty"`
	BalanceLink *string            `json:"balance_link,omitempty"`
}

func PatchToWire(patch records.FieldPatch) RecordPatch {
	return RecordPatch{
		Amount:      patch.Amount,
		Category:    patch.Category,
		Reason:      patch.Reason,
		Date:        patch.Date,
		Recurrence:  patch.Recurrence,
		BalanceLink: patch.BalanceLink,
	}
}

func (p RecordPatch) ToFieldPatch() records.FieldPatch {
	return records.FieldPatch{
		Amount:      p.Amount,
		Category:    p.Category,
		Reason:      p.Reason,
		Date:        p.Date,
		Recurrence:  p.Recurrence,
		BalanceLink: p.BalanceLink,
	}
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type StatusUpdateRequest struct {
	Status ledger.BudgetStatus `json:"status"`
}
