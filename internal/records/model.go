package records

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
)

// Filters narrows a record listing. Zero values mean "no constraint".
type Filters struct {
	Category string
	From     time.Time
	To       time.Time
	Search   string
}

type Page struct {
	Number     int
	Size       int
	TotalPages int
	TotalCount int
}

// FieldPatch is a partial update of a record's mutable fields.
// Nil fields are left untouched.
type FieldPatch struct {
	Amount      *decimal.Decimal
	Category    *string
	Reason      *string
	Date        *time.Time
	Recurrence  *ledger.Recurrence
	BalanceLink *string
}

func (p FieldPatch) ApplyTo(r *ledger.Record) {
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Reason != nil {
		r.Reason = *p.Reason
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Recurrence != nil {
		r.Recurrence = p.Recurrence
	}
	if p.BalanceLink != nil {
		r.BalanceLink = *p.BalanceLink
	}
}

type LoadResult struct {
	Items      []ledger.Record
	Page       int
	TotalPages int
	TotalCount int
}
