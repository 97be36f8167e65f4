package reconcile

import (
	"time"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
)

type OpKind string

const (
	OpAddRecord    OpKind = "add-record"
	OpUpdateRecord OpKind = "update-record"
	OpDeleteRecord OpKind = "delete-record"
	OpBulkDelete   OpKind = "bulk-delete"
	OpAddBudget    OpKind = "add-budget"
	OpUpdateBudget OpKind = "update-budget"
	OpDeleteBudget OpKind = "delete-budget"
	OpBudgetStatus OpKind = "budget-status"
)

type OpState string

const (
	StatePending    OpState = "pending"
	StateConfirmed  OpState = "confirmed"
	StateRolledBack OpState = "rolled-back"
)

// Operation is one entry of the reconciliation log: every mutation moves
// from pending to exactly one of confirmed or rolled-back.
type Operation struct {
	ID         string
	Kind       OpKind
	Domain     ledger.Domain
	TargetID   string
	State      OpState
	StartedAt  time.Time
	FinishedAt time.Time
	Err        string
}
