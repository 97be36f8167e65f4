package storage

import (
	"time"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
)

// RecordFilter narrows a server-side record listing.
type RecordFilter struct {
	Domain   ledger.Domain
	Category string
	From     time.Time
	To       time.Time
	Search   string
}

func (f RecordFilter) matches(record ledger.Record) bool {
	if record.Domain != f.Domain {
		return false
	}
	if f.Category != "" && record.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && record.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && record.Date.After(f.To) {
		return false
	}
	if f.Search != "" && !containsFold(record.Reason, f.Search) && !containsFold(record.Category, f.Search) {
		return false
	}
	return true
}
