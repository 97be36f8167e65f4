package records

import (
	"context"
	"fmt"
	"sync"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
)

type Loader interface {
	ListRecords(ctx context.Context, domain ledger.Domain, filters Filters, page, pageSize int) (LoadResult, error)
}

// Store holds the currently loaded page of financial records for one domain,
// plus pagination and filter state. Optimistic mutations are synchronous;
// confirmation or rollback is driven by the reconciliation controller.
type Store struct {
	mu      sync.Mutex
	domain  ledger.Domain
	loader  Loader
	records []ledger.Record
	filters Filters
	page    Page
}

func NewStore(domain ledger.Domain, loader Loader) *Store {
	return &Store{
		domain: domain,
		loader: loader,
		page:   Page{Number: 1, Size: 10},
	}
}

func (s *Store) Domain() ledger.Domain {
	return s.domain
}

// Load replaces the store content from the server. On failure the previous
// content is left untouched.
func (s *Store) Load(ctx context.Context, filters Filters, page, pageSize int) error {
	result, err := s.loader.ListRecords(ctx, s.domain, filters, page, pageSize)
	if err != nil {
		return fmt.Errorf("failed to load %s records: %w", s.domain, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = result.Items
	s.filters = filters
	s.page = Page{
		Number:     result.Page,
		Size:       pageSize,
		TotalPages: result.TotalPages,
		TotalCount: result.TotalCount,
	}
	return nil
}

func (s *Store) Records() []ledger.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) PageInfo() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Store) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Get returns the record with the given id, if present.
func (s *Store) Get(id string) (ledger.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.ID == id {
			return record, true
		}
	}
	return ledger.Record{}, false
}

// ApplyOptimisticInsert prepends a provisional record and bumps the total count.
func (s *Store) ApplyOptimisticInsert(record ledger.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]ledger.Record{record}, s.records...)
	s.page.TotalCount++
}

// ConfirmInsert replaces the provisional record matching tempID with the
// server-confirmed one. If the provisional record is gone, the confirmed
// record is appended instead, never silently dropped.
func (s *Store) ConfirmInsert(tempID string, serverRecord ledger.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, record := range s.records {
		if record.ID == tempID {
			s.records[i] = serverRecord
			return
		}
	}
	s.records = append(s.records, serverRecord)
}

// RevertInsert discards a provisional record after a failed create.
func (s *Store) RevertInsert(tempID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, record := range s.records {
		if record.ID == tempID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.page.TotalCount--
			return
		}
	}
}

// ApplyOptimisticUpdate patches a record in place and returns the prior copy
// for rollback. A missing id is a no-op, not an error: a concurrent operation
// may already have removed the record.
func (s *Store) ApplyOptimisticUpdate(id string, patch FieldPatch) (ledger.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, record := range s.records {
		if record.ID == id {
			prev := record
			patch.ApplyTo(&s.records[i])
			return prev, true
		}
	}
	return ledger.Record{}, false
}

// ApplyOptimisticDelete removes a record and returns its snapshot and index
// so a failed delete can be restored in place. A missing id is a no-op.
func (s *Store) ApplyOptimisticDelete(id string) (ledger.Record, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, record := range s.records {
		if record.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.page.TotalCount--
			return record, i, true
		}
	}
	return ledger.Record{}, 0, false
}

// Replace swaps the stored record with the same id for the given one.
func (s *Store) Replace(record ledger.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, stored := range s.records {
		if stored.ID == record.ID {
			s.records[i] = record
			return true
		}
	}
	return false
}

// RestoreAt reinserts a previously deleted record at its original position.
func (s *Store) RestoreAt(index int, record ledger.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 {
		index = 0
	}
	if index > len(s.records) {
		index = len(s.records)
	}
	s.records = append(s.records[:index], append([]ledger.Record{record}, s.records[index:]...)...)
	s.page.TotalCount++
}

// Reset drops all loaded content, used on session teardown.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.filters = Filters{}
	s.page = Page{Number: 1, Size: 10}
}
