// Package session wires one application session's worth of ledger state:
// the per-domain record stores, the budget tracker, the stats aggregator and
// the reconciliation controller, all backed by one API client. A Session is
// constructed at login and torn down at logout; nothing lives at package
// level.
package session

import (
	"time"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/budgets"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/ledger"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/reconcile"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/records"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/restapi"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/stats"
)

type Session struct {
	Incomes        *records.Store
	FreeExpenses   *records.Store
	BudgetExpenses *records.Store
	Budgets        *budgets.Tracker
	Stats          *stats.Aggregator
	Controller     *reconcile.Controller
}

type Option func(*config)

type config struct {
	timeout time.Duration
}

// WithMutationTimeout bounds each reconciliation network call.
func WithMutationTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

func New(client *restapi.Client, opts ...Option) *Session {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	stores := map[ledger.Domain]*records.Store{
		ledger.DomainIncome:        records.NewStore(ledger.DomainIncome, client),
		ledger.DomainFreeExpense:   records.NewStore(ledger.DomainFreeExpense, client),
		ledger.DomainBudgetExpense: records.NewStore(ledger.DomainBudgetExpense, client),
	}
	tracker := budgets.NewTracker(client)
	aggregator := stats.NewAggregator(client)

	var ctrlOpts []reconcile.Option
	if cfg.timeout > 0 {
		ctrlOpts = append(ctrlOpts, reconcile.WithTimeout(cfg.timeout))
	}

	return &Session{
		Incomes:        stores[ledger.DomainIncome],
		FreeExpenses:   stores[ledger.DomainFreeExpense],
		BudgetExpenses: stores[ledger.DomainBudgetExpense],
		Budgets:        tracker,
		Stats:          aggregator,
		Controller:     reconcile.NewController(client, stores, tracker, aggregator, ctrlOpts...),
	}
}

// Store returns the record store for the given domain.
func (s *Session) Store(domain ledger.Domain) *records.Store {
	switch domain {
	case ledger.DomainIncome:
		return s.Incomes
	case ledger.DomainFreeExpense:
		return s.FreeExpenses
	case ledger.DomainBudgetExpense:
		return s.BudgetExpenses
	}
	return nil
}

// Close tears the session state down.
func (s *Session) Close() {
	s.Incomes.Reset()
	s.FreeExpenses.Reset()
	s.BudgetExpenses.Reset()
	s.Budgets.Reset()
	s.Stats.Reset()
}
