// Package app holds the in-memory application state and sequences every
// user action through the ledger, the planned-transaction processor and the
// bill state machine. Each mutation is followed by a full reload, so State
// always mirrors storage.
package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/notify"
	"github.com/Veraticus/tally/internal/planned"
	"github.com/Veraticus/tally/internal/schedule"
	"github.com/Veraticus/tally/internal/service"
)

// State is a snapshot of every collection.
type State struct {
	Accounts            []model.Account
	Transactions        []model.Transaction
	Categories          []model.Category
	Labels              []model.Label
	Contacts            []model.Contact
	Budgets             []model.Budget
	Goals               []model.Goal
	PlannedTransactions []model.PlannedTransaction
	Bills               []model.Bill
}

// Account finds an account by ID.
func (s State) Account(id string) (model.Account, bool) {
	i := slices.IndexFunc(s.Accounts, func(a model.Account) bool { return a.ID == id })
	if i < 0 {
		return model.Account{}, false
	}
	return s.Accounts[i], true
}

// Planned finds a planned transaction by ID.
func (s State) Planned(id string) (model.PlannedTransaction, bool) {
	i := slices.IndexFunc(s.PlannedTransactions, func(p model.PlannedTransaction) bool { return p.ID == id })
	if i < 0 {
		return model.PlannedTransaction{}, false
	}
	return s.PlannedTransactions[i], true
}

// App is the application state aggregator. Mutations are serialized.
type App struct {
	gateway   service.Gateway
	ledger    *ledger.Ledger
	processor *planned.Processor
	notifier  service.Notifier
	clock     schedule.Clock
	newID     func() string

	mu      sync.Mutex
	started bool

	stateMu sync.RWMutex
	state   State
}

// Option configures an App.
type Option func(*App)

// WithClock sets the clock used for "today" and timestamps.
func WithClock(clock schedule.Clock) Option {
	return func(a *App) {
		a.clock = clock
	}
}

// WithNotifier sets the reminder scheduler. Its failures never fail a mutation.
func WithNotifier(n service.Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}

// WithIDGenerator overrides how new entity IDs are generated.
func WithIDGenerator(fn func() string) Option {
	return func(a *App) {
		a.newID = fn
	}
}

// New creates an App over gateway. Call Load before reading State.
func New(gateway service.Gateway, opts ...Option) *App {
	a := &App{
		gateway: gateway,
		clock:   schedule.SystemClock{},
		newID:   model.NewID,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.notifier = notify.NewBestEffort(a.notifier)
	a.ledger = ledger.New(gateway, a.clock)
	a.processor = planned.NewProcessor(gateway, a.clock, planned.WithIDGenerator(a.newID))
	return a
}

// Load starts a session. The first call materializes due planned
// transactions and refreshes bill statuses; every call reloads the state.
func (a *App) Load(ctx context.Context) (State, error) {
	a.mu.Lock()
	started := a.started
	a.mu.Unlock()

	if !started {
		if _, err := a.ProcessDuePlannedTransactions(ctx); err != nil {
			return State{}, err
		}
		if _, err := a.RecalculateBills(ctx); err != nil {
			return State{}, err
		}
		a.mu.Lock()
		a.started = true
		a.mu.Unlock()
	}
	return a.Reload(ctx)
}

// Reload re-reads every collection from storage.
func (a *App) Reload(ctx context.Context) (State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reload(ctx)
}

// State returns the most recently loaded snapshot.
func (a *App) State() State {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.state
}

// Today is the current calendar day by the App's clock.
func (a *App) Today() time.Time {
	return schedule.Today(a.clock)
}

func (a *App) reload(ctx context.Context) (State, error) {
	var (
		s   State
		err error
	)
	if s.Accounts, err = a.gateway.Accounts().GetAll(ctx); err != nil {
		return State{}, fmt.Errorf("load accounts: %w", err)
	}
	if s.Transactions, err = a.gateway.Transactions().GetAll(ctx); err != nil {
		return State{}, fmt.Errorf("load transactions: %w", err)
	}
	if s.Categories, err = a.gateway.Categories().GetAll(ctx); err != nil {
		return State{}, fmt.Errorf("load categories: %w", err)
	}
	if s.Labels, err = a.gateway.Labels().GetAll(ctx); err != nil {
		return State{}, fmt.Errorf("load labels: %w", err)
	}
	if s.Contacts, err = a.gateway.Contacts().GetAll(ctx); err != nil {
		return State{}, fmt.Errorf("load contacts: %w", err)
	}
	if s.Budgets, err = a.gateway.Budgets().GetAll(ctx); err != nil {
		return State{}, fmt.Errorf("load budgets: %w", err)
	}
	if s.Goals, err = a.gateway.Goals().GetAll(ctx); err != nil {
		return State{}, fmt.Errorf("load goals: %w", err)
	}
	if s.PlannedTransactions, err = a.gateway.PlannedTransactions().GetAll(ctx); err != nil {
		return State{}, fmt.Errorf("load planned transactions: %w", err)
	}
	if s.Bills, err = a.gateway.Bills().GetAll(ctx); err != nil {
		return State{}, fmt.Errorf("load bills: %w", err)
	}

	a.stateMu.Lock()
	a.state = s
	a.stateMu.Unlock()
	return s, nil
}

// locked runs fn under the mutation lock and reloads state when it succeeds.
func (a *App) locked(ctx context.Context, fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := fn(); err != nil {
		return err
	}
	_, err := a.reload(ctx)
	return err
}

// mutate runs fn in one storage unit of work under the mutation lock.
func (a *App) mutate(ctx context.Context, op string, fn func(gw service.Gateway) error) error {
	return a.locked(ctx, func() error {
		if err := a.gateway.WithTx(ctx, fn); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}

// stamp returns the creation and update times for a record being written now.
func (a *App) stamp(created time.Time) (time.Time, time.Time) {
	now := a.clock.Now()
	if created.IsZero() {
		created = now
	}
	return created, now
}

func (a *App) id(id string) string {
	if id == "" {
		return a.newID()
	}
	return id
}

// ReconcileBalances compares stored balances with the transaction history
// and, with repair set, corrects the ones that drifted.
func (a *App) ReconcileBalances(ctx context.Context, repair bool) ([]ledger.Drift, error) {
	var drifts []ledger.Drift
	err := a.locked(ctx, func() error {
		var err error
		drifts, err = a.ledger.Reconcile(ctx, repair)
		return err
	})
	return drifts, err
}

func logMutation(ctx context.Context, msg, id string) {
	common.LogDebug(ctx, msg, common.Fields{"id": id})
}
