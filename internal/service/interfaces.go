// Package service defines the interfaces the core consumes from its collaborators.
package service

import (
	"context"

	"github.com/Veraticus/tally/internal/model"
)

// Collection is the persistence contract for one entity collection.
// Updates replace the full record; deletes are permanent.
type Collection[E any] interface {
	GetAll(ctx context.Context) ([]E, error)
	Get(ctx context.Context, id string) (*E, error)
	// SaveAll replaces the whole collection with items.
	SaveAll(ctx context.Context, items []E) error
	Add(ctx context.Context, item E) error
	Update(ctx context.Context, item E) error
	// UpdateMany replaces several records in one batch.
	UpdateMany(ctx context.Context, items []E) error
	Delete(ctx context.Context, id string) error
}

// Gateway is the Storage Gateway: one collection per entity.
type Gateway interface {
	Accounts() Collection[model.Account]
	Transactions() Collection[model.Transaction]
	Categories() Collection[model.Category]
	Labels() Collection[model.Label]
	Contacts() Collection[model.Contact]
	Budgets() Collection[model.Budget]
	Goals() Collection[model.Goal]
	PlannedTransactions() Collection[model.PlannedTransaction]
	Bills() Collection[model.Bill]

	// WithTx runs fn against a gateway whose writes commit together. If fn
	// returns an error nothing it wrote is kept. Calling WithTx on the
	// gateway passed to fn joins the outer unit of work.
	WithTx(ctx context.Context, fn func(Gateway) error) error
}

// Notifier schedules reminder notifications. Implementations may fail; the
// core never lets a notifier error fail a data mutation.
type Notifier interface {
	ScheduleBillReminder(ctx context.Context, bill model.Bill) error
	SchedulePlannedReminder(ctx context.Context, planned model.PlannedTransaction) error
	CancelReminder(ctx context.Context, entityID string) error
}
