package app

import (
	"context"

	"github.com/Veraticus/tally/internal/model"
)

// AddTransaction records txn and updates the balances it touches.
func (a *App) AddTransaction(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	txn.ID = a.id(txn.ID)
	var added model.Transaction
	err := a.locked(ctx, func() error {
		var err error
		added, err = a.ledger.Add(ctx, txn)
		return err
	})
	return added, err
}

// UpdateTransaction replaces txn, moving its balance effect from the old
// version to the new one.
func (a *App) UpdateTransaction(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	var updated model.Transaction
	err := a.locked(ctx, func() error {
		var err error
		updated, err = a.ledger.Update(ctx, txn)
		return err
	})
	return updated, err
}

// DeleteTransaction removes a transaction and reverses its balance effect.
func (a *App) DeleteTransaction(ctx context.Context, id string) error {
	return a.locked(ctx, func() error {
		return a.ledger.Delete(ctx, id)
	})
}
