package app

import (
	"context"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// AddAccount stores a new account. Its balance starts at the opening balance.
func (a *App) AddAccount(ctx context.Context, acct model.Account) (model.Account, error) {
	acct.ID = a.id(acct.ID)
	acct.Balance = acct.OpeningBalance
	acct.CreatedAt, acct.UpdatedAt = a.stamp(acct.CreatedAt)
	if err := acct.Validate(); err != nil {
		return model.Account{}, err
	}

	err := a.mutate(ctx, "add account", func(gw service.Gateway) error {
		return gw.Accounts().Add(ctx, acct)
	})
	if err != nil {
		return model.Account{}, err
	}
	logMutation(ctx, "Account added", acct.ID)
	return acct, nil
}

// UpdateAccount replaces an account's descriptive fields. The balance stays
// owned by the ledger: it is carried over from storage and only shifted by
// a change to the opening balance.
func (a *App) UpdateAccount(ctx context.Context, acct model.Account) (model.Account, error) {
	if err := acct.Validate(); err != nil {
		return model.Account{}, err
	}

	err := a.mutate(ctx, "update account", func(gw service.Gateway) error {
		stored, err := gw.Accounts().Get(ctx, acct.ID)
		if err != nil {
			return err
		}
		acct.Balance = stored.Balance.Add(acct.OpeningBalance.Sub(stored.OpeningBalance))
		acct.CreatedAt, acct.UpdatedAt = a.stamp(stored.CreatedAt)
		return gw.Accounts().Update(ctx, acct)
	})
	if err != nil {
		return model.Account{}, err
	}
	logMutation(ctx, "Account updated", acct.ID)
	return acct, nil
}

// DeleteAccount removes an account that nothing references.
func (a *App) DeleteAccount(ctx context.Context, id string) error {
	err := a.mutate(ctx, "delete account", func(gw service.Gateway) error {
		return deleteUnused(ctx, gw, gw.Accounts(), "account", id, accountUsage)
	})
	if err != nil {
		return err
	}
	logMutation(ctx, "Account deleted", id)
	return nil
}
