// Package ledger keeps account balances consistent with the transactions
// that reference them.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

// ErrAccountNotFound is returned when a transaction names an account that
// does not exist.
var ErrAccountNotFound = errors.New("account not found")

// Effect returns the signed balance change txn makes to each account it
// references. Income credits the source account, expenses debit it, and a
// transfer moves the amount from the source to the destination.
func Effect(txn model.Transaction) map[string]decimal.Decimal {
	effect := make(map[string]decimal.Decimal, 2)
	switch txn.Type {
	case model.TypeIncome:
		effect[txn.AccountID] = txn.Amount
	case model.TypeExpense:
		effect[txn.AccountID] = txn.Amount.Neg()
	case model.TypeTransfer:
		effect[txn.AccountID] = txn.Amount.Neg()
		if txn.ToAccountID != "" {
			effect[txn.ToAccountID] = effect[txn.ToAccountID].Add(txn.Amount)
		}
	}
	return effect
}

// ApplyAdd returns a copy of accounts with txn's effect applied.
func ApplyAdd(txn model.Transaction, accounts []model.Account) ([]model.Account, error) {
	return apply(accounts, Effect(txn), false)
}

// ApplyDelete returns a copy of accounts with txn's effect reversed.
func ApplyDelete(txn model.Transaction, accounts []model.Account) ([]model.Account, error) {
	return apply(accounts, Effect(txn), true)
}

// ApplyUpdate reverses old and then applies updated, reading the reversed
// balances so the two versions may reference different accounts.
func ApplyUpdate(old, updated model.Transaction, accounts []model.Account) ([]model.Account, error) {
	reversed, err := ApplyDelete(old, accounts)
	if err != nil {
		return nil, fmt.Errorf("reverse transaction %s: %w", old.ID, err)
	}
	applied, err := ApplyAdd(updated, reversed)
	if err != nil {
		return nil, fmt.Errorf("apply transaction %s: %w", updated.ID, err)
	}
	return applied, nil
}

func apply(accounts []model.Account, effect map[string]decimal.Decimal, reverse bool) ([]model.Account, error) {
	index := make(map[string]int, len(accounts))
	for i, a := range accounts {
		index[a.ID] = i
	}
	for id := range effect {
		if _, ok := index[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
		}
	}

	out := make([]model.Account, len(accounts))
	copy(out, accounts)
	for id, delta := range effect {
		if reverse {
			delta = delta.Neg()
		}
		i := index[id]
		out[i].Balance = out[i].Balance.Add(delta)
	}
	return out, nil
}

// touched returns the accounts named by any of the effects, in input order.
func touched(accounts []model.Account, effects ...map[string]decimal.Decimal) []model.Account {
	var out []model.Account
	for _, a := range accounts {
		for _, effect := range effects {
			if _, ok := effect[a.ID]; ok {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
