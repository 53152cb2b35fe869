package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/schedule"
	"github.com/Veraticus/tally/internal/service"
)

// Ledger applies transaction mutations together with their balance changes.
// Each operation runs in one storage unit of work, and operations from the
// same Ledger never interleave.
type Ledger struct {
	gateway service.Gateway
	clock   schedule.Clock
	mu      sync.Mutex
}

// New creates a Ledger over gateway.
func New(gateway service.Gateway, clock schedule.Clock) *Ledger {
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	return &Ledger{gateway: gateway, clock: clock}
}

// Add records txn and applies its effect to the referenced accounts.
func (l *Ledger) Add(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	now := l.clock.Now()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	txn.UpdatedAt = now
	if txn.Status == "" {
		txn.Status = model.StatusCleared
	}
	if err := txn.Validate(); err != nil {
		return model.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.gateway.WithTx(ctx, func(gw service.Gateway) error {
		accounts, err := gw.Accounts().GetAll(ctx)
		if err != nil {
			return err
		}
		updated, err := ApplyAdd(txn, accounts)
		if err != nil {
			return err
		}
		if err := l.saveAccounts(ctx, gw, touched(updated, Effect(txn))); err != nil {
			return err
		}
		return gw.Transactions().Add(ctx, txn)
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("add transaction %s: %w", txn.ID, err)
	}

	common.LogDebug(ctx, "Transaction added", common.Fields{
		"id": txn.ID, "type": txn.Type, "amount": txn.Amount.String(),
	})
	return txn, nil
}

// Update replaces a stored transaction. The old version's effect is reversed,
// balances are re-read, and the new version's effect is applied.
func (l *Ledger) Update(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	if err := txn.Validate(); err != nil {
		return model.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.gateway.WithTx(ctx, func(gw service.Gateway) error {
		old, err := gw.Transactions().Get(ctx, txn.ID)
		if err != nil {
			return err
		}

		accounts, err := gw.Accounts().GetAll(ctx)
		if err != nil {
			return err
		}
		reversed, err := ApplyDelete(*old, accounts)
		if err != nil {
			return err
		}
		if err := l.saveAccounts(ctx, gw, touched(reversed, Effect(*old))); err != nil {
			return err
		}

		accounts, err = gw.Accounts().GetAll(ctx)
		if err != nil {
			return err
		}
		applied, err := ApplyAdd(txn, accounts)
		if err != nil {
			return err
		}
		if err := l.saveAccounts(ctx, gw, touched(applied, Effect(txn))); err != nil {
			return err
		}

		txn.CreatedAt = old.CreatedAt
		if txn.Status == "" {
			txn.Status = old.Status
		}
		txn.UpdatedAt = l.clock.Now()
		return gw.Transactions().Update(ctx, txn)
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("update transaction %s: %w", txn.ID, err)
	}

	common.LogDebug(ctx, "Transaction updated", common.Fields{"id": txn.ID})
	return txn, nil
}

// Delete removes a transaction and reverses its effect.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.gateway.WithTx(ctx, func(gw service.Gateway) error {
		old, err := gw.Transactions().Get(ctx, id)
		if err != nil {
			return err
		}
		accounts, err := gw.Accounts().GetAll(ctx)
		if err != nil {
			return err
		}
		reversed, err := ApplyDelete(*old, accounts)
		if err != nil {
			return err
		}
		if err := l.saveAccounts(ctx, gw, touched(reversed, Effect(*old))); err != nil {
			return err
		}
		return gw.Transactions().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	common.LogDebug(ctx, "Transaction deleted", common.Fields{"id": id})
	return nil
}

// ApplyEffect applies the effect of a transaction that is already stored,
// such as one materialized from a planned transaction.
func (l *Ledger) ApplyEffect(ctx context.Context, txn model.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.gateway.WithTx(ctx, func(gw service.Gateway) error {
		accounts, err := gw.Accounts().GetAll(ctx)
		if err != nil {
			return err
		}
		updated, err := ApplyAdd(txn, accounts)
		if err != nil {
			return err
		}
		return l.saveAccounts(ctx, gw, touched(updated, Effect(txn)))
	})
	if err != nil {
		return fmt.Errorf("apply transaction %s: %w", txn.ID, err)
	}
	return nil
}

func (l *Ledger) saveAccounts(ctx context.Context, gw service.Gateway, accounts []model.Account) error {
	now := l.clock.Now()
	for i := range accounts {
		accounts[i].UpdatedAt = now
	}
	return gw.Accounts().UpdateMany(ctx, accounts)
}

// Drift describes an account whose stored balance disagrees with the
// balance replayed from its transactions.
type Drift struct {
	Stored    decimal.Decimal
	Expected  decimal.Decimal
	AccountID string
	Name      string
}

// Difference is how far the stored balance is from the expected one.
func (d Drift) Difference() decimal.Decimal {
	return d.Stored.Sub(d.Expected)
}

// ExpectedBalances replays transactions over each account's opening balance.
// Effects on unknown accounts are ignored.
func ExpectedBalances(accounts []model.Account, txns []model.Transaction) map[string]decimal.Decimal {
	expected := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		expected[a.ID] = a.OpeningBalance
	}
	for _, txn := range txns {
		for id, delta := range Effect(txn) {
			if balance, ok := expected[id]; ok {
				expected[id] = balance.Add(delta)
			}
		}
	}
	return expected
}

// Reconcile compares every stored balance with the replayed balance and,
// when repair is set, overwrites the drifted ones.
func (l *Ledger) Reconcile(ctx context.Context, repair bool) ([]Drift, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var drifts []Drift
	err := l.gateway.WithTx(ctx, func(gw service.Gateway) error {
		accounts, err := gw.Accounts().GetAll(ctx)
		if err != nil {
			return err
		}
		txns, err := gw.Transactions().GetAll(ctx)
		if err != nil {
			return err
		}

		expected := ExpectedBalances(accounts, txns)
		var fixed []model.Account
		for _, a := range accounts {
			want := expected[a.ID]
			if a.Balance.Equal(want) {
				continue
			}
			drifts = append(drifts, Drift{AccountID: a.ID, Name: a.Name, Stored: a.Balance, Expected: want})
			a.Balance = want
			fixed = append(fixed, a)
		}

		if !repair || len(fixed) == 0 {
			return nil
		}
		return l.saveAccounts(ctx, gw, fixed)
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile balances: %w", err)
	}

	for _, d := range drifts {
		common.LogInfo(ctx, "Balance drift detected", common.Fields{
			"account":  d.AccountID,
			"stored":   d.Stored.String(),
			"expected": d.Expected.String(),
			"repaired": repair,
		})
	}
	return drifts, nil
}
