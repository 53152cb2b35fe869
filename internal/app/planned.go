package app

import (
	"context"
	"fmt"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/planned"
	"github.com/Veraticus/tally/internal/service"
)

// AddPlanned stores a new planned transaction template.
func (a *App) AddPlanned(ctx context.Context, pt model.PlannedTransaction) (model.PlannedTransaction, error) {
	pt.ID = a.id(pt.ID)
	if pt.Recurrence == "" {
		pt.Recurrence = model.RecurrenceNone
	}
	if pt.Status == "" {
		pt.Status = model.PlannedPending
	}
	pt.CreatedAt, pt.UpdatedAt = a.stamp(pt.CreatedAt)
	if err := pt.Validate(); err != nil {
		return model.PlannedTransaction{}, err
	}

	err := a.mutate(ctx, "add planned transaction", func(gw service.Gateway) error {
		return gw.PlannedTransactions().Add(ctx, pt)
	})
	if err != nil {
		return model.PlannedTransaction{}, err
	}
	_ = a.notifier.SchedulePlannedReminder(ctx, pt)
	return pt, nil
}

// UpdatePlanned replaces a template.
func (a *App) UpdatePlanned(ctx context.Context, pt model.PlannedTransaction) (model.PlannedTransaction, error) {
	if pt.Recurrence == "" {
		pt.Recurrence = model.RecurrenceNone
	}
	if err := pt.Validate(); err != nil {
		return model.PlannedTransaction{}, err
	}

	err := a.mutate(ctx, "update planned transaction", func(gw service.Gateway) error {
		stored, err := gw.PlannedTransactions().Get(ctx, pt.ID)
		if err != nil {
			return err
		}
		pt.CreatedAt, pt.UpdatedAt = a.stamp(stored.CreatedAt)
		return gw.PlannedTransactions().Update(ctx, pt)
	})
	if err != nil {
		return model.PlannedTransaction{}, err
	}
	_ = a.notifier.SchedulePlannedReminder(ctx, pt)
	return pt, nil
}

// DeletePlanned removes a template. Transactions it already created stay.
func (a *App) DeletePlanned(ctx context.Context, id string) error {
	err := a.mutate(ctx, "delete planned transaction", func(gw service.Gateway) error {
		return gw.PlannedTransactions().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	_ = a.notifier.CancelReminder(ctx, id)
	return nil
}

// SkipPlanned passes over the template's next occurrence.
func (a *App) SkipPlanned(ctx context.Context, id string) (model.PlannedTransaction, error) {
	return a.changePlanned(ctx, "skip planned transaction", id, planned.Skip)
}

// CancelPlanned stops an active template from producing transactions.
func (a *App) CancelPlanned(ctx context.Context, id string) (model.PlannedTransaction, error) {
	return a.changePlanned(ctx, "cancel planned transaction", id, func(pt model.PlannedTransaction) (model.PlannedTransaction, error) {
		if !pt.IsActive() {
			return pt, fmt.Errorf("%w: %s is %s", planned.ErrNotActive, pt.ID, pt.Status)
		}
		pt.Status = model.PlannedCancelled
		return pt, nil
	})
}

func (a *App) changePlanned(ctx context.Context, op, id string,
	change func(model.PlannedTransaction) (model.PlannedTransaction, error),
) (model.PlannedTransaction, error) {
	var changed model.PlannedTransaction
	err := a.mutate(ctx, op, func(gw service.Gateway) error {
		stored, err := gw.PlannedTransactions().Get(ctx, id)
		if err != nil {
			return err
		}
		changed, err = change(*stored)
		if err != nil {
			return err
		}
		changed.UpdatedAt = a.clock.Now()
		return gw.PlannedTransactions().Update(ctx, changed)
	})
	if err != nil {
		return model.PlannedTransaction{}, err
	}
	_ = a.notifier.SchedulePlannedReminder(ctx, changed)
	return changed, nil
}

// ProcessDuePlannedTransactions materializes one occurrence of every due
// auto-created template and applies the new transactions to account
// balances.
//
// A transaction whose balance effect cannot be applied stays stored and is
// reported in Result.Failed under its template; ReconcileBalances repairs
// the balance.
func (a *App) ProcessDuePlannedTransactions(ctx context.Context) (*planned.Result, error) {
	return a.process(ctx, a.processor.ProcessDue)
}

// CatchUpPlanned repeats processing until every missed occurrence exists or
// maxRuns passes have been made.
func (a *App) CatchUpPlanned(ctx context.Context, maxRuns int) (*planned.Result, error) {
	return a.process(ctx, func(ctx context.Context) (*planned.Result, error) {
		return a.processor.CatchUp(ctx, maxRuns)
	})
}

func (a *App) process(ctx context.Context, run func(context.Context) (*planned.Result, error)) (*planned.Result, error) {
	var result *planned.Result
	err := a.locked(ctx, func() error {
		var err error
		result, err = run(ctx)
		if result != nil {
			a.applyCreated(ctx, result)
		}
		return err
	})
	if result != nil {
		a.notifyProcessed(ctx, result)
	}
	return result, err
}

func (a *App) applyCreated(ctx context.Context, result *planned.Result) {
	for _, txn := range result.Created {
		if err := a.ledger.ApplyEffect(ctx, txn); err != nil {
			common.LogError(ctx, err, "Failed to apply materialized transaction", common.Fields{
				"transaction_id": txn.ID,
				"planned_id":     txn.PlannedID,
			})
			result.Failed[txn.PlannedID] = err
		}
	}
}

func (a *App) notifyProcessed(ctx context.Context, result *planned.Result) {
	ids := append(append([]string{}, result.Completed...), result.Cancelled...)
	for _, txn := range result.Created {
		ids = append(ids, txn.PlannedID)
	}

	state := a.State()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if pt, ok := state.Planned(id); ok {
			_ = a.notifier.SchedulePlannedReminder(ctx, pt)
		}
	}
}
