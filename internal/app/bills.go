package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/bills"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

func (a *App) billDefaults(b *model.Bill) {
	if b.Recurrence == "" {
		if b.DueDateType == model.DueRecurring {
			b.Recurrence = model.RecurrenceMonthly
		} else {
			b.Recurrence = model.RecurrenceNone
		}
	}
	if b.Status == "" {
		b.Status = model.BillPending
	}
}

// AddBill stores a new bill with its due date and status derived for today.
func (a *App) AddBill(ctx context.Context, b model.Bill) (model.Bill, error) {
	b.ID = a.id(b.ID)
	a.billDefaults(&b)
	b.CreatedAt, b.UpdatedAt = a.stamp(b.CreatedAt)
	if err := b.Validate(); err != nil {
		return model.Bill{}, err
	}
	b = bills.RecalculateStatus(b, a.Today())

	err := a.mutate(ctx, "add bill", func(gw service.Gateway) error {
		return gw.Bills().Add(ctx, b)
	})
	if err != nil {
		return model.Bill{}, err
	}
	_ = a.notifier.ScheduleBillReminder(ctx, b)
	return b, nil
}

// UpdateBill replaces a bill and re-derives its due date and status.
func (a *App) UpdateBill(ctx context.Context, b model.Bill) (model.Bill, error) {
	a.billDefaults(&b)
	if err := b.Validate(); err != nil {
		return model.Bill{}, err
	}
	b = bills.RecalculateStatus(b, a.Today())

	err := a.mutate(ctx, "update bill", func(gw service.Gateway) error {
		stored, err := gw.Bills().Get(ctx, b.ID)
		if err != nil {
			return err
		}
		b.CreatedAt, b.UpdatedAt = a.stamp(stored.CreatedAt)
		return gw.Bills().Update(ctx, b)
	})
	if err != nil {
		return model.Bill{}, err
	}
	_ = a.notifier.ScheduleBillReminder(ctx, b)
	return b, nil
}

// DeleteBill removes a bill. Payments already recorded stay.
func (a *App) DeleteBill(ctx context.Context, id string) error {
	err := a.mutate(ctx, "delete bill", func(gw service.Gateway) error {
		return gw.Bills().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	_ = a.notifier.CancelReminder(ctx, id)
	return nil
}

// PayBill marks the bill's current cycle paid. A nil amount pays the bill's
// full amount. With record set, the payment is also booked as an expense
// from the bill's account in the same unit of work.
func (a *App) PayBill(ctx context.Context, id string, amount *decimal.Decimal, record bool) (model.Bill, error) {
	today := a.Today()
	return a.changeBill(ctx, "pay bill", id, func(gw service.Gateway, b model.Bill) (model.Bill, error) {
		paid, err := bills.MarkPaid(b, today, amount)
		if err != nil {
			return b, err
		}
		if record {
			if _, err := ledger.New(gw, a.clock).Add(ctx, a.payment(paid, today)); err != nil {
				return b, err
			}
		}
		return bills.RecalculateStatus(paid, today), nil
	})
}

// payment is the expense recording a bill payment.
func (a *App) payment(b model.Bill, day time.Time) model.Transaction {
	txn := model.Transaction{
		ID:          a.newID(),
		AccountID:   b.AccountID,
		CategoryID:  b.CategoryID,
		Type:        model.TypeExpense,
		Amount:      *b.LastPaidAmount,
		Description: b.Name,
		Date:        day,
		Status:      model.StatusCleared,
	}
	if b.PayeeID != "" {
		txn.PayeeIDs = []string{b.PayeeID}
	}
	return txn
}

// ResetBill discards the bill's recorded payment. A booked payment
// transaction is not removed.
func (a *App) ResetBill(ctx context.Context, id string) (model.Bill, error) {
	today := a.Today()
	return a.changeBill(ctx, "reset bill", id, func(_ service.Gateway, b model.Bill) (model.Bill, error) {
		return bills.ResetPayment(b, today), nil
	})
}

// CancelBill stops the bill.
func (a *App) CancelBill(ctx context.Context, id string) (model.Bill, error) {
	return a.changeBill(ctx, "cancel bill", id, func(_ service.Gateway, b model.Bill) (model.Bill, error) {
		return bills.Cancel(b), nil
	})
}

func (a *App) changeBill(ctx context.Context, op, id string,
	change func(service.Gateway, model.Bill) (model.Bill, error),
) (model.Bill, error) {
	var changed model.Bill
	err := a.mutate(ctx, op, func(gw service.Gateway) error {
		stored, err := gw.Bills().Get(ctx, id)
		if err != nil {
			return err
		}
		changed, err = change(gw, *stored)
		if err != nil {
			return err
		}
		changed.UpdatedAt = a.clock.Now()
		return gw.Bills().Update(ctx, changed)
	})
	if err != nil {
		return model.Bill{}, err
	}
	_ = a.notifier.ScheduleBillReminder(ctx, changed)
	return changed, nil
}

// RecalculateBills refreshes every bill's due date and status for today and
// returns the bills that changed.
func (a *App) RecalculateBills(ctx context.Context) ([]model.Bill, error) {
	today := a.Today()
	var changed []model.Bill
	err := a.mutate(ctx, "recalculate bills", func(gw service.Gateway) error {
		all, err := gw.Bills().GetAll(ctx)
		if err != nil {
			return err
		}
		now := a.clock.Now()
		for _, b := range all {
			next := bills.RecalculateStatus(b, today)
			if next.Status == b.Status && sameDay(next.NextDueDate, b.NextDueDate) {
				continue
			}
			next.UpdatedAt = now
			changed = append(changed, next)
		}
		return gw.Bills().UpdateMany(ctx, changed)
	})
	if err != nil {
		return nil, err
	}

	for _, b := range changed {
		_ = a.notifier.ScheduleBillReminder(ctx, b)
	}
	if len(changed) > 0 {
		common.LogInfo(ctx, "Bill statuses recalculated", common.Fields{"changed": len(changed)})
	}
	return changed, nil
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
