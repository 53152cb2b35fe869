// Package notify schedules bill and planned-transaction reminders.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// LogNotifier records reminders as structured log entries. It is the
// default notifier for the command line, where no scheduler daemon runs.
type LogNotifier struct {
	logger *slog.Logger
}

var _ service.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier writing to logger, or the default logger when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// RemindAt is the day a reminder fires: daysBefore days ahead of due.
func RemindAt(due time.Time, daysBefore int) time.Time {
	return due.AddDate(0, 0, -daysBefore)
}

// ScheduleBillReminder logs the reminder for the bill's next due date.
func (n *LogNotifier) ScheduleBillReminder(ctx context.Context, bill model.Bill) error {
	if !bill.Notify || bill.NextDueDate == nil || bill.Status == model.BillCancelled {
		return n.CancelReminder(ctx, bill.ID)
	}
	n.logger.InfoContext(ctx, "Bill reminder scheduled",
		"bill_id", bill.ID,
		"name", bill.Name,
		"due", bill.NextDueDate.Format(time.DateOnly),
		"remind_at", RemindAt(*bill.NextDueDate, bill.NotifyDaysBefore).Format(time.DateOnly))
	return nil
}

// SchedulePlannedReminder logs the reminder for the next occurrence.
func (n *LogNotifier) SchedulePlannedReminder(ctx context.Context, planned model.PlannedTransaction) error {
	if !planned.Notify || !planned.IsActive() {
		return n.CancelReminder(ctx, planned.ID)
	}
	due := planned.DueDate()
	n.logger.InfoContext(ctx, "Planned transaction reminder scheduled",
		"planned_id", planned.ID,
		"description", planned.Description,
		"due", due.Format(time.DateOnly),
		"remind_at", RemindAt(due, planned.NotifyDaysBefore).Format(time.DateOnly))
	return nil
}

// CancelReminder logs the cancellation.
func (n *LogNotifier) CancelReminder(ctx context.Context, entityID string) error {
	n.logger.DebugContext(ctx, "Reminder cancelled", "entity_id", entityID)
	return nil
}

// BestEffort wraps a notifier so that its errors and panics are logged and
// never reach the caller.
type BestEffort struct {
	next service.Notifier
}

// NewBestEffort wraps next. A nil next discards every call.
func NewBestEffort(next service.Notifier) *BestEffort {
	return &BestEffort{next: next}
}

// ScheduleBillReminder forwards to the wrapped notifier.
func (b *BestEffort) ScheduleBillReminder(ctx context.Context, bill model.Bill) error {
	b.call(ctx, "schedule bill reminder", bill.ID, func() error {
		return b.next.ScheduleBillReminder(ctx, bill)
	})
	return nil
}

// SchedulePlannedReminder forwards to the wrapped notifier.
func (b *BestEffort) SchedulePlannedReminder(ctx context.Context, planned model.PlannedTransaction) error {
	b.call(ctx, "schedule planned reminder", planned.ID, func() error {
		return b.next.SchedulePlannedReminder(ctx, planned)
	})
	return nil
}

// CancelReminder forwards to the wrapped notifier.
func (b *BestEffort) CancelReminder(ctx context.Context, entityID string) error {
	b.call(ctx, "cancel reminder", entityID, func() error {
		return b.next.CancelReminder(ctx, entityID)
	})
	return nil
}

func (b *BestEffort) call(ctx context.Context, op, entityID string, fn func() error) {
	if b.next == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			common.LogError(ctx, fmt.Errorf("panic: %v", r), "Notifier failed", common.Fields{
				"operation": op, "entity_id": entityID,
			})
		}
	}()
	if err := fn(); err != nil {
		common.LogError(ctx, err, "Notifier failed", common.Fields{
			"operation": op, "entity_id": entityID,
		})
	}
}
