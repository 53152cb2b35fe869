// Package bills derives bill due dates and statuses.
//
// Every function takes a bill by value and returns the updated copy, so
// callers decide when to persist. Recalculation is idempotent: applying
// RecalculateStatus twice with the same day yields the same bill.
package bills

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/schedule"
)

// ErrCancelled is returned when paying a cancelled bill.
var ErrCancelled = errors.New("bill is cancelled")

// CalculateNextDueDate returns the date the bill is next due, or nil when a
// recurring bill has no cycle left before its end date. Cancelled bills keep
// whatever was stored.
func CalculateNextDueDate(bill model.Bill) *time.Time {
	if bill.Status == model.BillCancelled {
		return bill.NextDueDate
	}

	if bill.DueDateType == model.DueFixed {
		if bill.DueDate == nil {
			return nil
		}
		due := schedule.Day(*bill.DueDate)
		return &due
	}

	next := cycleOnOrAfter(bill, searchStart(bill))
	if bill.EndDate != nil && next.After(schedule.Day(*bill.EndDate)) {
		return nil
	}
	return &next
}

// searchStart is the first day that may hold an unpaid cycle: the start
// date, or the day after the last settled cycle if later.
func searchStart(bill model.Bill) time.Time {
	from := schedule.Day(bill.StartDate)
	if settled := settledThrough(bill); settled != nil {
		if after := schedule.Day(*settled).AddDate(0, 0, 1); after.After(from) {
			from = after
		}
	}
	return from
}

// cycleOnOrAfter finds the first due date of the bill's cycle on or after from.
func cycleOnOrAfter(bill model.Bill, from time.Time) time.Time {
	switch bill.Recurrence {
	case model.RecurrenceDaily:
		return from

	case model.RecurrenceWeekly:
		target := time.Weekday(bill.DueDay % 7) // 7 is Sunday
		if bill.DueDay < 1 {
			target = bill.StartDate.Weekday()
		}
		offset := (int(target) - int(from.Weekday()) + 7) % 7
		return from.AddDate(0, 0, offset)

	case model.RecurrenceYearly:
		month := bill.StartDate.Month()
		due := schedule.DateOn(from.Year(), month, dueDay(bill))
		if due.Before(from) {
			due = schedule.DateOn(from.Year()+1, month, dueDay(bill))
		}
		return due

	default:
		due := schedule.DateOn(from.Year(), from.Month(), dueDay(bill))
		if due.Before(from) {
			due = schedule.DateOn(from.Year(), from.Month()+1, dueDay(bill))
		}
		return due
	}
}

func dueDay(bill model.Bill) int {
	if bill.DueDay >= 1 {
		return bill.DueDay
	}
	return bill.StartDate.Day()
}

// settledThrough is the last day covered by the most recent payment. Bills
// paid before cycles were tracked fall back to the payment date.
func settledThrough(bill model.Bill) *time.Time {
	if bill.PaidThrough != nil {
		return bill.PaidThrough
	}
	return bill.LastPaidDate
}

// RecalculateStatus refreshes NextDueDate and derives the status for today.
//
// Cancelled bills are returned unchanged. Fixed bills stay paid until
// ResetPayment. A paid recurring bill stays paid until today passes the
// cycle its payment settled, then moves to the next cycle as pending or
// overdue. A bill with no remaining cycle keeps its status.
func RecalculateStatus(bill model.Bill, today time.Time) model.Bill {
	if bill.Status == model.BillCancelled {
		return bill
	}
	today = schedule.Day(today)

	next := CalculateNextDueDate(bill)
	bill.NextDueDate = next
	if next == nil {
		return bill
	}

	if bill.Status == model.BillPaid {
		if bill.DueDateType == model.DueFixed {
			return bill
		}
		settled := settledThrough(bill)
		if settled == nil || !today.After(schedule.Day(*settled)) {
			return bill
		}
	}

	if next.Before(today) {
		bill.Status = model.BillOverdue
	} else {
		bill.Status = model.BillPending
	}
	return bill
}

// MarkPaid records a payment made today. The payment settles the cycle
// currently due. A nil amount means the bill's full amount.
func MarkPaid(bill model.Bill, today time.Time, amount *decimal.Decimal) (model.Bill, error) {
	if bill.Status == model.BillCancelled {
		return bill, fmt.Errorf("%w: %s", ErrCancelled, bill.ID)
	}
	today = schedule.Day(today)

	paid := bill.Amount
	if amount != nil {
		paid = *amount
	}
	if paid.IsNegative() {
		return bill, fmt.Errorf("%w: payment amount cannot be negative", model.ErrInvalidBill)
	}

	settled := today
	if due := CalculateNextDueDate(bill); due != nil {
		settled = *due
	}

	bill.Status = model.BillPaid
	bill.LastPaidDate = &today
	bill.LastPaidAmount = &paid
	bill.PaidThrough = &settled
	return bill, nil
}

// ResetPayment discards the recorded payment and re-derives the status.
func ResetPayment(bill model.Bill, today time.Time) model.Bill {
	if bill.Status == model.BillCancelled {
		return bill
	}
	bill.Status = model.BillPending
	bill.LastPaidDate = nil
	bill.LastPaidAmount = nil
	bill.PaidThrough = nil
	return RecalculateStatus(bill, today)
}

// Cancel stops the bill. Its next due date is kept for reference.
func Cancel(bill model.Bill) model.Bill {
	bill.Status = model.BillCancelled
	return bill
}

// IsSettled reports whether the bill needs no action in its current cycle.
func IsSettled(bill model.Bill) bool {
	return bill.Status == model.BillPaid || bill.Status == model.BillCancelled
}
