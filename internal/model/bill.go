package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DueDateType selects how a bill's due date is expressed.
type DueDateType string

// Due date types.
const (
	DueFixed     DueDateType = "fixed"     // a single calendar date in DueDate
	DueRecurring DueDateType = "recurring" // a day of the cycle in DueDay
)

// BillStatus is the state of the current billing cycle.
type BillStatus string

// Bill statuses.
const (
	BillPending   BillStatus = "pending"
	BillPaid      BillStatus = "paid"
	BillOverdue   BillStatus = "overdue"
	BillCancelled BillStatus = "cancelled"
)

// Bill is a payment obligation with either a fixed due date or a recurring due day.
//
// PaidThrough records the due date of the cycle the last payment settled, so
// paying ahead of the due date does not leave that cycle open.
type Bill struct {
	StartDate        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DueDate          *time.Time
	EndDate          *time.Time
	LastPaidDate     *time.Time
	PaidThrough      *time.Time
	NextDueDate      *time.Time
	LastPaidAmount   *decimal.Decimal
	Amount           decimal.Decimal
	ID               string
	Name             string
	CategoryID       string
	AccountID        string
	PayeeID          string
	Notes            string
	DueDateType      DueDateType
	Recurrence       Recurrence
	Status           BillStatus
	DueDay           int
	NotifyDaysBefore int
	AutoPay          bool
	Notify           bool
}

// Validate checks the bill fields, including that the due field matches the due date type.
func (b *Bill) Validate() error {
	if b == nil {
		return invalid(ErrInvalidBill, "bill is nil")
	}
	if blank(b.ID) {
		return invalid(ErrInvalidBill, "missing ID")
	}
	if blank(b.Name) {
		return invalid(ErrInvalidBill, "missing name")
	}
	if b.Amount.IsNegative() {
		return invalid(ErrInvalidBill, "amount cannot be negative")
	}
	if blank(b.AccountID) {
		return invalid(ErrInvalidBill, "missing account ID")
	}
	if !b.Recurrence.Valid() {
		return invalid(ErrInvalidBill, "unknown recurrence %q", b.Recurrence)
	}

	switch b.DueDateType {
	case DueFixed:
		if b.DueDate == nil {
			return invalid(ErrInvalidBill, "fixed bills need a due date")
		}
	case DueRecurring:
		limit := 31
		if b.Recurrence == RecurrenceWeekly {
			limit = 7
		}
		if b.DueDay < 1 || b.DueDay > limit {
			return invalid(ErrInvalidBill, "due day must be between 1 and %d", limit)
		}
		if b.StartDate.IsZero() {
			return invalid(ErrInvalidBill, "recurring bills need a start date")
		}
	default:
		return invalid(ErrInvalidBill, "unknown due date type %q", b.DueDateType)
	}

	if b.EndDate != nil && !b.StartDate.IsZero() && b.EndDate.Before(b.StartDate) {
		return invalid(ErrInvalidBill, "end date is before start date")
	}
	switch b.Status {
	case BillPending, BillPaid, BillOverdue, BillCancelled:
	default:
		return invalid(ErrInvalidBill, "unknown status %q", b.Status)
	}
	return nil
}
