package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlannedStatus is the lifecycle state of a planned transaction.
type PlannedStatus string

// Planned transaction statuses.
const (
	PlannedPending   PlannedStatus = "pending"
	PlannedCompleted PlannedStatus = "completed"
	PlannedCancelled PlannedStatus = "cancelled"
	PlannedSkipped   PlannedStatus = "skipped"
)

// PlannedTransaction is a template that materializes into Transactions on a schedule.
type PlannedTransaction struct {
	ScheduledDate      time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	EndDate            *time.Time
	LastCreatedDate    *time.Time
	NextOccurrenceDate *time.Time
	WarrantyUntil      *time.Time
	Amount             decimal.Decimal
	ID                 string
	AccountID          string
	ToAccountID        string
	CategoryID         string
	Description        string
	ItemName           string
	Type               TransactionType
	Recurrence         Recurrence
	Status             PlannedStatus
	LabelIDs           []string
	PayeeIDs           []string
	NotifyDaysBefore   int
	AutoCreate         bool
	Notify             bool
}

// DueDate is the date of the next occurrence to materialize.
func (p *PlannedTransaction) DueDate() time.Time {
	if p.NextOccurrenceDate != nil {
		return *p.NextOccurrenceDate
	}
	return p.ScheduledDate
}

// IsActive reports whether the template can still produce transactions.
// A template without a status is treated as pending.
func (p *PlannedTransaction) IsActive() bool {
	return p.Status == PlannedPending || p.Status == ""
}

// Validate checks the template fields. The materialized transaction is
// validated again when it is created.
func (p *PlannedTransaction) Validate() error {
	if p == nil {
		return invalid(ErrInvalidPlanned, "planned transaction is nil")
	}
	if blank(p.ID) {
		return invalid(ErrInvalidPlanned, "missing ID")
	}
	if blank(p.AccountID) {
		return invalid(ErrInvalidPlanned, "missing account ID")
	}
	if !p.Type.Valid() {
		return invalid(ErrInvalidPlanned, "unknown type %q", p.Type)
	}
	if !p.Amount.IsPositive() {
		return invalid(ErrInvalidPlanned, "amount must be greater than zero")
	}
	if p.Type == TypeTransfer && (blank(p.ToAccountID) || p.ToAccountID == p.AccountID) {
		return invalid(ErrInvalidPlanned, "transfer requires a distinct destination account")
	}
	if p.Type != TypeTransfer && p.ToAccountID != "" {
		return invalid(ErrInvalidPlanned, "only transfers may set a destination account")
	}
	if p.ScheduledDate.IsZero() {
		return invalid(ErrInvalidPlanned, "missing scheduled date")
	}
	if !p.Recurrence.Valid() {
		return invalid(ErrInvalidPlanned, "unknown recurrence %q", p.Recurrence)
	}
	if p.EndDate != nil && p.EndDate.Before(p.ScheduledDate) {
		return invalid(ErrInvalidPlanned, "end date is before scheduled date")
	}
	switch p.Status {
	case "", PlannedPending, PlannedCompleted, PlannedCancelled, PlannedSkipped:
	default:
		return invalid(ErrInvalidPlanned, "unknown status %q", p.Status)
	}
	if p.NotifyDaysBefore < 0 {
		return invalid(ErrInvalidPlanned, "notify days before cannot be negative")
	}
	return nil
}
