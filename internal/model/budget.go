package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the window a budget amount applies to.
type BudgetPeriod string

// Budget periods.
const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// Budget caps spending across one or more categories per period.
type Budget struct {
	StartDate   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	EndDate     *time.Time
	Amount      decimal.Decimal
	ID          string
	Name        string
	Period      BudgetPeriod
	CategoryIDs []string
}

// Validate checks required budget fields.
func (b *Budget) Validate() error {
	if b == nil || blank(b.ID) || blank(b.Name) {
		return invalid(ErrInvalidBudget, "ID and name are required")
	}
	if !b.Amount.IsPositive() {
		return invalid(ErrInvalidBudget, "amount must be greater than zero")
	}
	switch b.Period {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
	default:
		return invalid(ErrInvalidBudget, "unknown period %q", b.Period)
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return invalid(ErrInvalidBudget, "end date is before start date")
	}
	return nil
}
