package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal tracks saving toward a target amount.
type Goal struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	TargetDate    *time.Time
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	ID            string
	Name          string
	AccountID     string
}

// Validate checks required goal fields.
func (g *Goal) Validate() error {
	if g == nil || blank(g.ID) || blank(g.Name) {
		return invalid(ErrInvalidGoal, "ID and name are required")
	}
	if !g.TargetAmount.IsPositive() {
		return invalid(ErrInvalidGoal, "target amount must be greater than zero")
	}
	if g.CurrentAmount.IsNegative() {
		return invalid(ErrInvalidGoal, "current amount cannot be negative")
	}
	return nil
}

// Progress returns the fraction of the target reached, capped at 1.
func (g *Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	p := g.CurrentAmount.Div(g.TargetAmount)
	if p.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return p
}
