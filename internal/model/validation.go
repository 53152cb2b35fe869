// Package model defines the domain entities tracked by tally.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors. Each entity wraps its own sentinel with the failing field.
var (
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidPlanned     = errors.New("invalid planned transaction")
	ErrInvalidBill        = errors.New("invalid bill")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidLabel       = errors.New("invalid label")
	ErrInvalidContact     = errors.New("invalid contact")
	ErrInvalidBudget      = errors.New("invalid budget")
	ErrInvalidGoal        = errors.New("invalid goal")
)

func invalid(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
