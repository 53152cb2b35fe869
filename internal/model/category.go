package model

import "time"

// CategoryType indicates whether a category groups income or expenses.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Category groups transactions for reporting and budgeting.
type Category struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	Color     string
	Icon      string
	ParentID  string
	Type      CategoryType
}

// Validate checks required category fields.
func (c *Category) Validate() error {
	if c == nil || blank(c.ID) || blank(c.Name) {
		return invalid(ErrInvalidCategory, "ID and name are required")
	}
	if c.Type != CategoryTypeIncome && c.Type != CategoryTypeExpense {
		return invalid(ErrInvalidCategory, "unknown type %q", c.Type)
	}
	if c.ParentID == c.ID {
		return invalid(ErrInvalidCategory, "category cannot be its own parent")
	}
	return nil
}
