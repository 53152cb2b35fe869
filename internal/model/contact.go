package model

import (
	"net/mail"
	"time"
)

// Contact is a payee or payer referenced by transactions and bills.
type Contact struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	Email     string
	Phone     string
	Notes     string
}

// Validate checks required contact fields.
func (c *Contact) Validate() error {
	if c == nil || blank(c.ID) || blank(c.Name) {
		return invalid(ErrInvalidContact, "ID and name are required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return invalid(ErrInvalidContact, "email %q is not valid", c.Email)
		}
	}
	return nil
}
