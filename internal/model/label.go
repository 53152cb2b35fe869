package model

import "time"

// Label is a free-form tag attached to transactions.
type Label struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	Color     string
}

// Validate checks required label fields.
func (l *Label) Validate() error {
	if l == nil || blank(l.ID) || blank(l.Name) {
		return invalid(ErrInvalidLabel, "ID and name are required")
	}
	return nil
}
