package model

import "github.com/google/uuid"

// NewID returns a fresh time-ordered identifier for a new entity.
// UUIDv7 embeds the creation timestamp, so IDs sort by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the system random source is broken.
		return uuid.NewString()
	}
	return id.String()
}
