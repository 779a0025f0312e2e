package shared

import "time"

// Timestamped is implemented by entities that track creation and update times
type Timestamped interface {
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// Timestamps provides common time fields for entities.
// Identifiers are not part of it: customers, projects and orders carry
// human-readable sequence ids while invoices and their items use UUIDs.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetCreatedAt returns the creation timestamp
func (t *Timestamps) GetCreatedAt() time.Time {
	return t.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (t *Timestamps) GetUpdatedAt() time.Time {
	return t.UpdatedAt
}

// Touch sets UpdatedAt to now
func (t *Timestamps) Touch() {
	t.UpdatedAt = time.Now()
}

// NewTimestamps returns timestamps initialised to now
func NewTimestamps() Timestamps {
	now := time.Now()
	return Timestamps{
		CreatedAt: now,
		UpdatedAt: now,
	}
}
