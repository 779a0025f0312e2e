package models

import "time"

// SequenceCounterModel stores the high-water mark of one identifier scope,
// e.g. "order:MP20260201". Allocation holds a row lock on it.
type SequenceCounterModel struct {
	Scope     string    `gorm:"type:varchar(64);primaryKey"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceCounterModel) TableName() string {
	return "sequence_counters"
}
