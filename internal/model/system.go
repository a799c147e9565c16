package model

import (
	"time"
)

// System is a named routine/category that groups rules and optionally supplies
// default success metrics. Name is the identity and is immutable after
// creation; SystemID is a sequential integer kept nullable so records that
// predate the field can be detected and backfilled by the repair operation.
type System struct {
	Name           string    `gorm:"type:varchar(120);primaryKey" json:"name"`
	SystemID       *int      `gorm:"uniqueIndex" json:"system_id"`
	SuccessMetrics *string   `gorm:"type:text" json:"success_metrics"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasSuccessMetrics reports whether the system carries non-empty default
// success metrics that rules may inherit.
func (s *System) HasSuccessMetrics() bool {
	return s.SuccessMetrics != nil && *s.SuccessMetrics != ""
}
