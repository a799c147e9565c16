package model

import (
	"time"
)

// RuleStatus enum constants
const (
	RuleStatusProposed = "proposed"
	RuleStatusPassed   = "passed"
	RuleStatusActive   = "active"
	RuleStatusExpired  = "expired"
	RuleStatusRejected = "rejected"
)

// ClauseType enum constants
const (
	ClauseTypePurpose    = "purpose"    // confirmed rationale
	ClauseTypeHypothesis = "hypothesis" // experimental, needs success metrics
)

// SuccessMetricsSource enum constants
const (
	MetricsSourceNone   = "none"
	MetricsSourceSystem = "system" // copied from the owning System at creation
	MetricsSourceCustom = "custom" // author-supplied
)

// SunsetType enum constants
const (
	SunsetTypeDefault    = "default"
	SunsetTypeIndefinite = "indefinite"
	SunsetTypeCustom     = "custom"
)

// EffectiveDateType enum constants
const (
	EffectiveSameAsPassed = "sameAsPassedDate"
	EffectiveCustom       = "custom"
)

// DefaultSunsetDays is how long a rule with the default sunset stays active.
const DefaultSunsetDays = 30

// Rule is a single personal governance statement with a lifecycle status.
// IDs follow PR<year>-<seq> for base rules and <baseId>A<n> for amendments
// and are never reused, even after delete.
type Rule struct {
	ID                   string     `gorm:"type:varchar(32);primaryKey" json:"id"`
	Title                string     `gorm:"type:text;not null" json:"title"`
	System               string     `gorm:"type:varchar(120);not null;index" json:"system"`
	Status               string     `gorm:"type:varchar(20);not null;default:'proposed';index" json:"status"`
	ClauseType           string     `gorm:"type:varchar(20);not null" json:"clause_type"` // purpose, hypothesis
	ClauseText           string     `gorm:"type:text;not null" json:"clause_text"`
	SuccessMetrics       string     `gorm:"type:text" json:"success_metrics"`
	SuccessMetricsSource string     `gorm:"type:varchar(10);not null;default:'none'" json:"success_metrics_source"`
	SunsetType           string     `gorm:"type:varchar(15);not null;default:'default'" json:"sunset_type"`
	CustomSunsetDays     *int       `json:"custom_sunset_days,omitempty"` // set only when SunsetType is custom
	PassedDate           *time.Time `json:"passed_date"`
	EffectiveDate        *time.Time `json:"effective_date"`
	ExpirationDate       *time.Time `json:"expiration_date"` // nil while proposed, and forever for indefinite sunsets
	EffectiveDateType    string     `gorm:"type:varchar(20)" json:"effective_date_type,omitempty"`
	Body                 string     `gorm:"type:text" json:"body"`
	IsArchived           bool       `gorm:"not null;default:false;index" json:"is_archived"`
	BaseRuleID           *string    `gorm:"type:varchar(32);index" json:"base_rule_id"`
	AmendmentNumber      int        `gorm:"not null;default:0" json:"amendment_number"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// IsAmendment reports whether the rule amends another rule.
func (r *Rule) IsAmendment() bool {
	return r.BaseRuleID != nil
}

// IsTerminal reports whether the rule is in a terminal lifecycle state.
// Terminal rules can only be archived/unarchived, never re-transitioned.
func (r *Rule) IsTerminal() bool {
	return r.Status == RuleStatusExpired || r.Status == RuleStatusRejected
}
