package model

// Sequence is a persistent monotonic counter, keyed by name. Rule ids embed
// sequence numbers that must never be reissued, so the counter outlives the
// records that used its numbers.
type Sequence struct {
	Name string `gorm:"type:varchar(64);primaryKey" json:"name"`
	Last int    `gorm:"not null;default:0" json:"last"`
}
