package model

import "time"

// ContestEpoch is a bounded contest period. Active is true for the single
// running epoch and NULL for ended ones; the unique index on the column
// makes a second concurrent activation impossible at the schema level
// (NULLs do not collide, a second true does).
type ContestEpoch struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement"`
	Active    *bool      `gorm:"column:active;uniqueIndex"`
	StartedAt time.Time  `gorm:"column:started_at;autoCreateTime"`
	EndedAt   *time.Time `gorm:"column:ended_at"`
}

func (ContestEpoch) TableName() string {
	return "contest_epochs"
}

func (e *ContestEpoch) IsActive() bool {
	return e.Active != nil && *e.Active
}
