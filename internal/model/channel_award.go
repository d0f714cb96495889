package model

import "time"

// ChannelAward is the durable proof that a user was credited for a channel
// within an epoch. The composite unique index is the idempotency gate: the
// insert either lands once or is rejected, there is no check-then-write.
type ChannelAward struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:uniq_user_channel_epoch"`
	ChannelID string    `gorm:"column:channel_id;size:64;not null;uniqueIndex:uniq_user_channel_epoch"`
	EpochID   uint64    `gorm:"column:epoch_id;not null;uniqueIndex:uniq_user_channel_epoch"`
	Points    int       `gorm:"column:points;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChannelAward) TableName() string {
	return "channel_awards"
}
