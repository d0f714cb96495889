package model

import "time"

// User is created on first contact and never deleted, contest resets only
// zero its counters. ReferrerID is set once at creation and never mutated.
type User struct {
	TelegramID int64     `gorm:"column:telegram_id;primaryKey;autoIncrement:false"`
	Username   string    `gorm:"column:username;size:64"`
	FullName   string    `gorm:"column:full_name;size:255"`
	Points     int       `gorm:"column:points;not null;default:0"`
	Referrals  int       `gorm:"column:referrals;not null;default:0"`
	ReferrerID *int64    `gorm:"column:referrer_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
