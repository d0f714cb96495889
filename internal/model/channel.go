package model

import "time"

type Channel struct {
	ChatID     string    `gorm:"column:chat_id;primaryKey;size:64"`
	Name       string    `gorm:"column:name;size:255;not null"`
	InviteLink string    `gorm:"column:invite_link;type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Channel) TableName() string {
	return "channels"
}
