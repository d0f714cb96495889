package model

import "time"

type Gift struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	Name           string    `gorm:"column:name;size:255;not null"`
	PointsRequired int       `gorm:"column:points_required;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Gift) TableName() string {
	return "gifts"
}
