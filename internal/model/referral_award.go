package model

import "time"

// ReferralAward records that a referrer was credited for bringing in a
// user. Keyed on the ordered pair and independent of epochs: referral
// credit is lifetime, a new contest does not make the pair creditable
// again. Only a full reset removes these rows.
type ReferralAward struct {
	ReferrerID int64     `gorm:"column:referrer_id;primaryKey;autoIncrement:false"`
	ReferredID int64     `gorm:"column:referred_id;primaryKey;autoIncrement:false"`
	Points     int       `gorm:"column:points;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (ReferralAward) TableName() string {
	return "referral_awards"
}
