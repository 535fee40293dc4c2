package model

import "time"

type SubscriptionModel struct {
	ID        string    `gorm:"type:uuid;primary_key"`
	UserID    string    `gorm:"type:uuid;not null"`
	IsActive  bool      `gorm:"not null"`
	StartedAt time.Time
	ExpiresAt time.Time `gorm:"not null"`
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

type BannedUserModel struct {
	ID       string    `gorm:"type:uuid;primary_key"`
	UserID   string    `gorm:"type:uuid;not null"`
	Reason   string    `gorm:"type:text"`
	BannedAt time.Time
}

func (BannedUserModel) TableName() string {
	return "banned_users"
}
