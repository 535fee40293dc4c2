package model

import "time"

type AIUsageModel struct {
	ID            string    `gorm:"type:uuid;primary_key"`
	UserID        string    `gorm:"type:uuid;not null"`
	UsageDate     time.Time `gorm:"type:date;not null"`
	QuestionCount int       `gorm:"not null;default:0"`
}

func (AIUsageModel) TableName() string {
	return "ai_usage"
}

type SubscriptionModel struct {
	ID        string `gorm:"type:uuid;primary_key"`
	UserID    string `gorm:"type:uuid"`
	IsActive  bool
	ExpiresAt time.Time
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
