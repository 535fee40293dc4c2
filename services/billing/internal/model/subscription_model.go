package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionModel struct {
	ID        string `gorm:"type:uuid;primary_key"`
	UserID    string `gorm:"type:uuid;not null;index"`
	IsActive  bool   `gorm:"not null;default:true"`
	StartedAt time.Time
	ExpiresAt time.Time
	OrderID   *string `gorm:"type:varchar(64);uniqueIndex"`
	CreatedAt time.Time
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

type PaymentOrderModel struct {
	OrderID   string `gorm:"type:varchar(64);primary_key"`
	UserID    string `gorm:"type:uuid;not null;index"`
	Amount    string `gorm:"type:varchar(16);not null"`
	Currency  string `gorm:"type:char(3);not null"`
	CreatedAt time.Time
}

func (PaymentOrderModel) TableName() string {
	return "payment_orders"
}
