package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BypassRequestModel struct {
	ID            string `gorm:"type:uuid;primary_key"`
	IPAddress     string `gorm:"type:varchar(45);not null"`
	RequestedRole string `gorm:"type:varchar(20);not null"`
	Reason        string `gorm:"type:text;not null"`
	Status        string `gorm:"type:varchar(16);not null;default:'pending'"`
	CreatedAt     time.Time
	ReviewedAt    *time.Time
	ReviewedBy    *string `gorm:"type:uuid"`
}

func (BypassRequestModel) TableName() string {
	return "ip_bypass_requests"
}

func (b *BypassRequestModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}
