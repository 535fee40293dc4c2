package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subscription struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	OrderID   *string   `gorm:"type:varchar(64);uniqueIndex" json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// ActiveAt reports whether s grants premium at t. The expiry instant itself still counts.
func (s *Subscription) ActiveAt(t time.Time) bool {
	return s.IsActive && !s.ExpiresAt.Before(t)
}
