package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageModel struct {
	ID          string  `gorm:"column:id;type:uuid;primaryKey"`
	SenderID    string  `gorm:"column:sender_id;type:uuid;not null"`
	RecipientID *string `gorm:"column:recipient_id;type:uuid"`
	Title       string  `gorm:"column:title;type:varchar(200);not null"`
	Content     string  `gorm:"column:content;type:text;not null"`
	IsBroadcast bool    `gorm:"column:is_broadcast;not null;default:false"`
	ReadAt      *time.Time
	CreatedAt   time.Time
}

func (MessageModel) TableName() string {
	return "messages"
}

func (m *MessageModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// MessageRow is a message joined with its sender name and the reader's read time.
type MessageRow struct {
	MessageModel
	SenderName string
}
