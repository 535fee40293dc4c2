package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BannedUserModel struct {
	ID       string  `gorm:"type:uuid;primary_key"`
	UserID   string  `gorm:"type:uuid;uniqueIndex;not null"`
	BannedBy *string `gorm:"type:uuid"`
	Reason   string  `gorm:"type:text;not null;default:''"`
	BannedAt time.Time
}

func (BannedUserModel) TableName() string {
	return "banned_users"
}

func (b *BannedUserModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.BannedAt.IsZero() {
		b.BannedAt = time.Now().UTC()
	}
	return nil
}

// BanRow is a ban joined with the banned user's name.
type BanRow struct {
	ID       string
	UserID   string
	Username string
	BannedBy *string
	Reason   string
	BannedAt time.Time
}

type VideoModel struct {
	ID           string  `gorm:"type:uuid;primary_key"`
	TeacherID    string  `gorm:"type:uuid"`
	VideoURL     string  `gorm:"type:text"`
	ThumbnailURL *string `gorm:"type:text"`
}

func (VideoModel) TableName() string {
	return "videos"
}
