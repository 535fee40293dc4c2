package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoModel struct {
	ID              string    `gorm:"type:uuid;primary_key"`
	TeacherID       string    `gorm:"type:uuid;not null;index"`
	Title           string    `gorm:"type:varchar(255);not null"`
	Description     string    `gorm:"type:text"`
	Category        string    `gorm:"type:varchar(100)"`
	VideoURL        string    `gorm:"type:text;not null"`
	ThumbnailURL    *string   `gorm:"type:text"`
	QualityHD       bool      `gorm:"column:quality_hd;not null;default:false"`
	QualityStandard bool      `gorm:"not null;default:true"`
	Duration        *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (VideoModel) TableName() string {
	return "videos"
}

func (v *VideoModel) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

type ViewModel struct {
	ID           string `gorm:"type:uuid;primary_key"`
	UserID       string `gorm:"type:uuid;not null"`
	VideoID      string `gorm:"type:uuid;not null"`
	ViewCount    int
	LastViewedAt time.Time
}

func (ViewModel) TableName() string {
	return "video_views"
}
