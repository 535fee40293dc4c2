package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Video struct {
	ID              string    `gorm:"type:uuid;primary_key" json:"id"`
	TeacherID       string    `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Title           string    `gorm:"type:varchar(255);not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	Category        string    `gorm:"type:varchar(100)" json:"category"`
	VideoURL        string    `gorm:"type:text;not null" json:"-"`
	ThumbnailURL    *string   `gorm:"type:text" json:"-"`
	QualityHD       bool      `gorm:"column:quality_hd" json:"quality_hd"`
	QualityStandard bool      `json:"quality_standard"`
	Duration        *int      `json:"duration,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// ViewRecord is written only by consume_view; this type is for reads and fixtures.
type ViewRecord struct {
	ID           string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID       string    `gorm:"type:uuid;not null" json:"user_id"`
	VideoID      string    `gorm:"type:uuid;not null" json:"video_id"`
	ViewCount    int       `gorm:"not null;default:0" json:"view_count"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}

func (ViewRecord) TableName() string {
	return "video_views"
}

func (v *ViewRecord) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
