package model

import "time"

type VideoModel struct {
	ID           string    `gorm:"type:uuid;primary_key" json:"id"`
	TeacherID    string    `gorm:"type:uuid;not null" json:"teacher_id"`
	Title        string    `gorm:"type:varchar(255)" json:"title"`
	VideoURL     string    `gorm:"type:text;not null" json:"video_url"`
	ThumbnailURL *string   `gorm:"type:text" json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func (VideoModel) TableName() string {
	return "videos"
}
