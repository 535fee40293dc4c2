package entity

import (
	"errors"
	"io"
	"time"
)

var (
	ErrVideoNotFound  = errors.New("video not found")
	ErrNotOwner       = errors.New("you can only delete your own videos")
	ErrUnsupportedExt = errors.New("unsupported file type")
)

// Video never exposes its object key; clients go through playback to watch.
type Video struct {
	ID              string    `json:"id"`
	TeacherID       string    `json:"teacher_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	VideoURL        string    `json:"-"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	QualityHD       bool      `json:"quality_hd"`
	QualityStandard bool      `json:"quality_standard"`
	Duration        *int      `json:"duration,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ViewRecord struct {
	VideoID      string    `json:"video_id"`
	ViewCount    int       `json:"view_count"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}

type Upload struct {
	Body        io.ReadSeeker
	Filename    string
	ContentType string
}

type NewVideo struct {
	TeacherID       string
	Title           string
	Description     string
	Category        string
	QualityHD       bool
	QualityStandard bool
	Duration        *int
	Video           Upload
	Thumbnail       *Upload
}
