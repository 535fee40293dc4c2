package entity

import (
	"errors"
	"time"
)

var ErrStatsForbidden = errors.New("you can only view stats for your own videos")

// VideoStats aggregates the view counters of one video. UniqueViewers counts
// students who watched at least once; owners and premium bypasses are never metered.
type VideoStats struct {
	VideoID       string     `json:"video_id"`
	Title         string     `json:"title"`
	TotalViews    int64      `json:"total_views"`
	UniqueViewers int64      `json:"unique_viewers"`
	LastViewedAt  *time.Time `json:"last_viewed_at,omitempty"`
}

type TeacherStats struct {
	TotalVideos   int          `json:"total_videos"`
	TotalViews    int64        `json:"total_views"`
	UniqueViewers int64        `json:"unique_viewers"`
	Videos        []VideoStats `json:"videos"`
}
