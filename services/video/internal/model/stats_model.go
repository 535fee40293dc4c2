package model

import "time"

// VideoStatsRow is the scan target of the per-video aggregate query.
type VideoStatsRow struct {
	VideoID       string
	Title         string
	TotalViews    int64
	UniqueViewers int64
	LastViewedAt  *time.Time
}
