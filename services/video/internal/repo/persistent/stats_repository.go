package persistent

import (
	"context"

	"learnflix/services/video/internal/entity"
	"learnflix/services/video/internal/model"

	"gorm.io/gorm"
)

const videoStatsColumns = `v.id AS video_id, v.title,
	COALESCE(SUM(vv.view_count), 0) AS total_views,
	COUNT(vv.id) AS unique_viewers,
	MAX(vv.last_viewed_at) AS last_viewed_at`

type StatsRepository interface {
	ListVideoStats(ctx context.Context, teacherID string) ([]entity.VideoStats, error)
	GetVideoStats(ctx context.Context, videoID string) (*entity.VideoStats, error)
	CountUniqueViewers(ctx context.Context, teacherID string) (int64, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) aggregate(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("videos AS v").
		Select(videoStatsColumns).
		Joins("LEFT JOIN video_views vv ON vv.video_id = v.id").
		Group("v.id, v.title, v.created_at")
}

func (r *statsRepository) ListVideoStats(ctx context.Context, teacherID string) ([]entity.VideoStats, error) {
	var rows []model.VideoStatsRow
	err := r.aggregate(ctx).
		Where("v.teacher_id = ?", teacherID).
		Order("v.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]entity.VideoStats, len(rows))
	for i := range rows {
		stats[i] = ToVideoStats(&rows[i])
	}
	return stats, nil
}

func (r *statsRepository) GetVideoStats(ctx context.Context, videoID string) (*entity.VideoStats, error) {
	var rows []model.VideoStatsRow
	if err := r.aggregate(ctx).Where("v.id = ?", videoID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, entity.ErrVideoNotFound
	}
	stats := ToVideoStats(&rows[0])
	return &stats, nil
}

func (r *statsRepository) CountUniqueViewers(ctx context.Context, teacherID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("video_views AS vv").
		Joins("JOIN videos v ON v.id = vv.video_id").
		Where("v.teacher_id = ?", teacherID).
		Distinct("vv.user_id").
		Count(&count).Error
	return count, err
}
