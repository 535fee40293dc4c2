package usecase

import (
	"context"
	"fmt"

	"learnflix/pkg/logger"
	"learnflix/pkg/models"
	"learnflix/services/video/internal/entity"
	"learnflix/services/video/internal/repo/persistent"

	"github.com/google/uuid"
)

type StatsUseCase interface {
	GetTeacherStats(ctx context.Context, teacherID string) (*entity.TeacherStats, error)
	GetVideoStats(ctx context.Context, videoID, userID, role string) (*entity.VideoStats, error)
}

type statsUseCase struct {
	videoRepo persistent.VideoRepository
	statsRepo persistent.StatsRepository
	logger    *logger.Logger
}

func NewStatsUseCase(videoRepo persistent.VideoRepository, statsRepo persistent.StatsRepository, logger *logger.Logger) StatsUseCase {
	return &statsUseCase{
		videoRepo: videoRepo,
		statsRepo: statsRepo,
		logger:    logger,
	}
}

func (uc *statsUseCase) GetTeacherStats(ctx context.Context, teacherID string) (*entity.TeacherStats, error) {
	videos, err := uc.statsRepo.ListVideoStats(ctx, teacherID)
	if err != nil {
		uc.logger.Error("[STATS] failed to aggregate videos of %s: %v", teacherID, err)
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	unique, err := uc.statsRepo.CountUniqueViewers(ctx, teacherID)
	if err != nil {
		uc.logger.Error("[STATS] failed to count viewers of %s: %v", teacherID, err)
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	stats := &entity.TeacherStats{
		TotalVideos:   len(videos),
		UniqueViewers: unique,
		Videos:        videos,
	}
	for _, v := range videos {
		stats.TotalViews += v.TotalViews
	}
	return stats, nil
}

// GetVideoStats is open to the video's teacher and to admins.
func (uc *statsUseCase) GetVideoStats(ctx context.Context, videoID, userID, role string) (*entity.VideoStats, error) {
	if _, err := uuid.Parse(videoID); err != nil {
		return nil, entity.ErrVideoNotFound
	}
	video, err := uc.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.TeacherID != userID && models.UserRole(role) != models.RoleAdmin {
		return nil, entity.ErrStatsForbidden
	}

	return uc.statsRepo.GetVideoStats(ctx, videoID)
}
