package persistent

import (
	"context"
	"errors"

	"learnflix/services/video/internal/entity"
	"learnflix/services/video/internal/model"

	"gorm.io/gorm"
)

type VideoRepository interface {
	Create(ctx context.Context, video *entity.Video) error
	GetByID(ctx context.Context, id string) (*entity.Video, error)
	List(ctx context.Context, category string, limit, offset int) ([]*entity.Video, error)
	ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]*entity.Video, error)
	Delete(ctx context.Context, id string) error
	ListViews(ctx context.Context, userID string) ([]entity.ViewRecord, error)
}

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *entity.Video) error {
	videoModel := ToVideoModel(video)
	if err := r.db.WithContext(ctx).Create(videoModel).Error; err != nil {
		return err
	}
	*video = *ToVideoEntity(videoModel)
	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	var videoModel model.VideoModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&videoModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrVideoNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToVideoEntity(&videoModel), nil
}

func (r *videoRepository) List(ctx context.Context, category string, limit, offset int) ([]*entity.Video, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	return r.find(query)
}

func (r *videoRepository) ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]*entity.Video, error) {
	query := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	return r.find(query)
}

func (r *videoRepository) find(query *gorm.DB) ([]*entity.Video, error) {
	var videoModels []model.VideoModel
	if err := query.Find(&videoModels).Error; err != nil {
		return nil, err
	}

	videos := make([]*entity.Video, len(videoModels))
	for i := range videoModels {
		videos[i] = ToVideoEntity(&videoModels[i])
	}
	return videos, nil
}

// Delete relies on ON DELETE CASCADE to remove the video's view counters.
func (r *videoRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.VideoModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrVideoNotFound
	}
	return nil
}

func (r *videoRepository) ListViews(ctx context.Context, userID string) ([]entity.ViewRecord, error) {
	var viewModels []model.ViewModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_viewed_at DESC").
		Find(&viewModels).Error
	if err != nil {
		return nil, err
	}

	records := make([]entity.ViewRecord, len(viewModels))
	for i := range viewModels {
		records[i] = ToViewRecord(&viewModels[i])
	}
	return records, nil
}
