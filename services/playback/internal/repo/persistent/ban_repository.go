package persistent

import (
	"context"

	"learnflix/services/playback/internal/model"

	"gorm.io/gorm"
)

type BanRepository interface {
	IsBanned(ctx context.Context, userID string) (bool, error)
}

type banRepository struct {
	db *gorm.DB
}

func NewBanRepository(db *gorm.DB) BanRepository {
	return &banRepository{db: db}
}

func (r *banRepository) IsBanned(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.BannedUserModel{}).
		Where("user_id = ?", userID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
