package persistent

import (
	"context"

	"learnflix/services/notification/internal/model"

	"gorm.io/gorm"
)

// NotificationRepository reads the names that go into notification text.
type NotificationRepository interface {
	GetUsername(ctx context.Context, userID string) (string, error)
	GetVideoTitle(ctx context.Context, videoID string) (string, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) GetUsername(ctx context.Context, userID string) (string, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Select("username").Where("id = ?", userID).First(&userModel).Error; err != nil {
		return "", err
	}
	return userModel.Username, nil
}

func (r *notificationRepository) GetVideoTitle(ctx context.Context, videoID string) (string, error) {
	var videoModel model.VideoModel
	if err := r.db.WithContext(ctx).Select("title").Where("id = ?", videoID).First(&videoModel).Error; err != nil {
		return "", err
	}
	return videoModel.Title, nil
}
