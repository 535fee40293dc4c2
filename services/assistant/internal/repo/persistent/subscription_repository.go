package persistent

import (
	"context"
	"time"

	"learnflix/services/assistant/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	HasActiveSubscription(ctx context.Context, userID string, at time.Time) (bool, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// HasActiveSubscription uses the playback predicate: is_active AND expires_at >= at.
func (r *subscriptionRepository) HasActiveSubscription(ctx context.Context, userID string, at time.Time) (bool, error) {
	active := r.db.WithContext(ctx).
		Model(&model.SubscriptionModel{}).
		Select("1").
		Where("user_id = ? AND is_active = ? AND expires_at >= ?", userID, true, at)

	var exists bool
	if err := r.db.WithContext(ctx).Raw("SELECT EXISTS (?)", active).Scan(&exists).Error; err != nil {
		return false, err
	}
	return exists, nil
}
