package persistent

import (
	"context"
	"errors"
	"time"

	"learnflix/services/playback/internal/entity"
	"learnflix/services/playback/internal/model"

	"gorm.io/gorm"
)

// SubscriptionRepository evaluates the premium predicate:
// is_active AND expires_at >= at, over every row the user has.
type SubscriptionRepository interface {
	HasActiveSubscription(ctx context.Context, userID string, at time.Time) (bool, error)
	LatestActive(ctx context.Context, userID string, at time.Time) (*entity.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) active(ctx context.Context, userID string, at time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.SubscriptionModel{}).
		Where("user_id = ? AND is_active = ? AND expires_at >= ?", userID, true, at)
}

func (r *subscriptionRepository) HasActiveSubscription(ctx context.Context, userID string, at time.Time) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw("SELECT EXISTS (?)", r.active(ctx, userID, at).Select("1")).
		Scan(&exists).Error
	if err != nil {
		return false, err
	}
	return exists, nil
}

// LatestActive returns the active row that expires last, or nil when the user is not premium.
func (r *subscriptionRepository) LatestActive(ctx context.Context, userID string, at time.Time) (*entity.Subscription, error) {
	var sub model.SubscriptionModel
	err := r.active(ctx, userID, at).Order("expires_at DESC").First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ToSubscriptionEntity(&sub), nil
}
