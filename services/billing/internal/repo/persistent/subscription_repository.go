package persistent

import (
	"context"
	"errors"
	"time"

	"learnflix/pkg/database"
	"learnflix/services/billing/internal/entity"
	"learnflix/services/billing/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	// CreateForOrder inserts sub unless a row for the same order already exists, in which case
	// that row is returned with created=false.
	CreateForOrder(ctx context.Context, sub *entity.Subscription) (*entity.Subscription, bool, error)
	GetByOrderID(ctx context.Context, orderID string) (*entity.Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Subscription, error)
	LatestActive(ctx context.Context, userID string, at time.Time) (*entity.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func toEntity(m *model.SubscriptionModel) *entity.Subscription {
	sub := &entity.Subscription{
		ID:        m.ID,
		UserID:    m.UserID,
		IsActive:  m.IsActive,
		StartedAt: m.StartedAt,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
	if m.OrderID != nil {
		sub.OrderID = *m.OrderID
	}
	return sub
}

func (r *subscriptionRepository) CreateForOrder(ctx context.Context, sub *entity.Subscription) (*entity.Subscription, bool, error) {
	orderID := sub.OrderID
	subModel := &model.SubscriptionModel{
		UserID:    sub.UserID,
		IsActive:  sub.IsActive,
		StartedAt: sub.StartedAt,
		ExpiresAt: sub.ExpiresAt,
		OrderID:   &orderID,
	}

	err := r.db.WithContext(ctx).Create(subModel).Error
	if database.IsUniqueViolation(err) {
		existing, getErr := r.GetByOrderID(ctx, orderID)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return toEntity(subModel), true, nil
}

// GetByOrderID returns nil, nil when no row carries orderID.
func (r *subscriptionRepository) GetByOrderID(ctx context.Context, orderID string) (*entity.Subscription, error) {
	var subModel model.SubscriptionModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&subModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toEntity(&subModel), nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Subscription, error) {
	var subModels []model.SubscriptionModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("started_at DESC").Find(&subModels).Error; err != nil {
		return nil, err
	}

	subs := make([]*entity.Subscription, len(subModels))
	for i := range subModels {
		subs[i] = toEntity(&subModels[i])
	}
	return subs, nil
}

func (r *subscriptionRepository) LatestActive(ctx context.Context, userID string, at time.Time) (*entity.Subscription, error) {
	var subModel model.SubscriptionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND expires_at >= ?", userID, true, at).
		Order("expires_at DESC").
		First(&subModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toEntity(&subModel), nil
}
