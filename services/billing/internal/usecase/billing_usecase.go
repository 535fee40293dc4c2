package usecase

import (
	"context"
	"fmt"
	"time"

	"learnflix/pkg/logger"
	"learnflix/pkg/queue"
	"learnflix/services/billing/internal/entity"
	"learnflix/services/billing/internal/repo/persistent"
)

const planDescription = "Learnflix Premium, 1 month"

// PaymentGateway is satisfied by *webapi.PayPalClient.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount, currency, description string) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (bool, error)
}

type NotificationPublisher interface {
	PublishNotificationTask(task map[string]interface{}) error
}

type BillingUseCase interface {
	CreateOrder(ctx context.Context, userID string) (*entity.Order, error)
	CaptureOrder(ctx context.Context, userID, orderID string) (*entity.Subscription, error)
	GetStatus(ctx context.Context, userID string) (*entity.Status, error)
	ListSubscriptions(ctx context.Context, userID string) ([]*entity.Subscription, error)
}

type Plan struct {
	Price    string
	Currency string
}

type billingUseCase struct {
	subscriptionRepo persistent.SubscriptionRepository
	orderRepo        persistent.OrderRepository
	gateway          PaymentGateway
	publisher        NotificationPublisher
	plan             Plan
	logger           *logger.Logger
	now              func() time.Time
}

// NewBillingUseCase accepts a nil publisher.
func NewBillingUseCase(
	subscriptionRepo persistent.SubscriptionRepository,
	orderRepo persistent.OrderRepository,
	gateway PaymentGateway,
	publisher NotificationPublisher,
	plan Plan,
	logger *logger.Logger,
) BillingUseCase {
	return &billingUseCase{
		subscriptionRepo: subscriptionRepo,
		orderRepo:        orderRepo,
		gateway:          gateway,
		publisher:        publisher,
		plan:             plan,
		logger:           logger,
		now:              time.Now,
	}
}

func (uc *billingUseCase) CreateOrder(ctx context.Context, userID string) (*entity.Order, error) {
	orderID, err := uc.gateway.CreateOrder(ctx, uc.plan.Price, uc.plan.Currency, planDescription)
	if err != nil {
		uc.logger.Error("[BILLING] create order failed for user %s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", entity.ErrPaymentGateway, err)
	}

	order := &entity.Order{ID: orderID, Amount: uc.plan.Price, Currency: uc.plan.Currency}
	if err := uc.orderRepo.Create(ctx, userID, order); err != nil {
		uc.logger.Error("[BILLING] failed to record order %s for user %s: %v", orderID, userID, err)
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	uc.logger.Info("[BILLING] created order %s for user %s (%s %s)", orderID, userID, uc.plan.Price, uc.plan.Currency)
	return order, nil
}

func (uc *billingUseCase) CaptureOrder(ctx context.Context, userID, orderID string) (*entity.Subscription, error) {
	existing, err := uc.subscriptionRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return uc.replay(existing, userID)
	}

	owner, err := uc.orderRepo.Owner(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		return nil, entity.ErrOrderNotFound
	}
	if owner != userID {
		uc.logger.Warn("[BILLING] user %s tried to capture order %s created by %s", userID, orderID, owner)
		return nil, entity.ErrOrderTaken
	}

	completed, err := uc.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		uc.logger.Error("[BILLING] capture failed for order %s: %v", orderID, err)
		return nil, fmt.Errorf("%w: %v", entity.ErrPaymentGateway, err)
	}
	if !completed {
		uc.logger.Warn("[BILLING] order %s not completed for user %s", orderID, userID)
		return nil, entity.ErrPaymentNotCompleted
	}

	startedAt := uc.now().UTC()
	sub, created, err := uc.subscriptionRepo.CreateForOrder(ctx, &entity.Subscription{
		UserID:    userID,
		IsActive:  true,
		StartedAt: startedAt,
		ExpiresAt: startedAt.AddDate(0, 1, 0),
		OrderID:   orderID,
	})
	if err != nil {
		uc.logger.Error("[BILLING] payment captured for order %s but subscription insert failed: %v", orderID, err)
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}
	if !created {
		return uc.replay(sub, userID)
	}

	uc.logger.Info("[BILLING] subscription %s active for user %s until %s", sub.ID, userID, sub.ExpiresAt.Format(time.RFC3339))
	uc.publishActivated(sub)
	return sub, nil
}

func (uc *billingUseCase) replay(sub *entity.Subscription, userID string) (*entity.Subscription, error) {
	if sub.UserID != userID {
		return nil, entity.ErrOrderTaken
	}
	return sub, nil
}

func (uc *billingUseCase) GetStatus(ctx context.Context, userID string) (*entity.Status, error) {
	sub, err := uc.subscriptionRepo.LatestActive(ctx, userID, uc.now())
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &entity.Status{}, nil
	}
	expiresAt := sub.ExpiresAt
	return &entity.Status{Premium: true, ExpiresAt: &expiresAt}, nil
}

func (uc *billingUseCase) ListSubscriptions(ctx context.Context, userID string) ([]*entity.Subscription, error) {
	return uc.subscriptionRepo.ListByUser(ctx, userID)
}

func (uc *billingUseCase) publishActivated(sub *entity.Subscription) {
	if uc.publisher == nil {
		return
	}

	task := map[string]interface{}{
		"type":       queue.TaskSubscriptionActivated,
		"user_id":    sub.UserID,
		"expires_at": sub.ExpiresAt.Format(time.RFC3339),
		"priority":   5,
	}

	go func() {
		if err := uc.publisher.PublishNotificationTask(task); err != nil {
			uc.logger.Error("[BILLING] failed to publish subscription notification for user %s: %v", sub.UserID, err)
		}
	}()
}
