package usecase

import (
	"context"
	"errors"
	"time"

	"learnflix/pkg/logger"
	"learnflix/services/playback/internal/entity"
	"learnflix/services/playback/internal/repo/persistent"

	"github.com/google/uuid"
)

// FreeViewLimit is how many times a non-premium user may watch one video. It is lifetime
// per (user, video) and never resets. Everything that displays it echoes the evaluator.
const FreeViewLimit = 2

// EntitlementEvaluator decides whether a watch may happen and records it when it does.
// Every error it returns is an *entity.Denial.
type EntitlementEvaluator interface {
	TryConsumeView(ctx context.Context, userID, videoID string) (*entity.ViewAllowance, error)
	FreeViewLimit() int
}

type entitlementEvaluator struct {
	banRepo          persistent.BanRepository
	subscriptionRepo persistent.SubscriptionRepository
	viewRepo         persistent.ViewRepository
	timeout          time.Duration
	logger           *logger.Logger
	now              func() time.Time
}

func NewEntitlementEvaluator(
	banRepo persistent.BanRepository,
	subscriptionRepo persistent.SubscriptionRepository,
	viewRepo persistent.ViewRepository,
	timeout time.Duration,
	logger *logger.Logger,
) EntitlementEvaluator {
	return &entitlementEvaluator{
		banRepo:          banRepo,
		subscriptionRepo: subscriptionRepo,
		viewRepo:         viewRepo,
		timeout:          timeout,
		logger:           logger,
		now:              time.Now,
	}
}

func (e *entitlementEvaluator) FreeViewLimit() int {
	return FreeViewLimit
}

func (e *entitlementEvaluator) TryConsumeView(ctx context.Context, userID, videoID string) (*entity.ViewAllowance, error) {
	if userID == "" {
		return nil, entity.Deny(entity.ReasonUnauthenticated)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, entity.Deny(entity.ReasonUnauthenticated)
	}
	if _, err := uuid.Parse(videoID); err != nil {
		return nil, entity.Deny(entity.ReasonNotFound)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	banned, err := e.banRepo.IsBanned(ctx, userID)
	if err != nil {
		return nil, e.internal("ban check", userID, videoID, err)
	}
	if banned {
		e.logger.Warn("[ENTITLEMENT] banned user %s reached the evaluator for video %s", userID, videoID)
		return nil, entity.Deny(entity.ReasonUnauthenticated)
	}

	premium, err := e.subscriptionRepo.HasActiveSubscription(ctx, userID, e.now())
	if err != nil {
		return nil, e.internal("subscription check", userID, videoID, err)
	}

	result, err := e.viewRepo.ConsumeView(ctx, userID, videoID, FreeViewLimit, premium)
	if err != nil {
		if errors.Is(err, entity.ErrVideoNotFound) {
			return nil, entity.Deny(entity.ReasonNotFound)
		}
		if errors.Is(err, entity.ErrUserNotFound) {
			e.logger.Warn("[ENTITLEMENT] token for deleted user %s reached the evaluator", userID)
			return nil, entity.Deny(entity.ReasonUnauthenticated)
		}
		return nil, e.internal("consume view", userID, videoID, err)
	}

	switch result.Outcome {
	case entity.OutcomeCreated, entity.OutcomeIncremented:
		return &entity.ViewAllowance{ViewCount: result.Count, Premium: premium}, nil
	case entity.OutcomeRejected:
		return nil, entity.QuotaExceeded(result.Count, FreeViewLimit)
	default:
		return nil, e.internal("consume view", userID, videoID, errors.New("unknown outcome "+string(result.Outcome)))
	}
}

func (e *entitlementEvaluator) internal(step, userID, videoID string, err error) *entity.Denial {
	e.logger.Error("[ENTITLEMENT] %s failed for user=%s video=%s: %v", step, userID, videoID, err)
	return entity.DenyWithCause(entity.ReasonInternalError, err)
}
