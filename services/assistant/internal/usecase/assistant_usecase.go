package usecase

import (
	"context"
	"strings"
	"time"

	"learnflix/pkg/logger"
	"learnflix/services/assistant/internal/entity"
	"learnflix/services/assistant/internal/repo/persistent"
)

const (
	maxMessages       = 50
	maxMessageLength  = 8000
	evaluationTimeout = 3 * time.Second
)

// ChatCompleter is satisfied by *webapi.ChatClient.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []entity.Message) (string, error)
}

type AssistantUseCase interface {
	Ask(ctx context.Context, userID string, messages []entity.Message) (*entity.Answer, error)
	GetUsage(ctx context.Context, userID string) (*entity.Usage, error)
}

type assistantUseCase struct {
	usageRepo        persistent.UsageRepository
	subscriptionRepo persistent.SubscriptionRepository
	chat             ChatCompleter
	logger           *logger.Logger
	now              func() time.Time
}

func NewAssistantUseCase(
	usageRepo persistent.UsageRepository,
	subscriptionRepo persistent.SubscriptionRepository,
	chat ChatCompleter,
	logger *logger.Logger,
) AssistantUseCase {
	return &assistantUseCase{
		usageRepo:        usageRepo,
		subscriptionRepo: subscriptionRepo,
		chat:             chat,
		logger:           logger,
		now:              time.Now,
	}
}

// Ask spends one question before contacting the gateway. The question stays spent
// when the gateway fails.
func (uc *assistantUseCase) Ask(ctx context.Context, userID string, messages []entity.Message) (*entity.Answer, error) {
	if err := validateMessages(messages); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	quotaCtx, cancel := context.WithTimeout(ctx, evaluationTimeout)
	premium, err := uc.subscriptionRepo.HasActiveSubscription(quotaCtx, userID, now)
	if err != nil {
		cancel()
		uc.logger.Error("[ASSISTANT] subscription check failed for %s: %v", userID, err)
		return nil, err
	}

	result, err := uc.usageRepo.ConsumeQuestion(quotaCtx, userID, now, entity.AIDailyQuestionLimit, premium)
	cancel()
	if err != nil {
		uc.logger.Error("[ASSISTANT] quota update failed for %s: %v", userID, err)
		return nil, err
	}
	if result.Outcome == entity.OutcomeRejected {
		uc.logger.Info("[ASSISTANT] user %s hit the daily limit (%d/%d)", userID, result.Count, entity.AIDailyQuestionLimit)
		return nil, &entity.QuotaError{Count: result.Count, Limit: entity.AIDailyQuestionLimit}
	}

	reply, err := uc.chat.Complete(ctx, messages)
	if err != nil {
		uc.logger.Error("[ASSISTANT] gateway call failed for %s: %v", userID, err)
		return nil, err
	}

	answer := &entity.Answer{Reply: reply, QuestionCount: result.Count}
	if !premium {
		limit := entity.AIDailyQuestionLimit
		answer.Limit = &limit
	}
	return answer, nil
}

func (uc *assistantUseCase) GetUsage(ctx context.Context, userID string) (*entity.Usage, error) {
	now := uc.now().UTC()
	premium, err := uc.subscriptionRepo.HasActiveSubscription(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	count, err := uc.usageRepo.CountForDay(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	usage := &entity.Usage{QuestionCount: count, Premium: premium}
	if !premium {
		limit := entity.AIDailyQuestionLimit
		usage.Limit = &limit
	}
	return usage, nil
}

func validateMessages(messages []entity.Message) error {
	if len(messages) == 0 || len(messages) > maxMessages {
		return entity.ErrInvalidMessages
	}
	for _, m := range messages {
		if m.Role != entity.RoleUser && m.Role != entity.RoleAssistant {
			return entity.ErrInvalidMessages
		}
		if strings.TrimSpace(m.Content) == "" || len(m.Content) > maxMessageLength {
			return entity.ErrInvalidMessages
		}
	}
	if messages[len(messages)-1].Role != entity.RoleUser {
		return entity.ErrInvalidMessages
	}
	return nil
}
