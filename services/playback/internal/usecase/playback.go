package usecase

import (
	"context"
	"errors"
	"time"

	"learnflix/pkg/logger"
	"learnflix/pkg/queue"
	"learnflix/services/playback/internal/entity"
	"learnflix/services/playback/internal/repo/persistent"

	"github.com/google/uuid"
)

// URLSigner issues time-limited object URLs; *s3.Client satisfies it.
type URLSigner interface {
	PresignGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// NotificationPublisher is satisfied by *queue.Client.
type NotificationPublisher interface {
	PublishNotificationTask(task map[string]interface{}) error
}

// PlaybackUseCase is the only entry point clients use before opening a stream.
// Every error it returns is an *entity.Denial.
type PlaybackUseCase interface {
	RequestPlayback(ctx context.Context, userID, videoID string, role entity.Role) (*entity.PlaybackGrant, error)
	GetEntitlement(ctx context.Context, userID string) (*entity.Entitlement, error)
}

type playbackUseCase struct {
	videoRepo        persistent.VideoRepository
	subscriptionRepo persistent.SubscriptionRepository
	evaluator        EntitlementEvaluator
	signer           URLSigner
	publisher        NotificationPublisher
	bucket           string
	urlTTL           time.Duration
	logger           *logger.Logger
	now              func() time.Time
}

// NewPlaybackUseCase accepts a nil publisher; limit notifications are then skipped.
func NewPlaybackUseCase(
	videoRepo persistent.VideoRepository,
	subscriptionRepo persistent.SubscriptionRepository,
	evaluator EntitlementEvaluator,
	signer URLSigner,
	publisher NotificationPublisher,
	bucket string,
	urlTTL time.Duration,
	logger *logger.Logger,
) PlaybackUseCase {
	return &playbackUseCase{
		videoRepo:        videoRepo,
		subscriptionRepo: subscriptionRepo,
		evaluator:        evaluator,
		signer:           signer,
		publisher:        publisher,
		bucket:           bucket,
		urlTTL:           urlTTL,
		logger:           logger,
		now:              time.Now,
	}
}

func (uc *playbackUseCase) RequestPlayback(ctx context.Context, userID, videoID string, role entity.Role) (*entity.PlaybackGrant, error) {
	uc.transition(entity.StateRequested, userID, videoID)

	if userID == "" {
		return nil, uc.deny(userID, videoID, entity.Deny(entity.ReasonUnauthenticated))
	}
	if _, err := uuid.Parse(videoID); err != nil {
		return nil, uc.deny(userID, videoID, entity.Deny(entity.ReasonNotFound))
	}

	video, err := uc.videoRepo.GetByID(ctx, videoID)
	if errors.Is(err, entity.ErrVideoNotFound) {
		return nil, uc.deny(userID, videoID, entity.Deny(entity.ReasonNotFound))
	}
	if err != nil {
		uc.logger.Error("[PLAYBACK] video lookup failed for %s: %v", videoID, err)
		return nil, uc.deny(userID, videoID, entity.DenyWithCause(entity.ReasonInternalError, err))
	}

	grant := &entity.PlaybackGrant{}
	if canBypassQuota(role, userID, video) {
		grant.Bypass = true
	} else {
		uc.transition(entity.StateEvaluating, userID, videoID)
		allowance, err := uc.evaluator.TryConsumeView(ctx, userID, videoID)
		if err != nil {
			denial := entity.AsDenial(err)
			if denial.Reason == entity.ReasonViewLimitReached {
				uc.publishLimitReached(userID, videoID, denial)
			}
			return nil, uc.deny(userID, videoID, denial)
		}

		viewCount := allowance.ViewCount
		grant.ViewCount = &viewCount
		if !allowance.Premium {
			limit := uc.evaluator.FreeViewLimit()
			grant.Limit = &limit
		}
	}
	uc.transition(entity.StateAllowed, userID, videoID)

	// A caller that gave up while we were evaluating does not get a URL.
	if err := ctx.Err(); err != nil {
		return nil, uc.deny(userID, videoID, entity.DenyWithCause(entity.ReasonInternalError, err))
	}

	key := NormalizeObjectKey(video.VideoURL, uc.bucket)
	issuedAt := uc.now()
	url, err := uc.signer.PresignGetURL(ctx, key, uc.urlTTL)
	if err != nil {
		uc.logger.Error("[PLAYBACK] presign failed for video %s key %s: %v", videoID, key, err)
		return nil, uc.deny(userID, videoID, entity.DenyWithCause(entity.ReasonInternalError, err))
	}

	grant.URL = url
	grant.ExpiresAt = issuedAt.Add(uc.urlTTL).UTC()
	uc.transition(entity.StateURLIssued, userID, videoID)
	return grant, nil
}

func (uc *playbackUseCase) GetEntitlement(ctx context.Context, userID string) (*entity.Entitlement, error) {
	if userID == "" {
		return nil, entity.Deny(entity.ReasonUnauthenticated)
	}

	sub, err := uc.subscriptionRepo.LatestActive(ctx, userID, uc.now())
	if err != nil {
		uc.logger.Error("[PLAYBACK] entitlement lookup failed for %s: %v", userID, err)
		return nil, entity.DenyWithCause(entity.ReasonInternalError, err)
	}

	entitlement := &entity.Entitlement{FreeViewLimit: uc.evaluator.FreeViewLimit()}
	if sub != nil {
		expiresAt := sub.ExpiresAt
		entitlement.Premium = true
		entitlement.ExpiresAt = &expiresAt
	}
	return entitlement, nil
}

func canBypassQuota(role entity.Role, userID string, video *entity.Video) bool {
	switch role {
	case entity.RoleAdmin:
		return true
	case entity.RoleTeacher:
		return video.TeacherID == userID
	}
	return false
}

func (uc *playbackUseCase) transition(state entity.PlaybackState, userID, videoID string) {
	uc.logger.Info("[PLAYBACK] %s user=%s video=%s", state, userID, videoID)
}

func (uc *playbackUseCase) deny(userID, videoID string, denial *entity.Denial) *entity.Denial {
	uc.logger.Info("[PLAYBACK] %s user=%s video=%s reason=%s", entity.StateDenied, userID, videoID, denial.Reason)
	return denial
}

func (uc *playbackUseCase) publishLimitReached(userID, videoID string, denial *entity.Denial) {
	if uc.publisher == nil {
		return
	}

	task := map[string]interface{}{
		"type":     queue.TaskViewLimitReached,
		"user_id":  userID,
		"video_id": videoID,
		"priority": 2,
	}
	if denial.Limit != nil {
		task["limit"] = *denial.Limit
	}

	go func() {
		if err := uc.publisher.PublishNotificationTask(task); err != nil {
			uc.logger.Error("[PLAYBACK] failed to publish view limit notification for user %s: %v", userID, err)
		}
	}()
}
