package usecase

import (
	"context"
	"strings"

	"learnflix/pkg/logger"
	"learnflix/pkg/models"
	"learnflix/pkg/queue"
	"learnflix/services/moderation/internal/entity"
	"learnflix/services/moderation/internal/repo/persistent"

	"github.com/google/uuid"
)

// ObjectStorage is satisfied by *s3.Client.
type ObjectStorage interface {
	Bucket() string
	DeleteFile(ctx context.Context, key string) error
}

type NotificationPublisher interface {
	PublishNotificationTask(task map[string]interface{}) error
}

type ModerationUseCase interface {
	BanUser(ctx context.Context, adminID, userID, reason string) (*entity.Ban, error)
	UnbanUser(ctx context.Context, adminID, userID string) error
	ListBans(ctx context.Context) ([]*entity.Ban, error)
	DeleteVideo(ctx context.Context, adminID, videoID string) error
	ResyncBans(ctx context.Context) (int, error)
}

type moderationUseCase struct {
	repo      persistent.ModerationRepository
	cache     persistent.ModerationCache
	storage   ObjectStorage
	publisher NotificationPublisher
	logger    *logger.Logger
}

// NewModerationUseCase accepts a nil publisher.
func NewModerationUseCase(
	repo persistent.ModerationRepository,
	cache persistent.ModerationCache,
	storage ObjectStorage,
	publisher NotificationPublisher,
	logger *logger.Logger,
) ModerationUseCase {
	return &moderationUseCase{
		repo:      repo,
		cache:     cache,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

func (uc *moderationUseCase) BanUser(ctx context.Context, adminID, userID, reason string) (*entity.Ban, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, entity.ErrUserNotFound
	}
	if userID == adminID {
		return nil, entity.ErrCannotBanSelf
	}

	role, err := uc.repo.GetUserRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if models.UserRole(role) == models.RoleAdmin {
		return nil, entity.ErrCannotBanAdmin
	}

	ban := &entity.Ban{
		UserID: userID,
		Reason: strings.TrimSpace(reason),
	}
	if adminID != "" {
		ban.BannedBy = &adminID
	}
	if err := uc.repo.CreateBan(ctx, ban); err != nil {
		return nil, err
	}

	// The row is authoritative; a missed mirror is repaired by the next resync.
	if err := uc.cache.MirrorBan(ctx, userID); err != nil {
		uc.logger.Error("[MODERATION] failed to mirror ban for %s: %v", userID, err)
	}

	uc.logger.Info("[MODERATION] admin %s banned user %s", adminID, userID)
	return ban, nil
}

func (uc *moderationUseCase) UnbanUser(ctx context.Context, adminID, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return entity.ErrBanNotFound
	}
	if err := uc.repo.DeleteBan(ctx, userID); err != nil {
		return err
	}

	if err := uc.cache.ClearBan(ctx, userID); err != nil {
		uc.logger.Error("[MODERATION] failed to clear ban mirror for %s: %v", userID, err)
	}

	uc.logger.Info("[MODERATION] admin %s restored user %s", adminID, userID)
	uc.publishRestored(userID)
	return nil
}

func (uc *moderationUseCase) ListBans(ctx context.Context) ([]*entity.Ban, error) {
	return uc.repo.ListBans(ctx)
}

func (uc *moderationUseCase) DeleteVideo(ctx context.Context, adminID, videoID string) error {
	if _, err := uuid.Parse(videoID); err != nil {
		return entity.ErrVideoNotFound
	}
	video, err := uc.repo.GetVideo(ctx, videoID)
	if err != nil {
		return err
	}

	for _, key := range []string{video.VideoURL, video.ThumbnailURL} {
		if key == "" {
			continue
		}
		key = strings.TrimPrefix(key, uc.storage.Bucket()+"/")
		if err := uc.storage.DeleteFile(ctx, key); err != nil {
			uc.logger.Error("[MODERATION] failed to delete object %s: %v", key, err)
		}
	}

	if err := uc.repo.DeleteVideo(ctx, videoID); err != nil {
		return err
	}

	if err := uc.cache.InvalidateVideo(ctx, videoID); err != nil {
		uc.logger.Error("[MODERATION] failed to invalidate cache for %s: %v", videoID, err)
	}

	uc.logger.Info("[MODERATION] admin %s deleted video %s of teacher %s", adminID, videoID, video.TeacherID)
	return nil
}

func (uc *moderationUseCase) ResyncBans(ctx context.Context) (int, error) {
	ids, err := uc.repo.ListBannedUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	if err := uc.cache.ResyncBans(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (uc *moderationUseCase) publishRestored(userID string) {
	if uc.publisher == nil {
		return
	}

	task := map[string]interface{}{
		"type":     queue.TaskAccountRestored,
		"user_id":  userID,
		"priority": 5,
	}

	go func() {
		if err := uc.publisher.PublishNotificationTask(task); err != nil {
			uc.logger.Error("[MODERATION] failed to publish restore notification for %s: %v", userID, err)
		}
	}()
}
