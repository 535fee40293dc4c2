package usecase

import (
	"context"
	"fmt"
	"time"

	"learnflix/pkg/logger"
	"learnflix/services/notification/internal/entity"
	"learnflix/services/notification/internal/repo/persistent"

	"github.com/google/uuid"
)

const taskTimeout = 10 * time.Second

// QueueInspector is satisfied by *queue.Client.
type QueueInspector interface {
	GetQueueLength() (int, error)
}

type NotificationUseCase interface {
	HandleTask(task map[string]interface{}) error
	GetNotifications(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error)
	ClearNotifications(ctx context.Context, userID string) error
	QueueLength() (int, error)
}

type notificationUseCase struct {
	notificationRepo persistent.NotificationRepository
	store            persistent.NotificationStore
	queue            QueueInspector
	logger           *logger.Logger
	now              func() time.Time
}

func NewNotificationUseCase(
	notificationRepo persistent.NotificationRepository,
	store persistent.NotificationStore,
	queue QueueInspector,
	logger *logger.Logger,
) NotificationUseCase {
	return &notificationUseCase{
		notificationRepo: notificationRepo,
		store:            store,
		queue:            queue,
		logger:           logger,
		now:              time.Now,
	}
}

// HandleTask routes a queue task by its type. Malformed tasks return entity.ErrInvalidTask.
func (uc *notificationUseCase) HandleTask(task map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	taskType, _ := task["type"].(string)
	userID, _ := task["user_id"].(string)
	if userID == "" {
		uc.logger.Error("[NOTIFICATION HANDLER] task without user_id: %+v", task)
		return fmt.Errorf("%w: missing user_id", entity.ErrInvalidTask)
	}

	uc.logger.Info("[NOTIFICATION HANDLER] processing %s for user %s", taskType, userID)

	switch taskType {
	case entity.TypeSubscriptionActivated:
		return uc.handleSubscriptionActivated(ctx, userID, task)
	case entity.TypeViewLimitReached:
		return uc.handleViewLimitReached(ctx, userID, task)
	case entity.TypeAccountRestored:
		return uc.push(ctx, &entity.Notification{
			UserID:  userID,
			Title:   "Account restored",
			Message: "Your account has been restored. Welcome back!",
			Type:    entity.TypeAccountRestored,
		})
	case entity.TypeMessageReceived:
		return uc.handleMessageReceived(ctx, userID, task)
	default:
		uc.logger.Error("[NOTIFICATION HANDLER] unknown notification type %q", taskType)
		return fmt.Errorf("%w: unknown type %q", entity.ErrInvalidTask, taskType)
	}
}

func (uc *notificationUseCase) handleSubscriptionActivated(ctx context.Context, userID string, task map[string]interface{}) error {
	message := "Premium is active. Enjoy unlimited lessons and questions."
	data := map[string]interface{}{}
	if expiresAt, ok := task["expires_at"].(string); ok && expiresAt != "" {
		data["expires_at"] = expiresAt
		if t, err := time.Parse(time.RFC3339, expiresAt); err == nil {
			message = fmt.Sprintf("Premium is active until %s. Enjoy unlimited lessons and questions.", t.Format("January 2, 2006"))
		}
	}

	title := "Welcome to Premium!"
	if username, err := uc.notificationRepo.GetUsername(ctx, userID); err == nil && username != "" {
		title = fmt.Sprintf("Welcome to Premium, %s!", username)
	}

	return uc.push(ctx, &entity.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    entity.TypeSubscriptionActivated,
		Data:    data,
	})
}

// handleViewLimitReached notifies once per (user, video).
func (uc *notificationUseCase) handleViewLimitReached(ctx context.Context, userID string, task map[string]interface{}) error {
	videoID, _ := task["video_id"].(string)
	if videoID == "" {
		return fmt.Errorf("%w: missing video_id", entity.ErrInvalidTask)
	}

	dedupeKey := fmt.Sprintf("notified:view_limit:%s:%s", userID, videoID)
	first, err := uc.store.MarkOnce(ctx, dedupeKey)
	if err != nil {
		return fmt.Errorf("failed to dedupe view limit notification: %w", err)
	}
	if !first {
		uc.logger.Info("[NOTIFICATION HANDLER] view limit for user %s video %s already notified", userID, videoID)
		return nil
	}

	title, err := uc.notificationRepo.GetVideoTitle(ctx, videoID)
	if err != nil {
		uc.logger.Warn("[NOTIFICATION HANDLER] failed to load title of video %s: %v", videoID, err)
		title = "this lesson"
	} else {
		title = fmt.Sprintf("%q", title)
	}

	data := map[string]interface{}{"video_id": videoID}
	if limit, ok := task["limit"]; ok {
		data["limit"] = limit
	}

	err = uc.push(ctx, &entity.Notification{
		UserID:  userID,
		Title:   "Free views used up",
		Message: fmt.Sprintf("You have used your free views of %s. Go premium to keep watching.", title),
		Type:    entity.TypeViewLimitReached,
		Data:    data,
	})
	if err != nil {
		// Let the redelivered task try again.
		if forgetErr := uc.store.Forget(ctx, dedupeKey); forgetErr != nil {
			uc.logger.Error("[NOTIFICATION HANDLER] failed to release %s: %v", dedupeKey, forgetErr)
		}
	}
	return err
}

func (uc *notificationUseCase) handleMessageReceived(ctx context.Context, userID string, task map[string]interface{}) error {
	messageID, _ := task["message_id"].(string)
	if messageID == "" {
		return fmt.Errorf("%w: missing message_id", entity.ErrInvalidTask)
	}
	subject, _ := task["title"].(string)

	sender := "someone"
	if senderID, _ := task["sender_id"].(string); senderID != "" {
		if username, err := uc.notificationRepo.GetUsername(ctx, senderID); err == nil && username != "" {
			sender = username
		}
	}

	return uc.push(ctx, &entity.Notification{
		UserID:  userID,
		Title:   fmt.Sprintf("New message from %s", sender),
		Message: subject,
		Type:    entity.TypeMessageReceived,
		Data:    map[string]interface{}{"message_id": messageID},
	})
}

func (uc *notificationUseCase) push(ctx context.Context, notification *entity.Notification) error {
	notification.ID = uuid.New().String()
	notification.CreatedAt = uc.now().UTC().Format(time.RFC3339)

	if err := uc.store.Push(ctx, notification); err != nil {
		uc.logger.Error("[NOTIFICATION HANDLER] failed to store %s for user %s: %v", notification.Type, notification.UserID, err)
		return err
	}

	uc.logger.Info("[NOTIFICATION HANDLER] stored %s for user %s", notification.Type, notification.UserID)
	return nil
}

func (uc *notificationUseCase) GetNotifications(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error) {
	return uc.store.List(ctx, userID, limit, offset)
}

func (uc *notificationUseCase) ClearNotifications(ctx context.Context, userID string) error {
	return uc.store.Clear(ctx, userID)
}

func (uc *notificationUseCase) QueueLength() (int, error) {
	if uc.queue == nil {
		return 0, fmt.Errorf("queue client is not available")
	}
	return uc.queue.GetQueueLength()
}
