package persistent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learnflix/services/notification/internal/entity"

	"github.com/redis/go-redis/v9"
)

const (
	MaxStoredNotifications = 100
	notificationTTL        = 30 * 24 * time.Hour
)

func NotificationsKey(userID string) string {
	return "notifications:" + userID
}

type NotificationStore interface {
	Push(ctx context.Context, notification *entity.Notification) error
	List(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error)
	Clear(ctx context.Context, userID string) error
	// MarkOnce reports whether key was newly set.
	MarkOnce(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type redisNotificationStore struct {
	client *redis.Client
}

func NewNotificationStore(client *redis.Client) NotificationStore {
	return &redisNotificationStore{client: client}
}

func (s *redisNotificationStore) Push(ctx context.Context, notification *entity.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := NotificationsKey(notification.UserID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, MaxStoredNotifications-1)
	pipe.Expire(ctx, key, notificationTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func (s *redisNotificationStore) List(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error) {
	key := NotificationsKey(userID)

	pipe := s.client.Pipeline()
	rangeCmd := pipe.LRange(ctx, key, int64(offset), int64(offset+limit-1))
	lenCmd := pipe.LLen(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, 0, fmt.Errorf("failed to get notifications: %w", err)
	}

	raw := rangeCmd.Val()
	notifications := make([]entity.Notification, 0, len(raw))
	for _, item := range raw {
		var notification entity.Notification
		if err := json.Unmarshal([]byte(item), &notification); err == nil {
			notifications = append(notifications, notification)
		}
	}

	return notifications, lenCmd.Val(), nil
}

func (s *redisNotificationStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, NotificationsKey(userID)).Err()
}

func (s *redisNotificationStore) MarkOnce(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, key, "1", notificationTTL).Result()
}

func (s *redisNotificationStore) Forget(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
