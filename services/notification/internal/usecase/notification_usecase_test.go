package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"learnflix/pkg/logger"
	"learnflix/services/notification/internal/entity"
	"learnflix/services/notification/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) GetUsername(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockNotificationRepository) GetVideoTitle(ctx context.Context, videoID string) (string, error) {
	args := m.Called(ctx, videoID)
	return args.String(0), args.Error(1)
}

var _ persistent.NotificationRepository = (*MockNotificationRepository)(nil)

// memoryStore mimics the Redis list semantics: newest first, capped.
type memoryStore struct {
	mu      sync.Mutex
	lists   map[string][]entity.Notification
	marks   map[string]bool
	pushErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{lists: map[string][]entity.Notification{}, marks: map[string]bool{}}
}

func (s *memoryStore) Push(ctx context.Context, n *entity.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushErr != nil {
		return s.pushErr
	}
	list := append([]entity.Notification{*n}, s.lists[n.UserID]...)
	if len(list) > persistent.MaxStoredNotifications {
		list = list[:persistent.MaxStoredNotifications]
	}
	s.lists[n.UserID] = list
	return nil
}

func (s *memoryStore) List(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[userID]
	if offset >= len(list) {
		return []entity.Notification{}, int64(len(list)), nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], int64(len(list)), nil
}

func (s *memoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, userID)
	return nil
}

func (s *memoryStore) MarkOnce(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.marks[key] {
		return false, nil
	}
	s.marks[key] = true
	return true, nil
}

func (s *memoryStore) Forget(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.marks, key)
	return nil
}

var _ persistent.NotificationStore = (*memoryStore)(nil)

type stubQueue struct {
	length int
}

func (q stubQueue) GetQueueLength() (int, error) {
	return q.length, nil
}

func newTestUseCase(repo *MockNotificationRepository, store *memoryStore) *notificationUseCase {
	uc := NewNotificationUseCase(repo, store, stubQueue{length: 3}, logger.New()).(*notificationUseCase)
	uc.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return uc
}

func TestHandleTask_SubscriptionActivated(t *testing.T) {
	store := newMemoryStore()
	repo := new(MockNotificationRepository)
	uc := newTestUseCase(repo, store)

	repo.On("GetUsername", mock.Anything, "user-1").Return("alice", nil)

	err := uc.HandleTask(map[string]interface{}{
		"type":       "subscription_activated",
		"user_id":    "user-1",
		"expires_at": "2026-04-14T12:00:00Z",
	})
	require.NoError(t, err)

	list, total, err := uc.GetNotifications(context.Background(), "user-1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, entity.TypeSubscriptionActivated, list[0].Type)
	assert.Equal(t, "Welcome to Premium, alice!", list[0].Title)
	assert.Contains(t, list[0].Message, "April 14, 2026")
	assert.Equal(t, "2026-03-14T12:00:00Z", list[0].CreatedAt)
	assert.NotEmpty(t, list[0].ID)
}

func TestHandleTask_ViewLimitReachedIsDeduplicated(t *testing.T) {
	store := newMemoryStore()
	repo := new(MockNotificationRepository)
	uc := newTestUseCase(repo, store)

	repo.On("GetVideoTitle", mock.Anything, "video-1").Return("Cell Biology", nil)

	task := map[string]interface{}{
		"type":     "view_limit_reached",
		"user_id":  "user-1",
		"video_id": "video-1",
		"limit":    float64(2),
	}
	require.NoError(t, uc.HandleTask(task))
	require.NoError(t, uc.HandleTask(task))

	list, total, err := uc.GetNotifications(context.Background(), "user-1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Contains(t, list[0].Message, `"Cell Biology"`)
	assert.Equal(t, "video-1", list[0].Data["video_id"])
	repo.AssertNumberOfCalls(t, "GetVideoTitle", 1)
}

func TestHandleTask_ViewLimitReleasedWhenStoreFails(t *testing.T) {
	store := newMemoryStore()
	repo := new(MockNotificationRepository)
	uc := newTestUseCase(repo, store)
	repo.On("GetVideoTitle", mock.Anything, "video-1").Return("", errors.New("db down"))

	task := map[string]interface{}{"type": "view_limit_reached", "user_id": "user-1", "video_id": "video-1"}

	store.pushErr = errors.New("redis down")
	assert.Error(t, uc.HandleTask(task))

	store.pushErr = nil
	require.NoError(t, uc.HandleTask(task))

	list, _, err := uc.GetNotifications(context.Background(), "user-1", 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "this lesson")
}

func TestHandleTask_AccountRestored(t *testing.T) {
	store := newMemoryStore()
	uc := newTestUseCase(new(MockNotificationRepository), store)

	require.NoError(t, uc.HandleTask(map[string]interface{}{"type": "account_restored", "user_id": "user-1"}))

	list, _, _ := uc.GetNotifications(context.Background(), "user-1", 20, 0)
	require.Len(t, list, 1)
	assert.Equal(t, "Account restored", list[0].Title)
}

func TestHandleTask_MessageReceived(t *testing.T) {
	store := newMemoryStore()
	repo := new(MockNotificationRepository)
	uc := newTestUseCase(repo, store)

	repo.On("GetUsername", mock.Anything, "teacher-1").Return("ms_frizzle", nil)

	err := uc.HandleTask(map[string]interface{}{
		"type":       entity.TypeMessageReceived,
		"user_id":    "user-1",
		"sender_id":  "teacher-1",
		"message_id": "msg-1",
		"title":      "Homework for Friday",
	})
	require.NoError(t, err)

	list, _, _ := store.List(context.Background(), "user-1", 10, 0)
	require.Len(t, list, 1)
	assert.Equal(t, "New message from ms_frizzle", list[0].Title)
	assert.Equal(t, "Homework for Friday", list[0].Message)
	assert.Equal(t, "msg-1", list[0].Data["message_id"])

	err = uc.HandleTask(map[string]interface{}{"type": entity.TypeMessageReceived, "user_id": "user-1"})
	assert.ErrorIs(t, err, entity.ErrInvalidTask)
}

func TestHandleTask_Invalid(t *testing.T) {
	uc := newTestUseCase(new(MockNotificationRepository), newMemoryStore())

	assert.ErrorIs(t, uc.HandleTask(map[string]interface{}{"type": "account_restored"}), entity.ErrInvalidTask)
	assert.ErrorIs(t, uc.HandleTask(map[string]interface{}{"type": "new_post", "user_id": "u"}), entity.ErrInvalidTask)
	assert.ErrorIs(t, uc.HandleTask(map[string]interface{}{"type": "view_limit_reached", "user_id": "u"}), entity.ErrInvalidTask)
}

func TestNotificationsAreCappedNewestFirst(t *testing.T) {
	store := newMemoryStore()
	uc := newTestUseCase(new(MockNotificationRepository), store)

	for i := 0; i < persistent.MaxStoredNotifications+5; i++ {
		require.NoError(t, uc.HandleTask(map[string]interface{}{"type": "account_restored", "user_id": "user-1"}))
	}

	page, total, err := uc.GetNotifications(context.Background(), "user-1", 10, 95)
	require.NoError(t, err)
	assert.Equal(t, int64(persistent.MaxStoredNotifications), total)
	assert.Len(t, page, 5)

	require.NoError(t, uc.ClearNotifications(context.Background(), "user-1"))
	_, total, _ = uc.GetNotifications(context.Background(), "user-1", 10, 0)
	assert.Zero(t, total)
}

func TestQueueLength(t *testing.T) {
	uc := newTestUseCase(new(MockNotificationRepository), newMemoryStore())
	n, err := uc.QueueLength()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	noQueue := NewNotificationUseCase(new(MockNotificationRepository), newMemoryStore(), nil, logger.New())
	_, err = noQueue.QueueLength()
	assert.Error(t, err)
}
