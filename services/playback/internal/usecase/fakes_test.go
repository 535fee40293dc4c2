package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"learnflix/services/playback/internal/entity"
)

// memoryViewStore mirrors the conditional upsert of consume_view under a mutex.
type memoryViewStore struct {
	mu     sync.Mutex
	counts map[string]int
	videos map[string]bool
	err    error
	calls  int
}

func newMemoryViewStore(videoIDs ...string) *memoryViewStore {
	s := &memoryViewStore{counts: make(map[string]int), videos: make(map[string]bool)}
	for _, id := range videoIDs {
		s.videos[id] = true
	}
	return s
}

func (s *memoryViewStore) ConsumeView(ctx context.Context, userID, videoID string, limit int, unlimited bool) (*entity.ConsumeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.err != nil {
		return nil, s.err
	}
	if !s.videos[videoID] {
		return nil, entity.ErrVideoNotFound
	}

	key := userID + "/" + videoID
	current, exists := s.counts[key]
	if !exists {
		s.counts[key] = 1
		return &entity.ConsumeResult{Outcome: entity.OutcomeCreated, Count: 1}, nil
	}
	if !unlimited && current >= limit {
		return &entity.ConsumeResult{Outcome: entity.OutcomeRejected, Count: current}, nil
	}
	s.counts[key] = current + 1
	return &entity.ConsumeResult{Outcome: entity.OutcomeIncremented, Count: current + 1}, nil
}

func (s *memoryViewStore) count(userID, videoID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[userID+"/"+videoID]
}

type memorySubscriptions struct {
	rows []entity.Subscription
	err  error
}

func (m *memorySubscriptions) HasActiveSubscription(ctx context.Context, userID string, at time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, row := range m.rows {
		if row.UserID == userID && row.ActiveAt(at) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memorySubscriptions) LatestActive(ctx context.Context, userID string, at time.Time) (*entity.Subscription, error) {
	if m.err != nil {
		return nil, m.err
	}
	var latest *entity.Subscription
	for i := range m.rows {
		row := m.rows[i]
		if row.UserID != userID || !row.ActiveAt(at) {
			continue
		}
		if latest == nil || row.ExpiresAt.After(latest.ExpiresAt) {
			latest = &row
		}
	}
	return latest, nil
}

type memoryBans struct {
	banned map[string]bool
	err    error
}

func (m *memoryBans) IsBanned(ctx context.Context, userID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.banned[userID], nil
}

type memoryVideos map[string]*entity.Video

func (m memoryVideos) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	video, ok := m[id]
	if !ok {
		return nil, entity.ErrVideoNotFound
	}
	return video, nil
}

type recordingSigner struct {
	mu     sync.Mutex
	keys   []string
	err    error
	onSign func()
}

func (s *recordingSigner) PresignGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	if s.onSign != nil {
		s.onSign()
	}
	if s.err != nil {
		return "", s.err
	}
	return "https://storage.test/videos/" + key + "?X-Amz-Expires=" + ttl.String(), nil
}

func (s *recordingSigner) signedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

type recordingPublisher struct {
	tasks chan map[string]interface{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{tasks: make(chan map[string]interface{}, 8)}
}

func (p *recordingPublisher) PublishNotificationTask(task map[string]interface{}) error {
	p.tasks <- task
	return nil
}

// blockingViewStore stalls until the caller's context ends.
type blockingViewStore struct{}

func (blockingViewStore) ConsumeView(ctx context.Context, userID, videoID string, limit int, unlimited bool) (*entity.ConsumeResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

var errStoreDown = errors.New("connection refused")
