package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"learnflix/pkg/logger"
	"learnflix/services/video/internal/entity"
	"learnflix/services/video/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) Create(ctx context.Context, video *entity.Video) error {
	args := m.Called(ctx, video)
	if args.Error(0) == nil {
		video.ID = "9d8c7b6a-5f4e-4d3c-b2a1-0f9e8d7c6b04"
	}
	return args.Error(0)
}

func (m *MockVideoRepository) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Video), args.Error(1)
}

func (m *MockVideoRepository) List(ctx context.Context, category string, limit, offset int) ([]*entity.Video, error) {
	args := m.Called(ctx, category, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Video), args.Error(1)
}

func (m *MockVideoRepository) ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]*entity.Video, error) {
	args := m.Called(ctx, teacherID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Video), args.Error(1)
}

func (m *MockVideoRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockVideoRepository) ListViews(ctx context.Context, userID string) ([]entity.ViewRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ViewRecord), args.Error(1)
}

var _ persistent.VideoRepository = (*MockVideoRepository)(nil)

type MockVideoCache struct {
	mock.Mock
}

func (m *MockVideoCache) Invalidate(ctx context.Context, videoID string) error {
	return m.Called(ctx, videoID).Error(0)
}

var _ persistent.VideoCache = (*MockVideoCache)(nil)

type memoryStorage struct {
	objects   map[string]string
	failKeys  map[string]bool
	deleted   []string
	uploadErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string]string{}, failKeys: map[string]bool{}}
}

func (s *memoryStorage) Bucket() string { return "videos" }

func (s *memoryStorage) UploadFile(ctx context.Context, key string, body io.ReadSeeker, contentType string) error {
	if s.uploadErr != nil && strings.HasPrefix(key, "thumbnails/") {
		return s.uploadErr
	}
	data, _ := io.ReadAll(body)
	s.objects[key] = string(data)
	return nil
}

func (s *memoryStorage) DeleteFile(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	if s.failKeys[key] {
		return errors.New("access denied")
	}
	delete(s.objects, key)
	return nil
}

func (s *memoryStorage) PresignGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://storage.test/videos/" + key + "?expires=" + ttl.String(), nil
}

const (
	teacherID = "1f9e0d64-6c7b-4a83-8d1e-5b2f0c4e9a02"
	videoID   = "9d8c7b6a-5f4e-4d3c-b2a1-0f9e8d7c6b04"
)

func TestCreateVideo_UploadsUnderTeacherPrefix(t *testing.T) {
	repo := new(MockVideoRepository)
	storage := newMemoryStorage()
	uc := NewVideoUseCase(repo, new(MockVideoCache), storage, logger.New())
	ctx := context.Background()

	var stored *entity.Video
	repo.On("Create", ctx, mock.AnythingOfType("*entity.Video")).Run(func(args mock.Arguments) {
		v := *args.Get(1).(*entity.Video)
		stored = &v
	}).Return(nil)

	video, err := uc.CreateVideo(ctx, entity.NewVideo{
		TeacherID:       teacherID,
		Title:           "Goroutines",
		QualityStandard: true,
		Video:           entity.Upload{Body: strings.NewReader("video-bytes"), Filename: "Lesson.MP4"},
		Thumbnail:       &entity.Upload{Body: strings.NewReader("jpg-bytes"), Filename: "cover.jpg"},
	})
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.True(t, strings.HasPrefix(stored.VideoURL, teacherID+"/"))
	assert.True(t, strings.HasSuffix(stored.VideoURL, ".mp4"))
	assert.True(t, strings.HasPrefix(stored.ThumbnailURL, "thumbnails/"+teacherID+"/"))
	assert.Equal(t, "video-bytes", storage.objects[stored.VideoURL])

	assert.True(t, strings.HasPrefix(video.ThumbnailURL, "https://storage.test/videos/thumbnails/"))
	assert.Equal(t, videoID, video.ID)
}

func TestCreateVideo_RejectsUnsupportedFiles(t *testing.T) {
	repo := new(MockVideoRepository)
	storage := newMemoryStorage()
	uc := NewVideoUseCase(repo, new(MockVideoCache), storage, logger.New())

	_, err := uc.CreateVideo(context.Background(), entity.NewVideo{
		TeacherID: teacherID,
		Title:     "Slides",
		Video:     entity.Upload{Body: strings.NewReader("x"), Filename: "slides.pdf"},
	})
	assert.ErrorIs(t, err, entity.ErrUnsupportedExt)
	assert.Empty(t, storage.objects)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateVideo_CleansUpWhenThumbnailFails(t *testing.T) {
	repo := new(MockVideoRepository)
	storage := newMemoryStorage()
	storage.uploadErr = errors.New("bucket full")
	uc := NewVideoUseCase(repo, new(MockVideoCache), storage, logger.New())

	_, err := uc.CreateVideo(context.Background(), entity.NewVideo{
		TeacherID: teacherID,
		Title:     "Channels",
		Video:     entity.Upload{Body: strings.NewReader("x"), Filename: "a.mp4"},
		Thumbnail: &entity.Upload{Body: strings.NewReader("y"), Filename: "a.png"},
	})
	assert.Error(t, err)
	assert.Empty(t, storage.objects)
	assert.Len(t, storage.deleted, 1)
}

func TestDeleteVideo(t *testing.T) {
	ctx := context.Background()
	existing := func() *entity.Video {
		return &entity.Video{
			ID:           videoID,
			TeacherID:    teacherID,
			VideoURL:     "videos/" + teacherID + "/a.mp4",
			ThumbnailURL: "thumbnails/" + teacherID + "/a.jpg",
		}
	}

	t.Run("owner", func(t *testing.T) {
		repo := new(MockVideoRepository)
		cache := new(MockVideoCache)
		storage := newMemoryStorage()
		storage.failKeys[teacherID+"/a.mp4"] = true
		uc := NewVideoUseCase(repo, cache, storage, logger.New())

		repo.On("GetByID", ctx, videoID).Return(existing(), nil)
		repo.On("Delete", ctx, videoID).Return(nil)
		cache.On("Invalidate", ctx, videoID).Return(nil)

		require.NoError(t, uc.DeleteVideo(ctx, videoID, teacherID))
		assert.Equal(t, []string{teacherID + "/a.mp4", "thumbnails/" + teacherID + "/a.jpg"}, storage.deleted)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("not owner", func(t *testing.T) {
		repo := new(MockVideoRepository)
		cache := new(MockVideoCache)
		storage := newMemoryStorage()
		uc := NewVideoUseCase(repo, cache, storage, logger.New())

		repo.On("GetByID", ctx, videoID).Return(existing(), nil)

		err := uc.DeleteVideo(ctx, videoID, "someone-else")
		assert.ErrorIs(t, err, entity.ErrNotOwner)
		assert.Empty(t, storage.deleted)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("malformed id", func(t *testing.T) {
		repo := new(MockVideoRepository)
		uc := NewVideoUseCase(repo, new(MockVideoCache), newMemoryStorage(), logger.New())

		assert.ErrorIs(t, uc.DeleteVideo(ctx, "nope", teacherID), entity.ErrVideoNotFound)
	})
}

func TestListVideos_SignsThumbnails(t *testing.T) {
	repo := new(MockVideoRepository)
	uc := NewVideoUseCase(repo, new(MockVideoCache), newMemoryStorage(), logger.New())
	ctx := context.Background()

	repo.On("List", ctx, "go", 20, 0).Return([]*entity.Video{
		{ID: "a", ThumbnailURL: "thumbnails/t/a.jpg", VideoURL: "t/a.mp4"},
		{ID: "b"},
	}, nil)

	videos, err := uc.ListVideos(ctx, "go", 20, 0)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "https://storage.test/videos/thumbnails/t/a.jpg?expires=1h0m0s", videos[0].ThumbnailURL)
	assert.Empty(t, videos[1].ThumbnailURL)
}
