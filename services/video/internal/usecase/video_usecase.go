package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"learnflix/pkg/logger"
	"learnflix/services/video/internal/entity"
	"learnflix/services/video/internal/repo/persistent"

	"github.com/google/uuid"
)

const thumbnailURLTTL = time.Hour

var (
	videoExtensions     = map[string]bool{".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true}
	thumbnailExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
)

// ObjectStorage is satisfied by *s3.Client.
type ObjectStorage interface {
	Bucket() string
	UploadFile(ctx context.Context, key string, body io.ReadSeeker, contentType string) error
	DeleteFile(ctx context.Context, key string) error
	PresignGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type VideoUseCase interface {
	CreateVideo(ctx context.Context, input entity.NewVideo) (*entity.Video, error)
	GetVideo(ctx context.Context, videoID string) (*entity.Video, error)
	ListVideos(ctx context.Context, category string, limit, offset int) ([]*entity.Video, error)
	GetTeacherVideos(ctx context.Context, teacherID string, limit, offset int) ([]*entity.Video, error)
	DeleteVideo(ctx context.Context, videoID, userID string) error
	GetMyViews(ctx context.Context, userID string) ([]entity.ViewRecord, error)
}

type videoUseCase struct {
	videoRepo persistent.VideoRepository
	cache     persistent.VideoCache
	storage   ObjectStorage
	logger    *logger.Logger
}

func NewVideoUseCase(
	videoRepo persistent.VideoRepository,
	cache persistent.VideoCache,
	storage ObjectStorage,
	logger *logger.Logger,
) VideoUseCase {
	return &videoUseCase{
		videoRepo: videoRepo,
		cache:     cache,
		storage:   storage,
		logger:    logger,
	}
}

func (uc *videoUseCase) CreateVideo(ctx context.Context, input entity.NewVideo) (*entity.Video, error) {
	videoExt := strings.ToLower(filepath.Ext(input.Video.Filename))
	if !videoExtensions[videoExt] {
		return nil, fmt.Errorf("%w: video %q", entity.ErrUnsupportedExt, videoExt)
	}

	var thumbExt string
	if input.Thumbnail != nil {
		thumbExt = strings.ToLower(filepath.Ext(input.Thumbnail.Filename))
		if !thumbnailExtensions[thumbExt] {
			return nil, fmt.Errorf("%w: thumbnail %q", entity.ErrUnsupportedExt, thumbExt)
		}
	}

	videoKey := fmt.Sprintf("%s/%s%s", input.TeacherID, uuid.New().String(), videoExt)
	if err := uc.storage.UploadFile(ctx, videoKey, input.Video.Body, contentTypeOr(input.Video.ContentType, "video/mp4")); err != nil {
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	var thumbKey string
	if input.Thumbnail != nil {
		thumbKey = fmt.Sprintf("thumbnails/%s/%s%s", input.TeacherID, uuid.New().String(), thumbExt)
		if err := uc.storage.UploadFile(ctx, thumbKey, input.Thumbnail.Body, contentTypeOr(input.Thumbnail.ContentType, "image/jpeg")); err != nil {
			uc.removeObjects(ctx, videoKey)
			return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
		}
	}

	video := &entity.Video{
		TeacherID:       input.TeacherID,
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		VideoURL:        videoKey,
		ThumbnailURL:    thumbKey,
		QualityHD:       input.QualityHD,
		QualityStandard: input.QualityStandard,
		Duration:        input.Duration,
	}

	if err := uc.videoRepo.Create(ctx, video); err != nil {
		uc.removeObjects(ctx, videoKey, thumbKey)
		return nil, fmt.Errorf("failed to create video: %w", err)
	}

	uc.logger.Info("[VIDEO] teacher %s uploaded video %s", video.TeacherID, video.ID)
	uc.signThumbnail(ctx, video)
	return video, nil
}

func (uc *videoUseCase) GetVideo(ctx context.Context, videoID string) (*entity.Video, error) {
	if _, err := uuid.Parse(videoID); err != nil {
		return nil, entity.ErrVideoNotFound
	}
	video, err := uc.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	uc.signThumbnail(ctx, video)
	return video, nil
}

func (uc *videoUseCase) ListVideos(ctx context.Context, category string, limit, offset int) ([]*entity.Video, error) {
	videos, err := uc.videoRepo.List(ctx, category, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, video := range videos {
		uc.signThumbnail(ctx, video)
	}
	return videos, nil
}

func (uc *videoUseCase) GetTeacherVideos(ctx context.Context, teacherID string, limit, offset int) ([]*entity.Video, error) {
	videos, err := uc.videoRepo.ListByTeacher(ctx, teacherID, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, video := range videos {
		uc.signThumbnail(ctx, video)
	}
	return videos, nil
}

func (uc *videoUseCase) DeleteVideo(ctx context.Context, videoID, userID string) error {
	if _, err := uuid.Parse(videoID); err != nil {
		return entity.ErrVideoNotFound
	}
	video, err := uc.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return err
	}

	if video.TeacherID != userID {
		return entity.ErrNotOwner
	}

	uc.removeObjects(ctx, video.VideoURL, video.ThumbnailURL)

	if err := uc.videoRepo.Delete(ctx, videoID); err != nil {
		return err
	}

	if err := uc.cache.Invalidate(ctx, videoID); err != nil {
		uc.logger.Error("[VIDEO] failed to invalidate cache for %s: %v", videoID, err)
	}

	uc.logger.Info("[VIDEO] teacher %s deleted video %s", userID, videoID)
	return nil
}

func (uc *videoUseCase) GetMyViews(ctx context.Context, userID string) ([]entity.ViewRecord, error) {
	return uc.videoRepo.ListViews(ctx, userID)
}

// signThumbnail swaps the stored key for a presigned URL. Failures leave it empty.
func (uc *videoUseCase) signThumbnail(ctx context.Context, video *entity.Video) {
	if video.ThumbnailURL == "" {
		return
	}
	key := strings.TrimPrefix(video.ThumbnailURL, uc.storage.Bucket()+"/")
	url, err := uc.storage.PresignGetURL(ctx, key, thumbnailURLTTL)
	if err != nil {
		uc.logger.Warn("[VIDEO] failed to sign thumbnail for %s: %v", video.ID, err)
		video.ThumbnailURL = ""
		return
	}
	video.ThumbnailURL = url
}

// removeObjects is best effort; orphaned objects are logged, never fatal.
func (uc *videoUseCase) removeObjects(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		key = strings.TrimPrefix(key, uc.storage.Bucket()+"/")
		if err := uc.storage.DeleteFile(ctx, key); err != nil {
			uc.logger.Error("[VIDEO] failed to delete object %s: %v", key, err)
		}
	}
}

func contentTypeOr(contentType, fallback string) string {
	if contentType == "" {
		return fallback
	}
	return contentType
}
