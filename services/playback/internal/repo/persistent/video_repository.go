package persistent

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"learnflix/services/playback/internal/entity"
	"learnflix/services/playback/internal/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// VideoCacheKey is shared with the video and moderation services, which delete it on video removal.
func VideoCacheKey(videoID string) string {
	return "video:" + videoID
}

type VideoRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Video, error)
}

type videoRepository struct {
	db          *gorm.DB
	redisClient *redis.Client
	cacheTTL    time.Duration
}

// NewVideoRepository reads through Redis when redisClient is non-nil. Only the immutable
// owner/path columns are cached.
func NewVideoRepository(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration) VideoRepository {
	return &videoRepository{db: db, redisClient: redisClient, cacheTTL: cacheTTL}
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	if cached, ok := r.fromCache(ctx, id); ok {
		return ToVideoEntity(cached), nil
	}

	var videoModel model.VideoModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&videoModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrVideoNotFound
	}
	if err != nil {
		return nil, err
	}

	r.toCache(ctx, &videoModel)
	return ToVideoEntity(&videoModel), nil
}

func (r *videoRepository) fromCache(ctx context.Context, id string) (*model.VideoModel, bool) {
	if r.redisClient == nil {
		return nil, false
	}
	data, err := r.redisClient.Get(ctx, VideoCacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var videoModel model.VideoModel
	if err := json.Unmarshal(data, &videoModel); err != nil {
		return nil, false
	}
	return &videoModel, true
}

func (r *videoRepository) toCache(ctx context.Context, videoModel *model.VideoModel) {
	if r.redisClient == nil || r.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(videoModel)
	if err != nil {
		return
	}
	r.redisClient.Set(ctx, VideoCacheKey(videoModel.ID), data, r.cacheTTL)
}
