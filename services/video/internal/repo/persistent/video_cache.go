package persistent

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// VideoCacheKey matches the read-through cache the playback service keeps.
func VideoCacheKey(videoID string) string {
	return "video:" + videoID
}

type VideoCache interface {
	Invalidate(ctx context.Context, videoID string) error
}

type redisVideoCache struct {
	client *redis.Client
}

func NewVideoCache(client *redis.Client) VideoCache {
	return &redisVideoCache{client: client}
}

func (c *redisVideoCache) Invalidate(ctx context.Context, videoID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, VideoCacheKey(videoID)).Err()
}
