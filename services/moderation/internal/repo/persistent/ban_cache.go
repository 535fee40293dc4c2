package persistent

import (
	"context"
	"fmt"

	"learnflix/pkg/middleware"

	"github.com/redis/go-redis/v9"
)

const bannedKeyPattern = "banned:*"

// ModerationCache mirrors bans into Redis for middleware.BanGuard and drops
// the playback service's cached copy of deleted videos.
type ModerationCache interface {
	MirrorBan(ctx context.Context, userID string) error
	ClearBan(ctx context.Context, userID string) error
	ResyncBans(ctx context.Context, userIDs []string) error
	InvalidateVideo(ctx context.Context, videoID string) error
}

type redisModerationCache struct {
	client *redis.Client
}

func NewModerationCache(client *redis.Client) ModerationCache {
	return &redisModerationCache{client: client}
}

func VideoCacheKey(videoID string) string {
	return "video:" + videoID
}

func (c *redisModerationCache) MirrorBan(ctx context.Context, userID string) error {
	return c.client.Set(ctx, middleware.BannedUserKey(userID), "1", 0).Err()
}

func (c *redisModerationCache) ClearBan(ctx context.Context, userID string) error {
	return c.client.Del(ctx, middleware.BannedUserKey(userID)).Err()
}

// ResyncBans makes the banned:* keyspace match userIDs exactly, in one pipeline.
func (c *redisModerationCache) ResyncBans(ctx context.Context, userIDs []string) error {
	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[middleware.BannedUserKey(id)] = struct{}{}
	}

	var stale []string
	iter := c.client.Scan(ctx, 0, bannedKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		if _, ok := wanted[iter.Val()]; !ok {
			stale = append(stale, iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan ban keys: %w", err)
	}

	pipe := c.client.Pipeline()
	for key := range wanted {
		pipe.Set(ctx, key, "1", 0)
	}
	if len(stale) > 0 {
		pipe.Del(ctx, stale...)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to mirror bans: %w", err)
	}
	return nil
}

func (c *redisModerationCache) InvalidateVideo(ctx context.Context, videoID string) error {
	return c.client.Del(ctx, VideoCacheKey(videoID)).Err()
}
