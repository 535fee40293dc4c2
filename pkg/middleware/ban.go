package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// BannedUserKey is the Redis key the moderation service mirrors each ban to.
func BannedUserKey(userID string) string {
	return "banned:" + userID
}

// BanGuard rejects requests from principals mirrored as banned in Redis.
// Postgres stays the source of truth; the entitlement evaluator re-checks it.
func BanGuard(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.Next()
			return
		}

		n, err := redisClient.Exists(c.Request.Context(), BannedUserKey(userID)).Result()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ban check failed"})
			c.Abort()
			return
		}
		if n > 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is banned"})
			c.Abort()
			return
		}

		c.Next()
	}
}
