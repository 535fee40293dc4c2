package persistent

import (
	"context"
	"sync"
	"testing"
	"time"

	"learnflix/pkg/database/dbtest"
	"learnflix/services/playback/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewRepository_ConsumeView(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	db := dbtest.StartPostgres(t)
	ctx := context.Background()

	teacherID := dbtest.CreateUser(t, db, "teacher", "teacher")
	studentID := dbtest.CreateUser(t, db, "student", "student")
	videoID := dbtest.CreateVideo(t, db, teacherID, "videos/"+teacherID+"/lesson.mp4")
	repo := NewViewRepository(db)

	t.Run("concurrent callers stop at the limit", func(t *testing.T) {
		const callers = 50
		results := make(chan *entity.ConsumeResult, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := repo.ConsumeView(ctx, studentID, videoID, 2, false)
				if assert.NoError(t, err) {
					results <- result
				}
			}()
		}
		wg.Wait()
		close(results)

		outcomes := map[entity.ConsumeOutcome]int{}
		for result := range results {
			outcomes[result.Outcome]++
			if result.Outcome == entity.OutcomeRejected {
				assert.Equal(t, 2, result.Count)
			}
		}
		assert.Equal(t, 1, outcomes[entity.OutcomeCreated])
		assert.Equal(t, 1, outcomes[entity.OutcomeIncremented])
		assert.Equal(t, callers-2, outcomes[entity.OutcomeRejected])

		var count int
		require.NoError(t, db.Raw("SELECT view_count FROM video_views WHERE user_id = ? AND video_id = ?", studentID, videoID).Scan(&count).Error)
		assert.Equal(t, 2, count)
	})

	t.Run("unlimited keeps counting past the limit", func(t *testing.T) {
		result, err := repo.ConsumeView(ctx, studentID, videoID, 2, true)
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeIncremented, result.Outcome)
		assert.Equal(t, 3, result.Count)

		result, err = repo.ConsumeView(ctx, studentID, videoID, 2, false)
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeRejected, result.Outcome)
		assert.Equal(t, 3, result.Count)
	})

	t.Run("unknown video", func(t *testing.T) {
		_, err := repo.ConsumeView(ctx, studentID, uuid.NewString(), 2, false)
		assert.ErrorIs(t, err, entity.ErrVideoNotFound)
	})

	t.Run("deleted user", func(t *testing.T) {
		_, err := repo.ConsumeView(ctx, uuid.NewString(), videoID, 2, false)
		assert.ErrorIs(t, err, entity.ErrUserNotFound)
		assert.NotErrorIs(t, err, entity.ErrVideoNotFound)
	})
}

func TestSubscriptionAndBanRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	db := dbtest.StartPostgres(t)
	ctx := context.Background()

	userID := dbtest.CreateUser(t, db, "learner", "student")
	adminID := dbtest.CreateUser(t, db, "admin", "admin")
	now := time.Now().UTC().Truncate(time.Millisecond)

	subs := NewSubscriptionRepository(db)
	active, err := subs.HasActiveSubscription(ctx, userID, now)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, db.Exec(
		"INSERT INTO subscriptions (user_id, is_active, started_at, expires_at) VALUES (?, true, ?, ?)",
		userID, now.Add(-time.Hour), now,
	).Error)

	active, err = subs.HasActiveSubscription(ctx, userID, now)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = subs.HasActiveSubscription(ctx, userID, now.Add(time.Millisecond))
	require.NoError(t, err)
	assert.False(t, active)

	latest, err := subs.LatestActive(ctx, userID, now)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.ExpiresAt.Equal(now))

	bans := NewBanRepository(db)
	banned, err := bans.IsBanned(ctx, userID)
	require.NoError(t, err)
	assert.False(t, banned)

	require.NoError(t, db.Exec("INSERT INTO banned_users (user_id, banned_by) VALUES (?, ?)", userID, adminID).Error)
	banned, err = bans.IsBanned(ctx, userID)
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestVideoRepository_GetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	db := dbtest.StartPostgres(t)
	ctx := context.Background()

	teacherID := dbtest.CreateUser(t, db, "owner", "teacher")
	videoID := dbtest.CreateVideo(t, db, teacherID, "videos/lesson.mp4")
	repo := NewVideoRepository(db, nil, time.Minute)

	video, err := repo.GetByID(ctx, videoID)
	require.NoError(t, err)
	assert.Equal(t, teacherID, video.TeacherID)
	assert.Equal(t, "videos/lesson.mp4", video.VideoURL)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrVideoNotFound)
}
