package persistent

import (
	"context"
	"testing"

	"learnflix/pkg/database/dbtest"
	"learnflix/services/video/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	db := dbtest.StartPostgres(t)
	ctx := context.Background()
	repo := NewStatsRepository(db)

	teacherID := dbtest.CreateUser(t, db, "teacher", "teacher")
	aliceID := dbtest.CreateUser(t, db, "alice", "student")
	bobID := dbtest.CreateUser(t, db, "bob", "student")
	watched := dbtest.CreateVideo(t, db, teacherID, "teacher/a.mp4")
	unwatched := dbtest.CreateVideo(t, db, teacherID, "teacher/b.mp4")

	consume := func(userID, videoID string) {
		require.NoError(t, db.Exec(`SELECT * FROM consume_view(?, ?, 2, false)`, userID, videoID).Error)
	}
	consume(aliceID, watched)
	consume(aliceID, watched)
	consume(bobID, watched)

	stats, err := repo.GetVideoStats(ctx, watched)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalViews)
	assert.Equal(t, int64(2), stats.UniqueViewers)
	assert.NotNil(t, stats.LastViewedAt)

	empty, err := repo.GetVideoStats(ctx, unwatched)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalViews)
	assert.Nil(t, empty.LastViewedAt)

	_, err = repo.GetVideoStats(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, entity.ErrVideoNotFound)

	all, err := repo.ListVideoStats(ctx, teacherID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unique, err := repo.CountUniqueViewers(ctx, teacherID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unique)
}
