package usecase

import (
	"context"
	"testing"
	"time"

	"learnflix/pkg/logger"
	"learnflix/pkg/queue"
	"learnflix/services/playback/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEntitlementEvaluator struct {
	mock.Mock
}

func (m *MockEntitlementEvaluator) TryConsumeView(ctx context.Context, userID, videoID string) (*entity.ViewAllowance, error) {
	args := m.Called(ctx, userID, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ViewAllowance), args.Error(1)
}

func (m *MockEntitlementEvaluator) FreeViewLimit() int {
	return FreeViewLimit
}

var _ EntitlementEvaluator = (*MockEntitlementEvaluator)(nil)

const storedVideoURL = "https://project.supabase.co/storage/v1/object/public/videos/1f9e0d64/lesson-01.mp4"

func testVideos() memoryVideos {
	return memoryVideos{
		videoID: {ID: videoID, TeacherID: teacherID, Title: "Intro to Go", VideoURL: storedVideoURL},
	}
}

type gatewayFixture struct {
	gateway   *playbackUseCase
	evaluator *entitlementEvaluator
	views     *memoryViewStore
	subs      *memorySubscriptions
	signer    *recordingSigner
	publisher *recordingPublisher
}

func newGatewayFixture() *gatewayFixture {
	ef := newEvaluatorFixture()
	signer := &recordingSigner{}
	publisher := newRecordingPublisher()

	gateway := NewPlaybackUseCase(testVideos(), ef.subs, ef.evaluator, signer, publisher, "videos", time.Hour, logger.New()).(*playbackUseCase)
	gateway.now = func() time.Time { return fixedNow }

	return &gatewayFixture{
		gateway:   gateway,
		evaluator: ef.evaluator,
		views:     ef.views,
		subs:      ef.subs,
		signer:    signer,
		publisher: publisher,
	}
}

func TestRequestPlayback_StudentFlow(t *testing.T) {
	f := newGatewayFixture()
	ctx := context.Background()

	grant, err := f.gateway.RequestPlayback(ctx, studentID, videoID, entity.RoleStudent)
	require.NoError(t, err)
	assert.Contains(t, grant.URL, "1f9e0d64/lesson-01.mp4")
	assert.Equal(t, fixedNow.Add(time.Hour), grant.ExpiresAt)
	assert.False(t, grant.Bypass)
	require.NotNil(t, grant.ViewCount)
	require.NotNil(t, grant.Limit)
	assert.Equal(t, 1, *grant.ViewCount)
	assert.Equal(t, 2, *grant.Limit)

	grant, err = f.gateway.RequestPlayback(ctx, studentID, videoID, entity.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 2, *grant.ViewCount)

	_, err = f.gateway.RequestPlayback(ctx, studentID, videoID, entity.RoleStudent)
	denial := requireDenial(t, err, entity.ReasonViewLimitReached)
	assert.Equal(t, 2, *denial.CurrentCount)
	assert.Equal(t, 2, *denial.Limit)

	assert.Len(t, f.signer.signedKeys(), 2)

	select {
	case task := <-f.publisher.tasks:
		assert.Equal(t, queue.TaskViewLimitReached, task["type"])
		assert.Equal(t, studentID, task["user_id"])
		assert.Equal(t, videoID, task["video_id"])
	case <-time.After(time.Second):
		t.Fatal("expected a view_limit_reached notification")
	}
}

func TestRequestPlayback_ExpiryTakenBeforeSigning(t *testing.T) {
	f := newGatewayFixture()
	clock := fixedNow
	f.gateway.now = func() time.Time { return clock }
	f.signer.onSign = func() { clock = clock.Add(5 * time.Second) }

	grant, err := f.gateway.RequestPlayback(context.Background(), studentID, videoID, entity.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Hour), grant.ExpiresAt)
}

func TestRequestPlayback_PremiumGrantHasNoLimit(t *testing.T) {
	f := newGatewayFixture()
	f.subs.rows = []entity.Subscription{{UserID: studentID, IsActive: true, ExpiresAt: fixedNow.Add(time.Hour)}}

	for i := 0; i < 3; i++ {
		grant, err := f.gateway.RequestPlayback(context.Background(), studentID, videoID, entity.RoleStudent)
		require.NoError(t, err)
		assert.Nil(t, grant.Limit)
		assert.Equal(t, i+1, *grant.ViewCount)
	}
}

func TestRequestPlayback_OwnerAndAdminBypass(t *testing.T) {
	cases := []struct {
		name   string
		userID string
		role   entity.Role
	}{
		{"owning teacher", teacherID, entity.RoleTeacher},
		{"admin", adminID, entity.RoleAdmin},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			evaluator := new(MockEntitlementEvaluator)
			signer := &recordingSigner{}
			gateway := NewPlaybackUseCase(testVideos(), &memorySubscriptions{}, evaluator, signer, nil, "videos", time.Hour, logger.New())

			for i := 0; i < 5; i++ {
				grant, err := gateway.RequestPlayback(context.Background(), tc.userID, videoID, tc.role)
				require.NoError(t, err)
				assert.True(t, grant.Bypass)
				assert.Nil(t, grant.ViewCount)
				assert.Nil(t, grant.Limit)
			}

			evaluator.AssertNotCalled(t, "TryConsumeView", mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, []string{
				"1f9e0d64/lesson-01.mp4", "1f9e0d64/lesson-01.mp4", "1f9e0d64/lesson-01.mp4",
				"1f9e0d64/lesson-01.mp4", "1f9e0d64/lesson-01.mp4",
			}, signer.signedKeys())
		})
	}
}

func TestRequestPlayback_OtherTeacherIsMetered(t *testing.T) {
	evaluator := new(MockEntitlementEvaluator)
	evaluator.On("TryConsumeView", mock.Anything, adminID, videoID).
		Return(nil, entity.QuotaExceeded(2, 2))

	gateway := NewPlaybackUseCase(testVideos(), &memorySubscriptions{}, evaluator, &recordingSigner{}, nil, "videos", time.Hour, logger.New())

	_, err := gateway.RequestPlayback(context.Background(), adminID, videoID, entity.RoleTeacher)
	requireDenial(t, err, entity.ReasonViewLimitReached)
	evaluator.AssertExpectations(t)
}

func TestRequestPlayback_Denials(t *testing.T) {
	t.Run("unknown video", func(t *testing.T) {
		f := newGatewayFixture()
		_, err := f.gateway.RequestPlayback(context.Background(), studentID, missingID, entity.RoleStudent)
		requireDenial(t, err, entity.ReasonNotFound)
		assert.Empty(t, f.signer.signedKeys())
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newGatewayFixture()
		_, err := f.gateway.RequestPlayback(context.Background(), "", videoID, entity.RoleStudent)
		requireDenial(t, err, entity.ReasonUnauthenticated)
	})

	t.Run("store error", func(t *testing.T) {
		f := newGatewayFixture()
		f.views.err = errStoreDown
		_, err := f.gateway.RequestPlayback(context.Background(), studentID, videoID, entity.RoleStudent)
		requireDenial(t, err, entity.ReasonInternalError)
		assert.Empty(t, f.signer.signedKeys())
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := newGatewayFixture()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.gateway.RequestPlayback(ctx, teacherID, videoID, entity.RoleTeacher)
		requireDenial(t, err, entity.ReasonInternalError)
		assert.Empty(t, f.signer.signedKeys())
	})

	t.Run("signer error", func(t *testing.T) {
		f := newGatewayFixture()
		f.signer.err = errStoreDown
		_, err := f.gateway.RequestPlayback(context.Background(), studentID, videoID, entity.RoleStudent)
		requireDenial(t, err, entity.ReasonInternalError)
	})
}

func TestGetEntitlement(t *testing.T) {
	f := newGatewayFixture()

	free, err := f.gateway.GetEntitlement(context.Background(), studentID)
	require.NoError(t, err)
	assert.False(t, free.Premium)
	assert.Nil(t, free.ExpiresAt)
	assert.Equal(t, FreeViewLimit, free.FreeViewLimit)

	expiry := fixedNow.Add(30 * 24 * time.Hour)
	f.subs.rows = []entity.Subscription{
		{UserID: studentID, IsActive: true, ExpiresAt: fixedNow.Add(24 * time.Hour)},
		{UserID: studentID, IsActive: true, ExpiresAt: expiry},
	}

	premium, err := f.gateway.GetEntitlement(context.Background(), studentID)
	require.NoError(t, err)
	assert.True(t, premium.Premium)
	require.NotNil(t, premium.ExpiresAt)
	assert.Equal(t, expiry, *premium.ExpiresAt)

	_, err = f.gateway.GetEntitlement(context.Background(), "")
	requireDenial(t, err, entity.ReasonUnauthenticated)
}
