package usecase

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"learnflix/pkg/logger"
	"learnflix/services/auth/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const bypassID = "6f1c2a3b-4d5e-4f60-8a71-92b3c4d5e6f7"

var reviewNow = time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)

func newIPLimitUseCase(ipRepo *MockIPRegistrationRepository, limit int) IPLimitUseCase {
	uc := NewIPLimitUseCase(ipRepo, limit, logger.New()).(*ipLimitUseCase)
	uc.now = func() time.Time { return reviewNow }
	return uc
}

func TestCanRegister(t *testing.T) {
	ctx := context.Background()
	ipRepo := new(MockIPRegistrationRepository)
	uc := newIPLimitUseCase(ipRepo, 2)

	ipRepo.On("CanRegister", ctx, "203.0.113.7", entity.RoleStudent, 2).Return(false, nil)
	allowed, err := uc.CanRegister(ctx, "203.0.113.7", "")
	require.NoError(t, err)
	assert.False(t, allowed)

	_, err = uc.CanRegister(ctx, "203.0.113.7", entity.RoleAdmin)
	assert.ErrorIs(t, err, entity.ErrAdminRegistration)

	_, err = uc.CanRegister(ctx, "", entity.RoleTeacher)
	assert.ErrorIs(t, err, entity.ErrUnknownClientIP)

	allowed, err = newIPLimitUseCase(ipRepo, 0).CanRegister(ctx, "", entity.RoleTeacher)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRequestBypass(t *testing.T) {
	ctx := context.Background()

	t.Run("default reason", func(t *testing.T) {
		ipRepo := new(MockIPRegistrationRepository)
		uc := newIPLimitUseCase(ipRepo, 1)
		ipRepo.On("CreateBypassRequest", ctx, mock.MatchedBy(func(r *entity.BypassRequest) bool {
			return r.IPAddress == "203.0.113.7" && r.RequestedRole == entity.RoleTeacher && r.Reason == "No reason provided"
		})).Return(nil)

		req, err := uc.RequestBypass(ctx, "203.0.113.7", entity.RoleTeacher, "   ")
		require.NoError(t, err)
		assert.Equal(t, "bypass-1", req.ID)
		assert.Equal(t, entity.BypassPending, req.Status)
	})

	t.Run("long reason is cut", func(t *testing.T) {
		ipRepo := new(MockIPRegistrationRepository)
		uc := newIPLimitUseCase(ipRepo, 1)
		ipRepo.On("CreateBypassRequest", ctx, mock.Anything).Return(nil)

		req, err := uc.RequestBypass(ctx, "203.0.113.7", entity.RoleStudent, strings.Repeat("é", entity.MaxBypassReason+20))
		require.NoError(t, err)
		assert.Equal(t, entity.MaxBypassReason, utf8.RuneCountInString(req.Reason))
	})

	t.Run("already pending", func(t *testing.T) {
		ipRepo := new(MockIPRegistrationRepository)
		uc := newIPLimitUseCase(ipRepo, 1)
		ipRepo.On("CreateBypassRequest", ctx, mock.Anything).Return(entity.ErrBypassPending)

		_, err := uc.RequestBypass(ctx, "203.0.113.7", entity.RoleStudent, "shared dorm")
		assert.ErrorIs(t, err, entity.ErrBypassPending)
	})

	t.Run("admin role", func(t *testing.T) {
		ipRepo := new(MockIPRegistrationRepository)
		_, err := newIPLimitUseCase(ipRepo, 1).RequestBypass(ctx, "203.0.113.7", entity.RoleAdmin, "")
		assert.ErrorIs(t, err, entity.ErrAdminRegistration)
		ipRepo.AssertNotCalled(t, "CreateBypassRequest", mock.Anything, mock.Anything)
	})
}

func TestListBypassRequests(t *testing.T) {
	ctx := context.Background()
	ipRepo := new(MockIPRegistrationRepository)
	uc := newIPLimitUseCase(ipRepo, 1)

	ipRepo.On("ListBypassRequests", ctx, entity.BypassPending).Return([]*entity.BypassRequest{{ID: bypassID}}, nil)
	reqs, err := uc.ListBypassRequests(ctx, "")
	require.NoError(t, err)
	assert.Len(t, reqs, 1)

	_, err = uc.ListBypassRequests(ctx, "expired")
	assert.ErrorIs(t, err, entity.ErrInvalidBypassState)
}

func TestReviewBypassRequest(t *testing.T) {
	ctx := context.Background()
	ipRepo := new(MockIPRegistrationRepository)
	uc := newIPLimitUseCase(ipRepo, 1)

	ipRepo.On("ReviewBypassRequest", ctx, bypassID, entity.BypassApproved, "admin-1", reviewNow).
		Return(&entity.BypassRequest{ID: bypassID, Status: entity.BypassApproved}, nil).Once()
	req, err := uc.ReviewBypassRequest(ctx, bypassID, "admin-1", true)
	require.NoError(t, err)
	assert.Equal(t, entity.BypassApproved, req.Status)

	ipRepo.On("ReviewBypassRequest", ctx, bypassID, entity.BypassRejected, "admin-1", reviewNow).
		Return(nil, entity.ErrBypassReviewed).Once()
	_, err = uc.ReviewBypassRequest(ctx, bypassID, "admin-1", false)
	assert.ErrorIs(t, err, entity.ErrBypassReviewed)

	_, err = uc.ReviewBypassRequest(ctx, "42", "admin-1", true)
	assert.ErrorIs(t, err, entity.ErrBypassNotFound)
	ipRepo.AssertExpectations(t)
}
