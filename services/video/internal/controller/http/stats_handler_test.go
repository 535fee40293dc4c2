package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/video/internal/entity"
	"learnflix/services/video/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStatsUseCase struct {
	mock.Mock
}

func (m *MockStatsUseCase) GetTeacherStats(ctx context.Context, teacherID string) (*entity.TeacherStats, error) {
	args := m.Called(ctx, teacherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TeacherStats), args.Error(1)
}

func (m *MockStatsUseCase) GetVideoStats(ctx context.Context, videoID, userID, role string) (*entity.VideoStats, error) {
	args := m.Called(ctx, videoID, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VideoStats), args.Error(1)
}

var _ usecase.StatsUseCase = (*MockStatsUseCase)(nil)

func setupStatsRouter(handler *StatsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "teacher-1")
		c.Set(middleware.ContextUserRole, "teacher")
		c.Next()
	})
	router.GET("/teachers/me/stats", handler.GetMyStats)
	router.GET("/videos/:id/stats", handler.GetVideoStats)
	return router
}

func TestGetMyStats(t *testing.T) {
	mockUseCase := new(MockStatsUseCase)
	router := setupStatsRouter(NewStatsHandler(mockUseCase, logger.New()))

	mockUseCase.On("GetTeacherStats", mock.Anything, "teacher-1").Return(&entity.TeacherStats{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/teachers/me/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []interface{}{}, response["videos"])
}

func TestGetVideoStats_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{entity.ErrVideoNotFound, http.StatusNotFound},
		{entity.ErrStatsForbidden, http.StatusForbidden},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		mockUseCase := new(MockStatsUseCase)
		router := setupStatsRouter(NewStatsHandler(mockUseCase, logger.New()))

		var stats *entity.VideoStats
		if tc.err == nil {
			stats = &entity.VideoStats{VideoID: "v-1", TotalViews: 3}
		}
		mockUseCase.On("GetVideoStats", mock.Anything, "v-1", "teacher-1", "teacher").Return(stats, tc.err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/videos/v-1/stats", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, tc.want, w.Code, "%v", tc.err)
	}
}
