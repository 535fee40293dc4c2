package http

import (
	"errors"
	"net/http"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/video/internal/entity"
	"learnflix/services/video/internal/usecase"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsUseCase usecase.StatsUseCase
	logger       *logger.Logger
}

func NewStatsHandler(statsUseCase usecase.StatsUseCase, logger *logger.Logger) *StatsHandler {
	return &StatsHandler{
		statsUseCase: statsUseCase,
		logger:       logger,
	}
}

// GetMyStats godoc
// @Summary      Get teacher statistics
// @Description  View totals for every video of the caller. Views are counted by the playback service.
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.TeacherStats
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /teachers/me/stats [get]
func (h *StatsHandler) GetMyStats(c *gin.Context) {
	stats, err := h.statsUseCase.GetTeacherStats(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}
	if stats.Videos == nil {
		stats.Videos = []entity.VideoStats{}
	}

	c.JSON(http.StatusOK, stats)
}

// GetVideoStats godoc
// @Summary      Get video statistics
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Video ID"
// @Success      200  {object}  entity.VideoStats
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /videos/{id}/stats [get]
func (h *StatsHandler) GetVideoStats(c *gin.Context) {
	stats, err := h.statsUseCase.GetVideoStats(
		c.Request.Context(),
		c.Param("id"),
		c.GetString(middleware.ContextUserID),
		c.GetString(middleware.ContextUserRole),
	)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrVideoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		case errors.Is(err, entity.ErrStatsForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to get video stats: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		}
		return
	}

	c.JSON(http.StatusOK, stats)
}
