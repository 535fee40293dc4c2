package http

import (
	"net/http"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/playback/internal/entity"
	"learnflix/services/playback/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PlaybackHandler struct {
	playbackUseCase usecase.PlaybackUseCase
	logger          *logger.Logger
}

func NewPlaybackHandler(playbackUseCase usecase.PlaybackUseCase, logger *logger.Logger) *PlaybackHandler {
	return &PlaybackHandler{
		playbackUseCase: playbackUseCase,
		logger:          logger,
	}
}

// DenialResponse is the body of every refused playback request.
type DenialResponse struct {
	Error        string            `json:"error"`
	Reason       entity.DenyReason `json:"reason"`
	CurrentCount *int              `json:"current_count,omitempty"`
	Limit        *int              `json:"limit,omitempty"`
}

// RequestPlayback godoc
// @Summary      Request playback of a video
// @Description  Consumes one view from the caller's quota (free users get a fixed number of lifetime views per video) and returns a short-lived signed URL. The video's teacher and admins are never metered.
// @Tags         playback
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Video ID"
// @Success      200  {object}  entity.PlaybackGrant
// @Failure      401  {object}  DenialResponse
// @Failure      403  {object}  DenialResponse
// @Failure      404  {object}  DenialResponse
// @Failure      500  {object}  DenialResponse
// @Router       /videos/{id}/playback [post]
func (h *PlaybackHandler) RequestPlayback(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	role := entity.Role(c.GetString(middleware.ContextUserRole))

	grant, err := h.playbackUseCase.RequestPlayback(c.Request.Context(), userID, c.Param("id"), role)
	if err != nil {
		h.writeDenial(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}

// GetEntitlement godoc
// @Summary      Get the caller's entitlement
// @Description  Reports whether the caller is premium, when premium ends and the free per-video view limit
// @Tags         playback
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Entitlement
// @Failure      401  {object}  DenialResponse
// @Failure      500  {object}  DenialResponse
// @Router       /entitlement [get]
func (h *PlaybackHandler) GetEntitlement(c *gin.Context) {
	entitlement, err := h.playbackUseCase.GetEntitlement(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.writeDenial(c, err)
		return
	}

	c.JSON(http.StatusOK, entitlement)
}

func (h *PlaybackHandler) writeDenial(c *gin.Context, err error) {
	denial := entity.AsDenial(err)

	message := denial.Error()
	if denial.Reason == entity.ReasonInternalError {
		h.logger.Error("[PLAYBACK] request failed: %v", err)
		message = "internal error"
	}

	c.JSON(StatusForDenial(denial.Reason), DenialResponse{
		Error:        message,
		Reason:       denial.Reason,
		CurrentCount: denial.CurrentCount,
		Limit:        denial.Limit,
	})
}

func StatusForDenial(reason entity.DenyReason) int {
	switch reason {
	case entity.ReasonViewLimitReached:
		return http.StatusForbidden
	case entity.ReasonNotFound:
		return http.StatusNotFound
	case entity.ReasonUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
