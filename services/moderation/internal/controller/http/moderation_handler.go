package http

import (
	"errors"
	"net/http"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/moderation/internal/entity"
	"learnflix/services/moderation/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderationUseCase usecase.ModerationUseCase
	logger            *logger.Logger
}

func NewModerationHandler(moderationUseCase usecase.ModerationUseCase, logger *logger.Logger) *ModerationHandler {
	return &ModerationHandler{
		moderationUseCase: moderationUseCase,
		logger:            logger,
	}
}

type BanRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Reason string `json:"reason" binding:"max=500"`
}

// BanUser godoc
// @Summary      Ban a user
// @Description  Blocks login and every authenticated request of the user. Admins and the caller cannot be banned.
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body BanRequest true "User to ban"
// @Success      201  {object}  entity.Ban
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/bans [post]
func (h *ModerationHandler) BanUser(c *gin.Context) {
	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ban, err := h.moderationUseCase.BanUser(c.Request.Context(), c.GetString(middleware.ContextUserID), req.UserID, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ban)
}

// UnbanUser godoc
// @Summary      Lift a ban
// @Tags         moderation
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/bans/{user_id} [delete]
func (h *ModerationHandler) UnbanUser(c *gin.Context) {
	userID := c.Param("user_id")
	if err := h.moderationUseCase.UnbanUser(c.Request.Context(), c.GetString(middleware.ContextUserID), userID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User restored", "user_id": userID})
}

// ListBans godoc
// @Summary      List banned users
// @Tags         moderation
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /admin/bans [get]
func (h *ModerationHandler) ListBans(c *gin.Context) {
	bans, err := h.moderationUseCase.ListBans(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	if bans == nil {
		bans = []*entity.Ban{}
	}
	c.JSON(http.StatusOK, gin.H{"bans": bans, "count": len(bans)})
}

// DeleteVideo godoc
// @Summary      Delete any video
// @Description  Removes the stored objects, the row, its view counters and the cached copy
// @Tags         moderation
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Video ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/videos/{id} [delete]
func (h *ModerationHandler) DeleteVideo(c *gin.Context) {
	if err := h.moderationUseCase.DeleteVideo(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

func (h *ModerationHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrUserNotFound),
		errors.Is(err, entity.ErrBanNotFound),
		errors.Is(err, entity.ErrVideoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrCannotBanSelf):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrCannotBanAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrAlreadyBanned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("[MODERATION] request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
