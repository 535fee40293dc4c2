package http

import (
	"net/http"
	"strconv"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/notification/internal/entity"
	"learnflix/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type NotificationHandler struct {
	notificationUseCase usecase.NotificationUseCase
	logger              *logger.Logger
}

func NewNotificationHandler(notificationUseCase usecase.NotificationUseCase, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		logger:              logger,
	}
}

type NotificationsResponse struct {
	Notifications []entity.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
}

type QueueResponse struct {
	Queue  string `json:"queue"`
	Length int    `json:"length"`
}

// GetNotifications godoc
// @Summary      List notifications
// @Description  Returns the caller's notifications, newest first
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Page size (max 100)"  default(20)
// @Param        offset  query  int  false  "Offset"               default(0)
// @Success      200  {object}  NotificationsResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	notifications, total, err := h.notificationUseCase.GetNotifications(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("[NOTIFICATION] failed to list notifications for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if notifications == nil {
		notifications = []entity.Notification{}
	}

	c.JSON(http.StatusOK, NotificationsResponse{Notifications: notifications, Total: total})
}

// ClearNotifications godoc
// @Summary      Clear notifications
// @Tags         notifications
// @Security     BearerAuth
// @Success      204
// @Failure      500  {object}  map[string]string
// @Router       /notifications [delete]
func (h *NotificationHandler) ClearNotifications(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if err := h.notificationUseCase.ClearNotifications(c.Request.Context(), userID); err != nil {
		h.logger.Error("[NOTIFICATION] failed to clear notifications for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// QueueLength godoc
// @Summary      Notification queue depth
// @Description  Admin only. Number of tasks waiting in the notification queue
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  QueueResponse
// @Failure      403  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /admin/notifications/queue [get]
func (h *NotificationHandler) QueueLength(c *gin.Context) {
	length, err := h.notificationUseCase.QueueLength()
	if err != nil {
		h.logger.Error("[NOTIFICATION] failed to inspect queue: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queue unavailable"})
		return
	}
	c.JSON(http.StatusOK, QueueResponse{Queue: "notification_queue", Length: length})
}

// parsePage writes a 400 and returns ok=false on a malformed limit or offset.
func parsePage(c *gin.Context) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return 0, 0, false
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return 0, 0, false
	}
	return limit, offset, true
}
