package http

import (
	"errors"
	"net/http"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/notification/internal/entity"
	"learnflix/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageUseCase usecase.MessageUseCase
	logger         *logger.Logger
}

func NewMessageHandler(messageUseCase usecase.MessageUseCase, logger *logger.Logger) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
		logger:         logger,
	}
}

type SendMessageRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	RecipientID string `json:"recipient_id"`
}

type MessagesResponse struct {
	Messages []entity.Message `json:"messages"`
	Total    int64            `json:"total"`
}

type SendMessageResponse struct {
	Messages []*entity.Message `json:"messages"`
	Sent     int               `json:"sent"`
}

type UnreadResponse struct {
	Unread int64 `json:"unread"`
}

func reader(c *gin.Context) entity.Reader {
	return entity.Reader{
		ID:   c.GetString(middleware.ContextUserID),
		Role: c.GetString(middleware.ContextUserRole),
	}
}

// SendMessage godoc
// @Summary      Send a message
// @Description  Teachers message one student (recipient_id) or broadcast to all students (no recipient_id). Students message every teacher.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SendMessageRequest true "Message"
// @Success      201  {object}  SendMessageResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messages, err := h.messageUseCase.Send(c.Request.Context(), reader(c), entity.Draft{
		Title:       req.Title,
		Content:     req.Content,
		RecipientID: req.RecipientID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SendMessageResponse{Messages: messages, Sent: len(messages)})
}

// GetInbox godoc
// @Summary      List received messages
// @Description  Direct messages to the caller plus, for students, teacher broadcasts. Newest first.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Page size (max 100)"  default(20)
// @Param        offset  query  int  false  "Offset"               default(0)
// @Success      200  {object}  MessagesResponse
// @Failure      400  {object}  map[string]string
// @Router       /messages [get]
func (h *MessageHandler) GetInbox(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}

	messages, total, err := h.messageUseCase.Inbox(c.Request.Context(), reader(c), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writePage(c, messages, total)
}

// GetUnreadCount godoc
// @Summary      Count unread messages
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UnreadResponse
// @Router       /messages/unread-count [get]
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	unread, err := h.messageUseCase.UnreadCount(c.Request.Context(), reader(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, UnreadResponse{Unread: unread})
}

// MarkRead godoc
// @Summary      Mark a message read
// @Description  Sets read_at on first read; later calls keep the original time
// @Tags         messages
// @Security     BearerAuth
// @Param        id   path  string  true  "Message ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	if err := h.messageUseCase.MarkRead(c.Request.Context(), reader(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSent godoc
// @Summary      List sent messages
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Page size (max 100)"  default(20)
// @Param        offset  query  int  false  "Offset"               default(0)
// @Success      200  {object}  MessagesResponse
// @Failure      400  {object}  map[string]string
// @Router       /messages/sent [get]
func (h *MessageHandler) GetSent(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}

	messages, total, err := h.messageUseCase.Sent(c.Request.Context(), c.GetString(middleware.ContextUserID), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writePage(c, messages, total)
}

// ListAllMessages godoc
// @Summary      List every message
// @Description  Admin only
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Page size (max 100)"  default(20)
// @Param        offset  query  int  false  "Offset"               default(0)
// @Success      200  {object}  MessagesResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/messages [get]
func (h *MessageHandler) ListAllMessages(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}

	messages, total, err := h.messageUseCase.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writePage(c, messages, total)
}

// DeleteMessage godoc
// @Summary      Delete a message
// @Description  Admin only
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Message ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/messages/{id} [delete]
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	if err := h.messageUseCase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) writePage(c *gin.Context, messages []entity.Message, total int64) {
	if messages == nil {
		messages = []entity.Message{}
	}
	c.JSON(http.StatusOK, MessagesResponse{Messages: messages, Total: total})
}

func (h *MessageHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrEmptyMessage), errors.Is(err, entity.ErrMessageTooLong), errors.Is(err, entity.ErrInvalidRecipient):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrSendForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrRecipientNotFound), errors.Is(err, entity.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrNoRecipients):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("[MESSAGES] request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
