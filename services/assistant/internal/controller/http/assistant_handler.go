package http

import (
	"errors"
	"net/http"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/assistant/internal/entity"
	"learnflix/services/assistant/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AssistantHandler struct {
	assistantUseCase usecase.AssistantUseCase
	logger           *logger.Logger
}

func NewAssistantHandler(assistantUseCase usecase.AssistantUseCase, logger *logger.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistantUseCase: assistantUseCase,
		logger:           logger,
	}
}

type AskRequest struct {
	Messages []entity.Message `json:"messages" binding:"required"`
}

// LimitResponse is returned when the daily question allowance is spent.
type LimitResponse struct {
	Error        string `json:"error"`
	Reason       string `json:"reason"`
	CurrentCount int    `json:"current_count"`
	Limit        int    `json:"limit"`
}

// Ask godoc
// @Summary      Ask the study assistant
// @Description  Spends one question from today's allowance (unlimited for premium) and forwards the conversation to the AI gateway.
// @Tags         assistant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AskRequest true "Conversation so far, ending with the student's question"
// @Success      200  {object}  entity.Answer
// @Failure      400  {object}  map[string]string
// @Failure      402  {object}  map[string]string
// @Failure      429  {object}  LimitResponse
// @Failure      502  {object}  map[string]string
// @Router       /assistant/questions [post]
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: messages must be an array"})
		return
	}

	answer, err := h.assistantUseCase.Ask(c.Request.Context(), c.GetString(middleware.ContextUserID), req.Messages)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// GetUsage godoc
// @Summary      Get today's question usage
// @Tags         assistant
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Usage
// @Failure      500  {object}  map[string]string
// @Router       /assistant/usage [get]
func (h *AssistantHandler) GetUsage(c *gin.Context) {
	usage, err := h.assistantUseCase.GetUsage(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, usage)
}

func (h *AssistantHandler) writeError(c *gin.Context, err error) {
	var quotaErr *entity.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		c.JSON(http.StatusTooManyRequests, LimitResponse{
			Error:        quotaErr.Error(),
			Reason:       entity.ReasonDailyLimit,
			CurrentCount: quotaErr.Count,
			Limit:        quotaErr.Limit,
		})
	case errors.Is(err, entity.ErrInvalidMessages):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrAIRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limits exceeded, please try again later."})
	case errors.Is(err, entity.ErrAICredits):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "AI credits have been used up for this workspace. Please add funds to continue using the study assistant."})
	case errors.Is(err, entity.ErrAIGateway), errors.Is(err, entity.ErrAINotConfigured):
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI gateway error"})
	default:
		h.logger.Error("[ASSISTANT] request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
