package http

import (
	"errors"
	"net/http"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/billing/internal/entity"
	"learnflix/services/billing/internal/usecase"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billingUseCase usecase.BillingUseCase
	logger         *logger.Logger
}

func NewBillingHandler(billingUseCase usecase.BillingUseCase, logger *logger.Logger) *BillingHandler {
	return &BillingHandler{
		billingUseCase: billingUseCase,
		logger:         logger,
	}
}

type CaptureRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// CreateOrder godoc
// @Summary      Start a premium checkout
// @Description  Creates a PayPal order for one month of premium and returns its id for client-side approval
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  entity.Order
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /subscriptions/orders [post]
func (h *BillingHandler) CreateOrder(c *gin.Context) {
	order, err := h.billingUseCase.CreateOrder(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// CaptureOrder godoc
// @Summary      Capture an approved order
// @Description  Captures a PayPal order created by the caller and activates premium for one month. Capturing the same order again returns the existing subscription.
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CaptureRequest true "Approved order"
// @Success      200  {object}  entity.Subscription
// @Failure      400  {object}  map[string]string
// @Failure      402  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /subscriptions/capture [post]
func (h *BillingHandler) CaptureOrder(c *gin.Context) {
	var req CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.billingUseCase.CaptureOrder(c.Request.Context(), c.GetString(middleware.ContextUserID), req.OrderID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// GetStatus godoc
// @Summary      Get premium status
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Status
// @Failure      401  {object}  map[string]string
// @Router       /subscriptions/status [get]
func (h *BillingHandler) GetStatus(c *gin.Context) {
	status, err := h.billingUseCase.GetStatus(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListSubscriptions godoc
// @Summary      List the caller's subscriptions
// @Description  Newest first, including expired ones
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entity.Subscription
// @Failure      401  {object}  map[string]string
// @Router       /subscriptions [get]
func (h *BillingHandler) ListSubscriptions(c *gin.Context) {
	subs, err := h.billingUseCase.ListSubscriptions(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if subs == nil {
		subs = []*entity.Subscription{}
	}
	c.JSON(http.StatusOK, subs)
}

func (h *BillingHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrPaymentNotCompleted):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrOrderTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrPaymentGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": entity.ErrPaymentGateway.Error()})
	default:
		h.logger.Error("[BILLING] request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
