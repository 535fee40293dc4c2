package http

import (
	"errors"
	"net/http"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/auth/internal/entity"
	"learnflix/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
)

type IPLimitHandler struct {
	ipLimitUseCase usecase.IPLimitUseCase
	logger         *logger.Logger
}

func NewIPLimitHandler(ipLimitUseCase usecase.IPLimitUseCase, logger *logger.Logger) *IPLimitHandler {
	return &IPLimitHandler{
		ipLimitUseCase: ipLimitUseCase,
		logger:         logger,
	}
}

type BypassRequestBody struct {
	Role   string `json:"role" binding:"omitempty,oneof=student teacher"`
	Reason string `json:"reason"`
}

type EligibilityResponse struct {
	Allowed bool   `json:"allowed"`
	Role    string `json:"role"`
}

// CheckEligibility godoc
// @Summary      Check the network account limit
// @Description  Reports whether the caller's network may register another account of the role
// @Tags         registration
// @Produce      json
// @Param        role  query  string  false  "student or teacher"  default(student)
// @Success      200  {object}  EligibilityResponse
// @Failure      400  {object}  map[string]string
// @Router       /registration/eligibility [get]
func (h *IPLimitHandler) CheckEligibility(c *gin.Context) {
	role := entity.UserRole(c.DefaultQuery("role", string(entity.RoleStudent)))
	allowed, err := h.ipLimitUseCase.CanRegister(c.Request.Context(), c.ClientIP(), role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, EligibilityResponse{Allowed: allowed, Role: string(role)})
}

// RequestBypass godoc
// @Summary      Ask for one more account on this network
// @Description  Creates a pending request for an admin to review. One pending request per network and role.
// @Tags         registration
// @Accept       json
// @Produce      json
// @Param        request body BypassRequestBody true "Bypass request"
// @Success      202  {object}  entity.BypassRequest
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /registration/bypass-requests [post]
func (h *IPLimitHandler) RequestBypass(c *gin.Context) {
	var req BypassRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bypass, err := h.ipLimitUseCase.RequestBypass(c.Request.Context(), c.ClientIP(), entity.UserRole(req.Role), req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, bypass)
}

// ListBypassRequests godoc
// @Summary      List network bypass requests
// @Description  Admin only. Newest first.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "pending, approved, rejected or used"  default(pending)
// @Success      200  {array}   entity.BypassRequest
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /admin/ip-bypass-requests [get]
func (h *IPLimitHandler) ListBypassRequests(c *gin.Context) {
	reqs, err := h.ipLimitUseCase.ListBypassRequests(c.Request.Context(), entity.BypassStatus(c.Query("status")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if reqs == nil {
		reqs = []*entity.BypassRequest{}
	}
	c.JSON(http.StatusOK, reqs)
}

// ApproveBypassRequest godoc
// @Summary      Approve a bypass request
// @Description  Admin only. The network may then register one more account of the requested role.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Request ID"
// @Success      200  {object}  entity.BypassRequest
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/ip-bypass-requests/{id}/approve [post]
func (h *IPLimitHandler) ApproveBypassRequest(c *gin.Context) {
	h.review(c, true)
}

// RejectBypassRequest godoc
// @Summary      Reject a bypass request
// @Description  Admin only
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Request ID"
// @Success      200  {object}  entity.BypassRequest
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/ip-bypass-requests/{id}/reject [post]
func (h *IPLimitHandler) RejectBypassRequest(c *gin.Context) {
	h.review(c, false)
}

func (h *IPLimitHandler) review(c *gin.Context, approve bool) {
	bypass, err := h.ipLimitUseCase.ReviewBypassRequest(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextUserID), approve)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bypass)
}

func (h *IPLimitHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidRole), errors.Is(err, entity.ErrAdminRegistration),
		errors.Is(err, entity.ErrInvalidBypassState), errors.Is(err, entity.ErrUnknownClientIP):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrBypassNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrBypassPending), errors.Is(err, entity.ErrBypassReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("[AUTH] registration limit request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
