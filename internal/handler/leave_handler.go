package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-portal-api/internal/dto"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	"github.com/noah-isme/faculty-portal-api/pkg/response"
)

type leaveService interface {
	Apply(ctx context.Context, actor *models.Principal, req dto.ApplyLeaveRequest) (*models.LeaveRequest, error)
	ListMine(ctx context.Context, actor *models.Principal) ([]models.LeaveRequest, error)
	ListAll(ctx context.Context, actor *models.Principal) ([]models.LeaveView, error)
	Review(ctx context.Context, actor *models.Principal, id string, req dto.ReviewLeaveRequest) (*models.LeaveView, error)
}

// LeaveHandler serves leave applications and reviews.
type LeaveHandler struct {
	service leaveService
}

// NewLeaveHandler constructs a LeaveHandler.
func NewLeaveHandler(svc leaveService) *LeaveHandler {
	return &LeaveHandler{service: svc}
}

// Apply godoc
// @Summary Apply for leave
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body dto.ApplyLeaveRequest true "Leave payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /faculty/leave [post]
func (h *LeaveHandler) Apply(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid leave payload"))
		return
	}
	leave, err := h.service.Apply(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, leave)
}

// Mine godoc
// @Summary My leave requests
// @Tags Faculty
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faculty/leaves [get]
func (h *LeaveHandler) Mine(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	leaves, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leaves, nil)
}

// All godoc
// @Summary All leave requests
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/leaves [get]
func (h *LeaveHandler) All(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	leaves, err := h.service.ListAll(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leaves, nil)
}

// Review godoc
// @Summary Review leave request
// @Description Approve or reject. A later review overwrites the earlier decision.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Leave ID"
// @Param payload body dto.ReviewLeaveRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/leaves/{id} [put]
func (h *LeaveHandler) Review(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.ReviewLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid review payload"))
		return
	}
	leave, err := h.service.Review(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave, nil)
}
