package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-portal-api/internal/dto"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	"github.com/noah-isme/faculty-portal-api/pkg/response"
)

type accountService interface {
	List(ctx context.Context, actor *models.Principal) ([]models.Account, error)
	Get(ctx context.Context, id string) (*models.Account, error)
	Create(ctx context.Context, actor *models.Principal, req dto.CreateAccountRequest) (*models.Account, error)
	Approve(ctx context.Context, actor *models.Principal, id string) (*models.Account, error)
	Suspend(ctx context.Context, actor *models.Principal, id string) (*models.Account, error)
	UpdateProfile(ctx context.Context, actor *models.Principal, req dto.UpdateProfileRequest) (*models.Account, error)
	AdminUpdate(ctx context.Context, actor *models.Principal, id string, req dto.AdminUpdateAccountRequest) (*models.Account, error)
	Delete(ctx context.Context, actor *models.Principal, id string) error
}

// AccountHandler serves the admin account management endpoints.
type AccountHandler struct {
	service accountService
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(svc accountService) *AccountHandler {
	return &AccountHandler{service: svc}
}

// List godoc
// @Summary List accounts
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
func (h *AccountHandler) List(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	accounts, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts, map[string]interface{}{"total": len(accounts)})
}

// Create godoc
// @Summary Create account
// @Description Admin-created accounts are approved immediately
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.CreateAccountRequest true "Account payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/users [post]
func (h *AccountHandler) Create(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid account payload"))
		return
	}
	account, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, account)
}

// Update godoc
// @Summary Update account
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param payload body dto.AdminUpdateAccountRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.AdminUpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid account payload"))
		return
	}
	account, err := h.service.AdminUpdate(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account, nil)
}

// Delete godoc
// @Summary Delete account
// @Tags Admin
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "User removed"}, nil)
}

// Approve godoc
// @Summary Approve account
// @Tags Admin
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/approve [put]
func (h *AccountHandler) Approve(c *gin.Context) {
	h.setApproval(c, true)
}

// Disapprove godoc
// @Summary Suspend account
// @Tags Admin
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/disapprove [put]
func (h *AccountHandler) Disapprove(c *gin.Context) {
	h.setApproval(c, false)
}

func (h *AccountHandler) setApproval(c *gin.Context, approved bool) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	var (
		account *models.Account
		err     error
		message = "User approved"
	)
	if approved {
		account, err = h.service.Approve(c.Request.Context(), actor, c.Param("id"))
	} else {
		account, err = h.service.Suspend(c.Request.Context(), actor, c.Param("id"))
		message = "User suspended"
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ApprovalResponse{ID: account.ID, IsApproved: account.IsApproved, Message: message}, nil)
}
