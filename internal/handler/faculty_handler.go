package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-portal-api/internal/dto"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	"github.com/noah-isme/faculty-portal-api/pkg/response"
)

type directoryService interface {
	List(ctx context.Context) ([]models.DirectoryEntry, error)
}

// FacultyHandler serves the caller's own profile and the faculty directory.
type FacultyHandler struct {
	accounts  accountService
	directory directoryService
}

// NewFacultyHandler constructs a FacultyHandler.
func NewFacultyHandler(accounts accountService, directory directoryService) *FacultyHandler {
	return &FacultyHandler{accounts: accounts, directory: directory}
}

// Profile godoc
// @Summary Current profile
// @Tags Faculty
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/profile [get]
func (h *FacultyHandler) Profile(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	account, err := h.accounts.Get(c.Request.Context(), actor.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account.Profile(), nil)
}

// UpdateProfile godoc
// @Summary Update current profile
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /faculty/profile [put]
func (h *FacultyHandler) UpdateProfile(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid profile payload"))
		return
	}
	account, err := h.accounts.UpdateProfile(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account.Profile(), nil)
}

// Directory godoc
// @Summary Faculty directory
// @Tags Faculty
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faculty/all [get]
func (h *FacultyHandler) Directory(c *gin.Context) {
	entries, err := h.directory.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"total": len(entries)})
}
