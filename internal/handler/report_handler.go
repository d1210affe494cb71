package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-portal-api/internal/dto"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	"github.com/noah-isme/faculty-portal-api/pkg/response"
)

type reportService interface {
	SystemReport(ctx context.Context, actor *models.Principal, format dto.ReportFormat) (*dto.ReportFile, error)
	FacultyReport(ctx context.Context, actor *models.Principal, accountID string) (*dto.ReportFile, error)
}

// ReportHandler streams generated reports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// System godoc
// @Summary System report
// @Description Institution-wide counts as PDF (default) or CSV
// @Tags Reports
// @Accept json
// @Produce application/pdf
// @Produce text/csv
// @Param payload body dto.SystemReportRequest false "Output format"
// @Param format query string false "pdf or csv"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/reports [post]
func (h *ReportHandler) System(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.SystemReportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err, "invalid report payload"))
			return
		}
	}
	if format := c.Query("format"); format != "" {
		req.Format = dto.ReportFormat(format)
	}

	file, err := h.service.SystemReport(c.Request.Context(), actor, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Body)
}

// Faculty godoc
// @Summary Faculty report
// @Description Profile, task analytics and leave history of one account
// @Tags Reports
// @Produce application/pdf
// @Param userId path string true "Account ID"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/reports/{userId} [get]
func (h *ReportHandler) Faculty(c *gin.Context) {
	actor, ok := principalFromContext(c)
	if !ok {
		return
	}
	file, err := h.service.FacultyReport(c.Request.Context(), actor, c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Body)
}
