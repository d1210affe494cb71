package dto

import "github.com/noah-isme/faculty-portal-api/internal/models"

// ApplyLeaveRequest captures POST /faculty/leave payload.
type ApplyLeaveRequest struct {
	Reason    string      `json:"reason" validate:"required"`
	StartDate models.Date `json:"startDate"`
	EndDate   models.Date `json:"endDate"`
}

// ReviewLeaveRequest captures PUT /admin/leaves/:id payload.
type ReviewLeaveRequest struct {
	Status       models.LeaveStatus `json:"status" validate:"required,oneof=Approved Rejected"`
	AdminComment *string            `json:"adminComment,omitempty"`
}
