package dto

import "github.com/noah-isme/faculty-portal-api/internal/models"

// CreateAccountRequest captures POST /admin/users payload.
type CreateAccountRequest struct {
	Name        string      `json:"name" validate:"required,max=255"`
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=6"`
	Role        models.Role `json:"role" validate:"required,oneof=admin hod lecturer"`
	Department  *string     `json:"department,omitempty" validate:"omitempty,max=255"`
	Designation *string     `json:"designation,omitempty" validate:"omitempty,max=255"`
}

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	Department  *string `json:"department,omitempty" validate:"omitempty,max=255"`
	Designation *string `json:"designation,omitempty" validate:"omitempty,max=255"`
}

// AdminUpdateAccountRequest extends the profile update with admin-only fields.
type AdminUpdateAccountRequest struct {
	UpdateProfileRequest
	Role       *models.Role `json:"role,omitempty" validate:"omitempty,oneof=admin hod lecturer"`
	IsApproved *bool        `json:"isApproved,omitempty"`
}

// ApprovalResponse reports the approval flag after approve/disapprove.
type ApprovalResponse struct {
	ID         string `json:"id"`
	IsApproved bool   `json:"isApproved"`
	Message    string `json:"message"`
}
