package dto

import "github.com/noah-isme/faculty-portal-api/internal/models"

// CreateTaskRequest captures POST /tasks payload.
type CreateTaskRequest struct {
	Title       string       `json:"title" validate:"required,max=255"`
	Description string       `json:"description"`
	AssignedTo  string       `json:"assignedTo" validate:"required"`
	Deadline    *models.Date `json:"deadline,omitempty"`
}

// UpdateTaskRequest captures PUT /tasks/:id payload.
type UpdateTaskRequest struct {
	Status   *models.TaskStatus `json:"status,omitempty" validate:"omitempty,oneof=Pending 'In Progress' Completed"`
	Progress *int               `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
}

// Patch converts the payload into a model patch.
func (r UpdateTaskRequest) Patch() models.TaskPatch {
	return models.TaskPatch{Status: r.Status, Progress: r.Progress}
}
