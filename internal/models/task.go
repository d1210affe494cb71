package models

import "time"

// TaskStatus enumerates task states.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Task is a unit of work assigned to an account.
type Task struct {
	ID           string     `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	Deadline     *Date      `db:"deadline" json:"deadline"`
	Status       TaskStatus `db:"status" json:"status"`
	Progress     int        `db:"progress" json:"progress"`
	AssignedToID string     `db:"assigned_to_id" json:"assignedToId"`
	AssignedByID string     `db:"assigned_by_id" json:"assignedById"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// ApplyProgressRule derives the status from progress after explicit updates were applied.
// Status never moves backwards when progress drops.
func (t *Task) ApplyProgressRule() {
	switch {
	case t.Progress == 100 && t.Status != TaskStatusCompleted:
		t.Status = TaskStatusCompleted
	case t.Progress > 0 && t.Progress < 100 && t.Status == TaskStatusPending:
		t.Status = TaskStatusInProgress
	}
}

// TaskView is a task joined with the names of the accounts it references.
type TaskView struct {
	Task
	AssignedToName *string `db:"assigned_to_name" json:"-"`
	AssignedByName *string `db:"assigned_by_name" json:"-"`

	AssignedUser *AccountRef `db:"-" json:"assignedUser"`
	CreatorUser  *AccountRef `db:"-" json:"creatorUser"`
}

// Resolve fills the nested account references from the joined columns.
func (v *TaskView) Resolve() {
	v.AssignedUser = nil
	v.CreatorUser = nil
	if v.AssignedToName != nil {
		v.AssignedUser = &AccountRef{ID: v.AssignedToID, Name: *v.AssignedToName}
	}
	if v.AssignedByName != nil {
		v.CreatorUser = &AccountRef{ID: v.AssignedByID, Name: *v.AssignedByName}
	}
}

// TaskPatch carries the optional fields of a task update.
type TaskPatch struct {
	Status   *TaskStatus
	Progress *int
}
