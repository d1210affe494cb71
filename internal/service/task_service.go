package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-portal-api/internal/dto"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
)

type taskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	UpdateProgress(ctx context.Context, task *models.Task) error
	ListViews(ctx context.Context) ([]models.TaskView, error)
	ListViewsByAssignee(ctx context.Context, accountID string) ([]models.TaskView, error)
}

type accountFinder interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// TaskService manages task assignment and progress.
type TaskService struct {
	tasks     taskRepository
	accounts  accountFinder
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
	metrics   *MetricsService
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks taskRepository, accounts accountFinder, audit AuditRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TaskService{
		tasks:     tasks,
		accounts:  accounts,
		validator: validate,
		logger:    logger,
		audit:     newAuditTrail(audit, logger),
		metrics:   metrics,
	}
}

// Create assigns a new pending task.
func (s *TaskService) Create(ctx context.Context, actor *models.Principal, req dto.CreateTaskRequest) (*models.Task, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.CanCreateTask() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to assign tasks")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.AssignedTo = strings.TrimSpace(req.AssignedTo)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	if _, err := s.accounts.FindByID(ctx, req.AssignedTo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignee not found")
		}
		return nil, appErrors.Internal(err, "failed to load assignee")
	}

	task := &models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Deadline:     req.Deadline,
		Status:       models.TaskStatusPending,
		Progress:     0,
		AssignedToID: req.AssignedTo,
		AssignedByID: actor.AccountID,
	}
	if task.Deadline != nil && task.Deadline.IsZero() {
		task.Deadline = nil
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, appErrors.Internal(err, "failed to create task")
	}

	s.audit.record(ctx, actor.AccountID, models.AuditActionTaskCreate, "task", task.ID, nil, task)
	return task, nil
}

// Update applies explicit status/progress changes, then derives the status from progress.
func (s *TaskService) Update(ctx context.Context, actor *models.Principal, id string, req dto.UpdateTaskRequest) (*models.Task, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task update")
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Internal(err, "failed to load task")
	}
	if task.AssignedToID != actor.AccountID && !actor.Role.CanManageAnyTask() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to update this task")
	}

	before := *task
	applyTaskPatch(task, req.Patch())

	if err := s.tasks.UpdateProgress(ctx, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Internal(err, "failed to update task")
	}

	if task.Status != before.Status {
		s.metrics.RecordTaskTransition(string(task.Status))
	}
	s.audit.record(ctx, actor.AccountID, models.AuditActionTaskUpdate, "task", task.ID,
		map[string]interface{}{"status": before.Status, "progress": before.Progress},
		map[string]interface{}{"status": task.Status, "progress": task.Progress})
	return task, nil
}

// List returns all tasks for roles that may see them, otherwise the caller's own.
func (s *TaskService) List(ctx context.Context, actor *models.Principal) ([]models.TaskView, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	var (
		views []models.TaskView
		err   error
	)
	if actor.Role.CanViewAllTasks() {
		views, err = s.tasks.ListViews(ctx)
	} else {
		views, err = s.tasks.ListViewsByAssignee(ctx, actor.AccountID)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list tasks")
	}
	return views, nil
}

func applyTaskPatch(task *models.Task, patch models.TaskPatch) {
	if patch.Status != nil && *patch.Status != "" {
		task.Status = *patch.Status
	}
	if patch.Progress != nil {
		task.Progress = *patch.Progress
	}
	task.ApplyProgressRule()
}
