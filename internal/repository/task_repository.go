package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-portal-api/internal/models"
)

const taskColumns = `id, title, description, deadline, status, progress, assigned_to_id, assigned_by_id, created_at, updated_at`

const taskViewSelect = `SELECT t.id, t.title, t.description, t.deadline, t.status, t.progress, t.assigned_to_id, t.assigned_by_id, t.created_at, t.updated_at,
	assignee.name AS assigned_to_name, assigner.name AS assigned_by_name
	FROM tasks t
	LEFT JOIN accounts assignee ON assignee.id = t.assigned_to_id
	LEFT JOIN accounts assigner ON assigner.id = t.assigned_by_id`

// TaskRepository provides database access for tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	const query = `INSERT INTO tasks (id, title, description, deadline, status, progress, assigned_to_id, assigned_by_id, created_at, updated_at) VALUES (:id, :title, :description, :deadline, :status, :progress, :assigned_to_id, :assigned_by_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID returns a task by identifier.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 LIMIT 1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if err = notFoundOnBadID(err); err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task by id: %w", err)
	}
	return &task, nil
}

// UpdateProgress persists status and progress.
func (r *TaskRepository) UpdateProgress(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks SET status = :status, progress = :progress, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, task)
	if err != nil {
		if err = notFoundOnBadID(err); err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update task: %w", err)
	}
	return expectAffected(res, "update task")
}

// ListViews returns every task with the referenced account names.
func (r *TaskRepository) ListViews(ctx context.Context) ([]models.TaskView, error) {
	return r.selectViews(ctx, taskViewSelect+` ORDER BY t.created_at DESC`)
}

// ListViewsByAssignee returns the tasks assigned to one account.
func (r *TaskRepository) ListViewsByAssignee(ctx context.Context, accountID string) ([]models.TaskView, error) {
	return r.selectViews(ctx, taskViewSelect+` WHERE t.assigned_to_id = $1 ORDER BY t.created_at DESC`, accountID)
}

// CountByStatus returns the number of tasks per status.
func (r *TaskRepository) CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS total FROM tasks GROUP BY status`
	var rows []struct {
		Status models.TaskStatus `db:"status"`
		Total  int               `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	counts := make(map[models.TaskStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *TaskRepository) selectViews(ctx context.Context, query string, args ...interface{}) ([]models.TaskView, error) {
	views := []models.TaskView{}
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for i := range views {
		views[i].Resolve()
	}
	return views, nil
}
