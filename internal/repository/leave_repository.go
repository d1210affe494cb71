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

const leaveColumns = `id, account_id, reason, start_date, end_date, status, admin_comment, reviewed_by, reviewed_at, created_at, updated_at`

const leaveViewSelect = `SELECT l.id, l.account_id, l.reason, l.start_date, l.end_date, l.status, l.admin_comment, l.reviewed_by, l.reviewed_at, l.created_at, l.updated_at,
	owner.name AS owner_name, owner.email AS owner_email
	FROM leave_requests l
	LEFT JOIN accounts owner ON owner.id = l.account_id`

// LeaveRepository provides database access for leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository creates a new instance of LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a leave request.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.LeaveRequest) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = now
	}
	leave.UpdatedAt = now

	const query = `INSERT INTO leave_requests (id, account_id, reason, start_date, end_date, status, admin_comment, created_at, updated_at) VALUES (:id, :account_id, :reason, :start_date, :end_date, :status, :admin_comment, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, leave); err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

// FindByID returns a leave request by identifier.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1 LIMIT 1`
	var leave models.LeaveRequest
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		if err = notFoundOnBadID(err); err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find leave request by id: %w", err)
	}
	return &leave, nil
}

// FindView returns a leave request with its owner.
func (r *LeaveRepository) FindView(ctx context.Context, id string) (*models.LeaveView, error) {
	var view models.LeaveView
	if err := r.db.GetContext(ctx, &view, leaveViewSelect+` WHERE l.id = $1 LIMIT 1`, id); err != nil {
		if err = notFoundOnBadID(err); err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find leave view: %w", err)
	}
	view.Resolve()
	return &view, nil
}

// ListByAccount returns one account's requests, newest first.
func (r *LeaveRepository) ListByAccount(ctx context.Context, accountID string) ([]models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE account_id = $1 ORDER BY created_at DESC`
	leaves := []models.LeaveRequest{}
	if err := r.db.SelectContext(ctx, &leaves, query, accountID); err != nil {
		return nil, fmt.Errorf("list leave requests by account: %w", err)
	}
	return leaves, nil
}

// ListViews returns every request with its owner.
func (r *LeaveRepository) ListViews(ctx context.Context) ([]models.LeaveView, error) {
	views := []models.LeaveView{}
	if err := r.db.SelectContext(ctx, &views, leaveViewSelect+` ORDER BY l.created_at DESC`); err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	for i := range views {
		views[i].Resolve()
	}
	return views, nil
}

// SaveReview persists a review decision.
func (r *LeaveRepository) SaveReview(ctx context.Context, leave *models.LeaveRequest) error {
	leave.UpdatedAt = time.Now().UTC()
	const query = `UPDATE leave_requests SET status = :status, admin_comment = :admin_comment, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, leave)
	if err != nil {
		if err = notFoundOnBadID(err); err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("review leave request: %w", err)
	}
	return expectAffected(res, "review leave request")
}

// CountByStatus returns the number of requests per status.
func (r *LeaveRepository) CountByStatus(ctx context.Context) (map[models.LeaveStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS total FROM leave_requests GROUP BY status`
	var rows []struct {
		Status models.LeaveStatus `db:"status"`
		Total  int                `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count leave requests by status: %w", err)
	}
	counts := make(map[models.LeaveStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
