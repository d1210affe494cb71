package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-portal-api/internal/dto"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
)

type leaveRepository interface {
	Create(ctx context.Context, leave *models.LeaveRequest) error
	FindByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	FindView(ctx context.Context, id string) (*models.LeaveView, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.LeaveRequest, error)
	ListViews(ctx context.Context) ([]models.LeaveView, error)
	SaveReview(ctx context.Context, leave *models.LeaveRequest) error
}

// LeaveService runs the leave request workflow.
type LeaveService struct {
	leaves    leaveRepository
	accounts  accountFinder
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
	notifier  *NotificationService
	metrics   *MetricsService
	now       func() time.Time
}

// NewLeaveService constructs a LeaveService.
func NewLeaveService(leaves leaveRepository, accounts accountFinder, audit AuditRepository, notifier *NotificationService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LeaveService{
		leaves:    leaves,
		accounts:  accounts,
		validator: validate,
		logger:    logger,
		audit:     newAuditTrail(audit, logger),
		notifier:  notifier,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Apply files a pending request for the caller. Date order is not checked.
func (s *LeaveService) Apply(ctx context.Context, actor *models.Principal, req dto.ApplyLeaveRequest) (*models.LeaveRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate and endDate are required")
	}

	if _, err := s.accounts.FindByID(ctx, actor.AccountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load account")
	}

	leave := &models.LeaveRequest{
		AccountID: actor.AccountID,
		Reason:    req.Reason,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    models.LeaveStatusPending,
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, appErrors.Internal(err, "failed to create leave request")
	}

	s.audit.record(ctx, actor.AccountID, models.AuditActionLeaveApply, "leave", leave.ID, nil, leave)
	return leave, nil
}

// ListMine returns the caller's requests.
func (s *LeaveService) ListMine(ctx context.Context, actor *models.Principal) ([]models.LeaveRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	leaves, err := s.leaves.ListByAccount(ctx, actor.AccountID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list leave requests")
	}
	return leaves, nil
}

// ListAll returns every request with its owner.
func (s *LeaveService) ListAll(ctx context.Context, actor *models.Principal) ([]models.LeaveView, error) {
	if err := requireLeaveReviewer(actor); err != nil {
		return nil, err
	}
	views, err := s.leaves.ListViews(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list leave requests")
	}
	return views, nil
}

// Review decides a request. A re-review overwrites the previous decision; an empty comment keeps the old one.
func (s *LeaveService) Review(ctx context.Context, actor *models.Principal, id string, req dto.ReviewLeaveRequest) (*models.LeaveView, error) {
	if err := requireLeaveReviewer(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status must be Approved or Rejected")
	}

	leave, err := s.leaves.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave not found")
		}
		return nil, appErrors.Internal(err, "failed to load leave request")
	}
	before := *leave

	leave.Status = req.Status
	if req.AdminComment != nil && strings.TrimSpace(*req.AdminComment) != "" {
		comment := strings.TrimSpace(*req.AdminComment)
		leave.AdminComment = &comment
	}
	reviewer := actor.AccountID
	reviewedAt := s.now().UTC()
	leave.ReviewedBy = &reviewer
	leave.ReviewedAt = &reviewedAt

	if err := s.leaves.SaveReview(ctx, leave); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave not found")
		}
		return nil, appErrors.Internal(err, "failed to review leave request")
	}

	s.metrics.RecordLeaveDecision(string(leave.Status))
	s.audit.record(ctx, actor.AccountID, models.AuditActionLeaveReview, "leave", leave.ID,
		map[string]interface{}{"status": before.Status, "adminComment": before.AdminComment},
		map[string]interface{}{"status": leave.Status, "adminComment": leave.AdminComment})

	if owner, err := s.accounts.FindByID(ctx, leave.AccountID); err == nil {
		s.notifier.LeaveReviewed(owner, leave)
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("failed to load leave owner for notification", zap.String("leave_id", leave.ID), zap.Error(err))
	}

	view, err := s.leaves.FindView(ctx, leave.ID)
	if err != nil {
		s.logger.Warn("failed to reload reviewed leave", zap.String("leave_id", leave.ID), zap.Error(err))
		fallback := &models.LeaveView{LeaveRequest: *leave}
		return fallback, nil
	}
	return view, nil
}

func requireLeaveReviewer(actor *models.Principal) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !actor.Role.CanReviewLeave() {
		return appErrors.Clone(appErrors.ErrForbidden, "not authorized as an admin")
	}
	return nil
}
