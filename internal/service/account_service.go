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

type accountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	SetApproval(ctx context.Context, id string, approved bool) error
	Delete(ctx context.Context, id string) error
}

// AccountService manages the account lifecycle.
type AccountService struct {
	repo      accountRepository
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditTrail
	directory *DirectoryService
	notifier  *NotificationService
}

// NewAccountService constructs an AccountService.
func NewAccountService(repo accountRepository, audit AuditRepository, directory *DirectoryService, notifier *NotificationService, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccountService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		audit:     newAuditTrail(audit, logger),
		directory: directory,
		notifier:  notifier,
	}
}

// List returns every account.
func (s *AccountService) List(ctx context.Context, actor *models.Principal) ([]models.Account, error) {
	if err := requireAccountManager(actor); err != nil {
		return nil, err
	}
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list accounts")
	}
	return accounts, nil
}

// Get returns a single account.
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load account")
	}
	return account, nil
}

// Create adds an already approved account.
func (s *AccountService) Create(ctx context.Context, actor *models.Principal, req dto.CreateAccountRequest) (*models.Account, error) {
	if err := requireAccountManager(actor); err != nil {
		return nil, err
	}
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Role = models.Role(strings.ToLower(string(req.Role)))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid account payload")
	}
	if err := ensureEmailFree(ctx, s.repo, req.Email, ""); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}
	account := &models.Account{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Department:   trimmed(req.Department),
		Designation:  trimmed(req.Designation),
		IsApproved:   true,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if emailConflict(err) {
			return nil, appErrors.ErrEmailTaken
		}
		return nil, appErrors.Internal(err, "failed to create account")
	}

	s.audit.record(ctx, actor.AccountID, models.AuditActionAccountCreate, "account", account.ID, nil, account.Profile())
	s.directory.Invalidate(ctx)
	return account, nil
}

// Approve sets the approval flag. Repeated calls succeed without change.
func (s *AccountService) Approve(ctx context.Context, actor *models.Principal, id string) (*models.Account, error) {
	return s.setApproval(ctx, actor, id, true)
}

// Suspend clears the approval flag. Repeated calls succeed without change.
func (s *AccountService) Suspend(ctx context.Context, actor *models.Principal, id string) (*models.Account, error) {
	return s.setApproval(ctx, actor, id, false)
}

func (s *AccountService) setApproval(ctx context.Context, actor *models.Principal, id string, approved bool) (*models.Account, error) {
	if err := requireAccountManager(actor); err != nil {
		return nil, err
	}
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.IsApproved == approved {
		return account, nil
	}

	if err := s.repo.SetApproval(ctx, id, approved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to update approval")
	}
	account.IsApproved = approved

	action := models.AuditActionAccountSuspend
	if approved {
		action = models.AuditActionAccountApprove
		s.notifier.AccountApproved(account)
	}
	s.audit.record(ctx, actor.AccountID, action, "account", id,
		map[string]bool{"isApproved": !approved}, map[string]bool{"isApproved": approved})
	return account, nil
}

// UpdateProfile applies the owner's partial update to their own account.
func (s *AccountService) UpdateProfile(ctx context.Context, actor *models.Principal, req dto.UpdateProfileRequest) (*models.Account, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return s.update(ctx, actor, actor.AccountID, dto.AdminUpdateAccountRequest{UpdateProfileRequest: req})
}

// AdminUpdate applies a partial update to any account, including role and approval.
func (s *AccountService) AdminUpdate(ctx context.Context, actor *models.Principal, id string, req dto.AdminUpdateAccountRequest) (*models.Account, error) {
	if err := requireAccountManager(actor); err != nil {
		return nil, err
	}
	return s.update(ctx, actor, id, req)
}

func (s *AccountService) update(ctx context.Context, actor *models.Principal, id string, req dto.AdminUpdateAccountRequest) (*models.Account, error) {
	if req.Name = dropBlank(req.Name); req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = dropBlank(&email)
	}
	req.Password = dropBlank(req.Password)
	if req.Role != nil {
		role := models.Role(strings.ToLower(string(*req.Role)))
		req.Role = &role
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *account
	wasApproved := account.IsApproved

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Email != nil && *req.Email != account.Email {
		if err := ensureEmailFree(ctx, s.repo, *req.Email, account.ID); err != nil {
			return nil, err
		}
		account.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to hash password")
		}
		account.PasswordHash = hash
	}
	if req.Department != nil {
		account.Department = trimmed(req.Department)
	}
	if req.Designation != nil {
		account.Designation = trimmed(req.Designation)
	}
	if req.Role != nil {
		account.Role = *req.Role
	}
	if req.IsApproved != nil {
		account.IsApproved = *req.IsApproved
	}

	if err := s.repo.Update(ctx, account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		if emailConflict(err) {
			return nil, appErrors.ErrEmailTaken
		}
		return nil, appErrors.Internal(err, "failed to update account")
	}

	if !wasApproved && account.IsApproved {
		s.notifier.AccountApproved(account)
	}
	s.audit.record(ctx, actor.AccountID, models.AuditActionAccountUpdate, "account", account.ID, before.Profile(), account.Profile())
	s.directory.Invalidate(ctx)
	return account, nil
}

// Delete removes an account. Tasks and leave requests referencing it are kept.
func (s *AccountService) Delete(ctx context.Context, actor *models.Principal, id string) error {
	if err := requireAccountManager(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Internal(err, "failed to delete account")
	}
	s.audit.record(ctx, actor.AccountID, models.AuditActionAccountDelete, "account", id, nil, nil)
	s.directory.Invalidate(ctx)
	return nil
}

// EnsureAdmin creates an approved admin or promotes and approves the existing account with that email.
func (s *AccountService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.Account, bool, error) {
	email = normalizeEmail(email)
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = models.RoleAdmin
		existing.IsApproved = true
		if password != "" {
			hash, err := HashPassword(password)
			if err != nil {
				return nil, false, appErrors.Internal(err, "failed to hash password")
			}
			existing.PasswordHash = hash
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, false, appErrors.Internal(err, "failed to promote account")
		}
		s.directory.Invalidate(ctx)
		return existing, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, false, appErrors.Internal(err, "failed to check email")
	}

	admin := &models.Principal{Role: models.RoleAdmin}
	account, err := s.Create(ctx, admin, dto.CreateAccountRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func requireAccountManager(actor *models.Principal) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !actor.Role.CanManageAccounts() {
		return appErrors.Clone(appErrors.ErrForbidden, "not authorized as an admin")
	}
	return nil
}

// dropBlank clears a pointer whose value is empty after trimming.
func dropBlank(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	return optionalString(*value)
}
