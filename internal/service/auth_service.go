package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
)

type authAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
}

// AuthConfig defines configuration for session tokens.
type AuthConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// AuthService authenticates accounts and issues session tokens.
type AuthService struct {
	repo      authAccountRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	audit     auditTrail
	directory *DirectoryService
	metrics   *MetricsService
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authAccountRepository, audit AuditRepository, directory *DirectoryService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiry <= 0 {
		config.Expiry = 30 * 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		config:    config,
		audit:     newAuditTrail(audit, logger),
		directory: directory,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Login verifies credentials and issues a session token for approved accounts.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	res, err := s.login(ctx, req)
	s.metrics.RecordAuthAttempt("login", outcomeOf(err))
	return res, err
}

func (s *AuthService) login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	account, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Internal(err, "failed to fetch account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	if !account.IsApproved {
		return nil, appErrors.ErrAccountNotApproved
	}

	token, expiresAt, err := s.issueToken(account.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create session token")
	}

	s.audit.record(ctx, account.ID, models.AuditActionLogin, "auth", account.ID, nil, map[string]string{"status": "success"})

	return &models.LoginResponse{
		Profile:   account.Profile(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Register creates an unapproved account. Requests for the admin role are downgraded to lecturer.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	res, err := s.register(ctx, req)
	s.metrics.RecordAuthAttempt("register", outcomeOf(err))
	return res, err
}

func (s *AuthService) register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	role := models.Role(req.Role)
	if role == "" || role == models.RoleAdmin {
		role = models.RoleLecturer
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
		Role:         role,
		Department:   optionalString(req.Department),
		IsApproved:   false,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if emailConflict(err) {
			return nil, appErrors.ErrEmailTaken
		}
		return nil, appErrors.Internal(err, "failed to create account")
	}

	s.audit.record(ctx, account.ID, models.AuditActionRegister, "account", account.ID, nil, account.Profile())
	s.directory.Invalidate(ctx)

	return &models.RegisterResponse{
		ID:      account.ID,
		Name:    account.Name,
		Email:   account.Email,
		Role:    account.Role,
		Message: "Registration successful. Account pending approval.",
	}, nil
}

// ValidateToken checks signature, algorithm and expiry.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTokenInvalid.Code, appErrors.ErrTokenInvalid.Status, appErrors.ErrTokenInvalid.Message)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, appErrors.ErrTokenInvalid
	}
	return claims, nil
}

// Verify resolves a session token to the current account. The role comes from storage, not from the token.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*models.Principal, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAccountMissing
		}
		return nil, appErrors.Internal(err, "failed to load account")
	}

	return &models.Principal{
		AccountID: account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Role:      account.Role,
	}, nil
}

func (s *AuthService) issueToken(accountID string) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiry)
	claims := &models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// HashPassword bcrypt-hashes a raw password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type emailLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

// ensureEmailFree fails with EmailTaken when another account than selfID owns email.
func ensureEmailFree(ctx context.Context, repo emailLookup, email, selfID string) error {
	existing, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Internal(err, "failed to check email")
	}
	if existing.ID == selfID {
		return nil
	}
	return appErrors.ErrEmailTaken
}

const pgUniqueViolation = "23505"

// emailConflict reports a write rejected by the unique email index. It covers
// the race between ensureEmailFree and the insert.
func emailConflict(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	return strings.ToLower(appErrors.FromError(err).Code)
}
