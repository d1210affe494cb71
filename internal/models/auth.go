package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an account.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// RegisterRequest is the self-service signup payload.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"omitempty,oneof=admin hod lecturer"`
	Department string `json:"department" validate:"omitempty,max=255"`
}

// LoginResponse returns the session token with the caller's profile.
type LoginResponse struct {
	Profile
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterResponse confirms a pending registration.
type RegisterResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	Message string `json:"message"`
}

// JWTClaims is the session token payload. The subject is the account id.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// Principal is the verified caller attached to a request.
type Principal struct {
	AccountID string
	Name      string
	Email     string
	Role      Role
}
