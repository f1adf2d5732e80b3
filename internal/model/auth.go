package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Credential is the login identity shared by both principal kinds.
type Credential struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	EmailConfirmedAt *time.Time `db:"email_confirmed_at" json:"email_confirmed_at,omitempty"`
	Metadata         JSONB      `db:"metadata" json:"-"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

type TokenPurpose string

const (
	TokenPurposeEmailConfirmation TokenPurpose = "email_confirmation"
	TokenPurposePasswordReset     TokenPurpose = "password_reset"
)

// OneTimeToken backs email confirmation and password reset links.
type OneTimeToken struct {
	Token        string       `db:"token"`
	CredentialID uuid.UUID    `db:"credential_id"`
	Purpose      TokenPurpose `db:"purpose"`
	ExpiresAt    time.Time    `db:"expires_at"`
	UsedAt       *time.Time   `db:"used_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	Name      string  `json:"name" binding:"required,min=2,max=200"`
	CRM       string  `json:"crm" binding:"required,max=20"`
	Specialty string  `json:"specialty" binding:"required,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	CPF       *string `json:"cpf" binding:"omitempty,cpf"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type TokenResponse struct {
	AccessToken        string     `json:"access_token"`
	RefreshToken       string     `json:"refresh_token"`
	ExpiresAt          time.Time  `json:"expires_at"`
	Principal          *Principal `json:"principal,omitempty"`
	MustChangePassword bool       `json:"must_change_password,omitempty"`
}

type RegisterResponse struct {
	ID                   uuid.UUID `json:"id"`
	Email                string    `json:"email"`
	ConfirmationRequired bool      `json:"confirmation_required"`
}

type ConfirmEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Type   string    `json:"type"`
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)
