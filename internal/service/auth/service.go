package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/email"
	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	"github.com/anesteasy/api/pkg/auth"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/security"
	"github.com/anesteasy/api/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidLinkToken   = errors.New("invalid or expired token")
	ErrNoProfile          = errors.New("account has no profile")
	ErrTooManyAttempts    = errors.New("registration retried too soon")
)

const (
	confirmTokenExpiry = 48 * time.Hour
	resetTokenExpiry   = time.Hour
	tokenLength        = 32

	TrialLength = 7 * 24 * time.Hour
	DefaultPlan = "premium"
)

type PrincipalResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*model.Principal, error)
	EnsureAvailable(ctx context.Context, kind model.PrincipalKind, email string, cpf *string, self *uuid.UUID) error
}

type Deps struct {
	Credentials       repository.CredentialRepository
	Tokens            repository.TokenRepository
	Anesthesiologists repository.AnesthesiologistRepository
	Identity          PrincipalResolver
	JWT               auth.JWTService
	Hasher            security.PasswordHasher
	Mailer            email.Service
	Limiter           *RegistrationLimiter
}

type Service struct {
	credentials       repository.CredentialRepository
	tokens            repository.TokenRepository
	anesthesiologists repository.AnesthesiologistRepository
	identity          PrincipalResolver
	jwtSvc            auth.JWTService
	hasher            security.PasswordHasher
	mailer            email.Service
	limiter           *RegistrationLimiter
	now               func() time.Time
}

func NewService(d Deps) *Service {
	if d.Limiter == nil {
		d.Limiter = NewRegistrationLimiter(RegistrationRetryWindow)
	}
	return &Service{
		credentials:       d.Credentials,
		tokens:            d.Tokens,
		anesthesiologists: d.Anesthesiologists,
		identity:          d.Identity,
		jwtSvc:            d.JWT,
		hasher:            d.Hasher,
		mailer:            d.Mailer,
		limiter:           d.Limiter,
		now:               time.Now,
	}
}

// Register creates anesthesiologist credentials pending email confirmation.
// The profile itself is created when the email is confirmed.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	addr := validator.NormalizeEmail(req.Email)
	if !s.limiter.Allow(addr, s.now()) {
		return nil, apperrors.TooManyRequests("aguarde alguns segundos antes de tentar novamente")
	}

	var cpf *string
	if req.CPF != nil && *req.CPF != "" {
		normalized := validator.NormalizeCPF(*req.CPF)
		cpf = &normalized
	}
	if err := s.identity.EnsureAvailable(ctx, model.PrincipalAnesthesiologist, addr, cpf, nil); err != nil {
		return nil, err
	}

	if _, err := s.credentials.GetByEmail(ctx, addr); err == nil {
		return nil, apperrors.Conflict(ErrEmailRegistered.Error(), ErrEmailRegistered)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordShort) {
			return nil, apperrors.Validation(err.Error())
		}
		return nil, apperrors.Internal(err)
	}

	metadata := model.JSONB{
		"kind":      string(model.PrincipalAnesthesiologist),
		"name":      req.Name,
		"crm":       req.CRM,
		"specialty": req.Specialty,
	}
	if req.Phone != nil {
		metadata["phone"] = *req.Phone
	}
	if cpf != nil {
		metadata["cpf"] = *cpf
	}
	cred := &model.Credential{Email: addr, PasswordHash: hash, Metadata: metadata}
	if err := s.credentials.Create(ctx, cred); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.issueToken(ctx, cred, model.TokenPurposeEmailConfirmation, confirmTokenExpiry); err != nil {
		log.Error().Err(err).Str("credential_id", cred.ID.String()).Msg("Failed to send confirmation email")
	}

	log.Info().Str("credential_id", cred.ID.String()).Msg("Anesthesiologist registered")
	return &model.RegisterResponse{ID: cred.ID, Email: addr, ConfirmationRequired: true}, nil
}

func (s *Service) issueToken(ctx context.Context, cred *model.Credential, purpose model.TokenPurpose, ttl time.Duration) error {
	token, err := security.RandomToken(tokenLength)
	if err != nil {
		return err
	}
	if err := s.tokens.Store(ctx, &model.OneTimeToken{
		Token:        token,
		CredentialID: cred.ID,
		Purpose:      purpose,
		ExpiresAt:    s.now().Add(ttl),
	}); err != nil {
		return err
	}

	if purpose == model.TokenPurposePasswordReset {
		return s.mailer.SendPasswordReset(ctx, cred.Email, token)
	}
	return s.mailer.SendEmailConfirmation(ctx, cred.Email, token)
}

// ConfirmEmail marks the email confirmed and materializes the anesthesiologist
// profile with a fresh trial.
func (s *Service) ConfirmEmail(ctx context.Context, token string) (*model.TokenResponse, error) {
	ott, err := s.tokens.Consume(ctx, token, model.TokenPurposeEmailConfirmation)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.BadRequest(ErrInvalidLinkToken.Error(), ErrInvalidLinkToken)
		}
		return nil, apperrors.Internal(err)
	}

	cred, err := s.credentials.Get(ctx, ott.CredentialID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	var cpf *string
	if v := cred.Metadata.String("cpf"); v != "" {
		cpf = &v
	}
	// A secretary may have taken the email or CPF since registration.
	if err := s.identity.EnsureAvailable(ctx, model.PrincipalAnesthesiologist, cred.Email, cpf, &cred.ID); err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.credentials.MarkEmailConfirmed(ctx, cred.ID, now); err != nil {
		return nil, apperrors.Internal(err)
	}
	cred.EmailConfirmedAt = &now

	if _, err := s.anesthesiologists.Get(ctx, cred.ID); errors.Is(err, repository.ErrNotFound) {
		if err := s.createProfile(ctx, cred, now); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, apperrors.Internal(err)
	}

	return s.session(ctx, cred)
}

func (s *Service) createProfile(ctx context.Context, cred *model.Credential, now time.Time) error {
	trialEnds := now.Add(TrialLength)
	a := &model.Anesthesiologist{
		Name:               cred.Metadata.String("name"),
		Email:              cred.Email,
		CRM:                cred.Metadata.String("crm"),
		Specialty:          cred.Metadata.String("specialty"),
		SubscriptionPlan:   DefaultPlan,
		SubscriptionStatus: model.SubscriptionStatusActive,
		TrialEndsAt:        &trialEnds,
	}
	a.ID = cred.ID
	if phone := cred.Metadata.String("phone"); phone != "" {
		a.Phone = &phone
	}
	if cpf := cred.Metadata.String("cpf"); cpf != "" {
		a.CPF = &cpf
	}
	if a.Name == "" {
		a.Name = cred.Email
	}
	if err := s.anesthesiologists.Create(ctx, a); err != nil {
		return apperrors.Internal(err)
	}

	if err := s.mailer.SendWelcome(ctx, a.Email, a.Name); err != nil {
		log.Warn().Err(err).Str("user_id", a.ID.String()).Msg("Failed to send welcome email")
	}
	return nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	cred, err := s.credentials.GetByEmail(ctx, validator.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(ErrInvalidCredentials)
		}
		return nil, apperrors.Internal(err)
	}
	if err := s.hasher.Compare(cred.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}
	if cred.EmailConfirmedAt == nil {
		return nil, apperrors.Forbidden(ErrEmailNotConfirmed.Error())
	}
	return s.session(ctx, cred)
}

func (s *Service) session(ctx context.Context, cred *model.Credential) (*model.TokenResponse, error) {
	principal, err := s.identity.Resolve(ctx, cred.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if principal.Kind == model.PrincipalNone {
		return nil, apperrors.Forbidden(ErrNoProfile.Error())
	}

	access, expiresAt, err := s.jwtSvc.GenerateAccessToken(cred.ID, cred.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(cred.ID, cred.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	mustChange, _ := cred.Metadata["must_change_password"].(bool)
	return &model.TokenResponse{
		AccessToken:        access,
		RefreshToken:       refresh,
		ExpiresAt:          expiresAt,
		Principal:          principal,
		MustChangePassword: mustChange,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	cred, err := s.credentials.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, apperrors.Internal(err)
	}
	return s.session(ctx, cred)
}

// ForgotPassword never reveals whether the email exists.
func (s *Service) ForgotPassword(ctx context.Context, addr string) {
	cred, err := s.credentials.GetByEmail(ctx, validator.NormalizeEmail(addr))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Msg("Failed to look up credential for password reset")
		}
		return
	}
	if err := s.issueToken(ctx, cred, model.TokenPurposePasswordReset, resetTokenExpiry); err != nil {
		log.Error().Err(err).Str("credential_id", cred.ID.String()).Msg("Failed to send password reset")
	}
}

func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	hash, err := s.hashNew(req.Password)
	if err != nil {
		return err
	}
	ott, err := s.tokens.Consume(ctx, req.Token, model.TokenPurposePasswordReset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.BadRequest(ErrInvalidLinkToken.Error(), ErrInvalidLinkToken)
		}
		return apperrors.Internal(err)
	}
	if err := s.credentials.UpdatePassword(ctx, ott.CredentialID, hash, false); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, req *model.ChangePasswordRequest) error {
	cred, err := s.credentials.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("credential", err)
		}
		return apperrors.Internal(err)
	}
	if err := s.hasher.Compare(cred.PasswordHash, req.CurrentPassword); err != nil {
		return apperrors.Unauthorized(ErrInvalidCredentials)
	}
	hash, err := s.hashNew(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.credentials.UpdatePassword(ctx, id, hash, false); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) hashNew(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordShort) {
			return "", apperrors.Validation(err.Error())
		}
		return "", apperrors.Internal(err)
	}
	return hash, nil
}
