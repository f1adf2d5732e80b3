package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/anesteasy/api/internal/model"
)

type PrincipalRepository struct {
	mock.Mock
}

func (m *PrincipalRepository) FindByID(ctx context.Context, id uuid.UUID) ([]model.PrincipalRow, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).([]model.PrincipalRow)
	return r, args.Error(1)
}

func (m *PrincipalRepository) FindByEmail(ctx context.Context, email string) ([]model.PrincipalRow, error) {
	args := m.Called(ctx, email)
	r, _ := args.Get(0).([]model.PrincipalRow)
	return r, args.Error(1)
}

func (m *PrincipalRepository) FindByCPF(ctx context.Context, cpf string) ([]model.PrincipalRow, error) {
	args := m.Called(ctx, cpf)
	r, _ := args.Get(0).([]model.PrincipalRow)
	return r, args.Error(1)
}

type AnesthesiologistRepository struct {
	mock.Mock
}

func (m *AnesthesiologistRepository) Create(ctx context.Context, a *model.Anesthesiologist) error {
	return m.Called(ctx, a).Error(0)
}

func (m *AnesthesiologistRepository) Get(ctx context.Context, id uuid.UUID) (*model.Anesthesiologist, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Anesthesiologist)
	return a, args.Error(1)
}

func (m *AnesthesiologistRepository) GetByEmail(ctx context.Context, email string) (*model.Anesthesiologist, error) {
	args := m.Called(ctx, email)
	a, _ := args.Get(0).(*model.Anesthesiologist)
	return a, args.Error(1)
}

func (m *AnesthesiologistRepository) Update(ctx context.Context, a *model.Anesthesiologist) error {
	return m.Called(ctx, a).Error(0)
}

func (m *AnesthesiologistRepository) UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status model.SubscriptionStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *AnesthesiologistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type SecretaryRepository struct {
	mock.Mock
}

func (m *SecretaryRepository) Create(ctx context.Context, s *model.Secretary) error {
	return m.Called(ctx, s).Error(0)
}

func (m *SecretaryRepository) Get(ctx context.Context, id uuid.UUID) (*model.Secretary, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.Secretary)
	return s, args.Error(1)
}

func (m *SecretaryRepository) GetByEmail(ctx context.Context, email string) (*model.Secretary, error) {
	args := m.Called(ctx, email)
	s, _ := args.Get(0).(*model.Secretary)
	return s, args.Error(1)
}

func (m *SecretaryRepository) Update(ctx context.Context, s *model.Secretary) error {
	return m.Called(ctx, s).Error(0)
}

func (m *SecretaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type CredentialRepository struct {
	mock.Mock
}

func (m *CredentialRepository) Create(ctx context.Context, c *model.Credential) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CredentialRepository) Get(ctx context.Context, id uuid.UUID) (*model.Credential, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Credential)
	return c, args.Error(1)
}

func (m *CredentialRepository) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	args := m.Called(ctx, email)
	c, _ := args.Get(0).(*model.Credential)
	return c, args.Error(1)
}

func (m *CredentialRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, temporary bool) error {
	return m.Called(ctx, id, hash, temporary).Error(0)
}

func (m *CredentialRepository) MarkEmailConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *CredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) Store(ctx context.Context, token *model.OneTimeToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *TokenRepository) Consume(ctx context.Context, token string, purpose model.TokenPurpose) (*model.OneTimeToken, error) {
	args := m.Called(ctx, token, purpose)
	t, _ := args.Get(0).(*model.OneTimeToken)
	return t, args.Error(1)
}
