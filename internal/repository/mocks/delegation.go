package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/anesteasy/api/internal/model"
)

type DelegationRepository struct {
	mock.Mock
}

func (m *DelegationRepository) LinkExists(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, anesthesiologistID, secretaryID)
	return args.Bool(0), args.Error(1)
}

func (m *DelegationRepository) CreateLink(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) error {
	return m.Called(ctx, anesthesiologistID, secretaryID).Error(0)
}

func (m *DelegationRepository) DeleteLink(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) error {
	return m.Called(ctx, anesthesiologistID, secretaryID).Error(0)
}

func (m *DelegationRepository) ListAnesthesiologistIDs(ctx context.Context, secretaryID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, secretaryID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *DelegationRepository) ListSecretaries(ctx context.Context, anesthesiologistID uuid.UUID) ([]*model.Secretary, error) {
	args := m.Called(ctx, anesthesiologistID)
	s, _ := args.Get(0).([]*model.Secretary)
	return s, args.Error(1)
}

func (m *DelegationRepository) ListAnesthesiologists(ctx context.Context, secretaryID uuid.UUID) ([]*model.Anesthesiologist, error) {
	args := m.Called(ctx, secretaryID)
	a, _ := args.Get(0).([]*model.Anesthesiologist)
	return a, args.Error(1)
}

func (m *DelegationRepository) CreateRequest(ctx context.Context, req *model.LinkRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *DelegationRepository) GetRequest(ctx context.Context, id uuid.UUID) (*model.LinkRequest, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.LinkRequest)
	return r, args.Error(1)
}

func (m *DelegationRepository) GetRequestByNotification(ctx context.Context, notificationID uuid.UUID) (*model.LinkRequest, error) {
	args := m.Called(ctx, notificationID)
	r, _ := args.Get(0).(*model.LinkRequest)
	return r, args.Error(1)
}

func (m *DelegationRepository) FindPendingRequest(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) (*model.LinkRequest, error) {
	args := m.Called(ctx, anesthesiologistID, secretaryID)
	r, _ := args.Get(0).(*model.LinkRequest)
	return r, args.Error(1)
}

func (m *DelegationRepository) ListRequests(ctx context.Context, secretaryID uuid.UUID, status *model.LinkRequestStatus) ([]*model.LinkRequest, error) {
	args := m.Called(ctx, secretaryID, status)
	r, _ := args.Get(0).([]*model.LinkRequest)
	return r, args.Error(1)
}

func (m *DelegationRepository) AcceptRequest(ctx context.Context, req *model.LinkRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *DelegationRepository) TransitionRequest(ctx context.Context, id uuid.UUID, from, to model.LinkRequestStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}
