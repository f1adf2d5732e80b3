package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/anesteasy/api/internal/model"
)

type ShiftRepository struct {
	mock.Mock
}

func (m *ShiftRepository) Create(ctx context.Context, shift *model.Shift) error {
	return m.Called(ctx, shift).Error(0)
}

func (m *ShiftRepository) CreateBatch(ctx context.Context, shifts []*model.Shift) error {
	return m.Called(ctx, shifts).Error(0)
}

func (m *ShiftRepository) Get(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.Shift)
	return s, args.Error(1)
}

func (m *ShiftRepository) Update(ctx context.Context, shift *model.Shift) error {
	return m.Called(ctx, shift).Error(0)
}

func (m *ShiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ShiftRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Shift, error) {
	args := m.Called(ctx, ownerID)
	s, _ := args.Get(0).([]*model.Shift)
	return s, args.Error(1)
}

func (m *ShiftRepository) ListInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]*model.Shift, error) {
	args := m.Called(ctx, ownerID, start, end)
	s, _ := args.Get(0).([]*model.Shift)
	return s, args.Error(1)
}

func (m *ShiftRepository) FindOverlapping(ctx context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Shift, error) {
	args := m.Called(ctx, ownerID, start, end, excludeID)
	s, _ := args.Get(0).([]*model.Shift)
	return s, args.Error(1)
}

func (m *ShiftRepository) ListGroup(ctx context.Context, rootID uuid.UUID) ([]*model.Shift, error) {
	args := m.Called(ctx, rootID)
	s, _ := args.Get(0).([]*model.Shift)
	return s, args.Error(1)
}

func (m *ShiftRepository) UpdateCommonFields(ctx context.Context, ids []uuid.UUID, fields model.ShiftCommonFields) error {
	return m.Called(ctx, ids, fields).Error(0)
}

func (m *ShiftRepository) RegenerateSeries(ctx context.Context, parent *model.Shift, children []*model.Shift, common model.ShiftCommonFields) error {
	return m.Called(ctx, parent, children, common).Error(0)
}

func (m *ShiftRepository) ListExceptions(ctx context.Context, parentID uuid.UUID) ([]*model.ShiftException, error) {
	args := m.Called(ctx, parentID)
	e, _ := args.Get(0).([]*model.ShiftException)
	return e, args.Error(1)
}

func (m *ShiftRepository) UpsertException(ctx context.Context, exception *model.ShiftException) error {
	return m.Called(ctx, exception).Error(0)
}
