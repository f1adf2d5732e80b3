package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/anesteasy/api/internal/model"
)

type ProcedureRepository struct {
	mock.Mock
}

func (m *ProcedureRepository) Create(ctx context.Context, p *model.Procedure) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProcedureRepository) Get(ctx context.Context, id uuid.UUID) (*model.Procedure, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Procedure)
	return p, args.Error(1)
}

func (m *ProcedureRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Procedure, error) {
	args := m.Called(ctx, ownerID)
	p, _ := args.Get(0).([]*model.Procedure)
	return p, args.Error(1)
}

func (m *ProcedureRepository) ListByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]*model.Procedure, error) {
	args := m.Called(ctx, ownerIDs)
	p, _ := args.Get(0).([]*model.Procedure)
	return p, args.Error(1)
}

func (m *ProcedureRepository) ListBySecretary(ctx context.Context, secretaryID uuid.UUID) ([]*model.Procedure, error) {
	args := m.Called(ctx, secretaryID)
	p, _ := args.Get(0).([]*model.Procedure)
	return p, args.Error(1)
}

func (m *ProcedureRepository) ListByDateRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]*model.Procedure, error) {
	args := m.Called(ctx, ownerID, start, end)
	p, _ := args.Get(0).([]*model.Procedure)
	return p, args.Error(1)
}

func (m *ProcedureRepository) Update(ctx context.Context, id uuid.UUID, fields model.ProcedureUpdate) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *ProcedureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProcedureRepository) CreateLogs(ctx context.Context, logs []*model.ProcedureLog) error {
	return m.Called(ctx, logs).Error(0)
}

func (m *ProcedureRepository) ListLogs(ctx context.Context, procedureID uuid.UUID) ([]*model.ProcedureLog, error) {
	args := m.Called(ctx, procedureID)
	l, _ := args.Get(0).([]*model.ProcedureLog)
	return l, args.Error(1)
}

func (m *ProcedureRepository) ListInstallments(ctx context.Context, procedureID uuid.UUID) ([]*model.Installment, error) {
	args := m.Called(ctx, procedureID)
	i, _ := args.Get(0).([]*model.Installment)
	return i, args.Error(1)
}

func (m *ProcedureRepository) ListInstallmentsByProcedures(ctx context.Context, procedureIDs []uuid.UUID) ([]*model.Installment, error) {
	args := m.Called(ctx, procedureIDs)
	i, _ := args.Get(0).([]*model.Installment)
	return i, args.Error(1)
}

func (m *ProcedureRepository) GetInstallment(ctx context.Context, id uuid.UUID) (*model.Installment, error) {
	args := m.Called(ctx, id)
	i, _ := args.Get(0).(*model.Installment)
	return i, args.Error(1)
}

func (m *ProcedureRepository) CreateInstallments(ctx context.Context, installments []*model.Installment) error {
	return m.Called(ctx, installments).Error(0)
}

func (m *ProcedureRepository) UpdateInstallment(ctx context.Context, installment *model.Installment) error {
	return m.Called(ctx, installment).Error(0)
}

func (m *ProcedureRepository) DeleteInstallments(ctx context.Context, procedureID uuid.UUID) error {
	return m.Called(ctx, procedureID).Error(0)
}
