package procedure

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	"github.com/anesteasy/api/internal/service/policy"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

func (s *Service) ListInstallments(ctx context.Context, actor *model.Principal, procedureID uuid.UUID) ([]*model.Installment, error) {
	p, err := s.load(ctx, procedureID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, policy.ActionRead, resourceOf(policy.ResourceInstallment, p)); err != nil {
		return nil, err
	}
	installments, err := s.repo.ListInstallments(ctx, procedureID)
	if err != nil {
		log.Error().Err(err).Str("procedure_id", procedureID.String()).Msg("Failed to list installments")
		return []*model.Installment{}, nil
	}
	return installments, nil
}

// ReplaceInstallments swaps the installment plan of a procedure.
func (s *Service) ReplaceInstallments(ctx context.Context, actor *model.Principal, procedureID uuid.UUID, reqs []model.CreateInstallmentRequest) ([]*model.Installment, error) {
	p, err := s.load(ctx, procedureID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, policy.ActionCreate, resourceOf(policy.ResourceInstallment, p)); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(reqs))
	installments := make([]*model.Installment, 0, len(reqs))
	for _, r := range reqs {
		if _, dup := seen[r.Number]; dup {
			return nil, apperrors.Validation("installment numbers must be unique")
		}
		seen[r.Number] = struct{}{}
		installments = append(installments, &model.Installment{
			ProcedureID: procedureID,
			Number:      r.Number,
			Amount:      r.Amount,
			DueDate:     r.DueDate,
		})
	}

	if err := s.repo.DeleteInstallments(ctx, procedureID); err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.repo.CreateInstallments(ctx, installments); err != nil {
		return nil, apperrors.Internal(err)
	}
	return installments, nil
}

func (s *Service) UpdateInstallment(ctx context.Context, actor *model.Principal, installmentID uuid.UUID, req *model.UpdateInstallmentRequest) (*model.Installment, error) {
	in, err := s.repo.GetInstallment(ctx, installmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("installment", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	p, err := s.load(ctx, in.ProcedureID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, policy.ActionUpdate, resourceOf(policy.ResourceInstallment, p)); err != nil {
		return nil, err
	}

	if req.Amount != nil {
		in.Amount = *req.Amount
	}
	if req.DueDate != nil {
		in.DueDate = req.DueDate
	}
	if req.Received != nil {
		in.Received = *req.Received
		if !in.Received {
			in.ReceivedDate = nil
		}
	}
	if req.ReceivedDate != nil && in.Received {
		in.ReceivedDate = req.ReceivedDate
	}

	if err := s.repo.UpdateInstallment(ctx, in); err != nil {
		return nil, apperrors.Internal(err)
	}
	return in, nil
}

func (s *Service) DeleteInstallments(ctx context.Context, actor *model.Principal, procedureID uuid.UUID) error {
	p, err := s.load(ctx, procedureID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, policy.ActionDelete, resourceOf(policy.ResourceInstallment, p)); err != nil {
		return err
	}
	if err := s.repo.DeleteInstallments(ctx, procedureID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
