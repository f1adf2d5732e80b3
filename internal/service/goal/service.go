package goal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

type Service struct {
	repo repository.GoalRepository
}

func NewService(repo repository.GoalRepository) *Service {
	return &Service{repo: repo}
}

// Get returns the owner's monthly goal, or nil when none is set.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) *model.Goal {
	g, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to load goal")
		}
		return nil
	}
	return g
}

func (s *Service) Save(ctx context.Context, userID uuid.UUID, req *model.SaveGoalRequest) (*model.Goal, error) {
	if req.ResetDay < 1 || req.ResetDay > 31 {
		return nil, apperrors.Validation("reset_day must be between 1 and 31")
	}
	if req.TargetValue < 0 {
		return nil, apperrors.Validation("target_value cannot be negative")
	}

	g := &model.Goal{
		UserID:      userID,
		TargetValue: req.TargetValue,
		ResetDay:    req.ResetDay,
		IsEnabled:   req.IsEnabled,
	}
	if err := s.repo.Upsert(ctx, g); err != nil {
		return nil, apperrors.Internal(err)
	}
	return g, nil
}

func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("goal", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}
