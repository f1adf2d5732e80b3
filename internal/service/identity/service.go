package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/validator"
)

var (
	// ErrKindConflict means the same id was found in both principal tables.
	ErrKindConflict = errors.New("identity is registered as both anesthesiologist and secretary")

	ErrEmailTakenByAnesthesiologist = errors.New("cannot reuse anesthesiologist email")
	ErrEmailTakenBySecretary        = errors.New("cannot reuse secretary email")
	ErrCPFTakenByAnesthesiologist   = errors.New("cannot reuse anesthesiologist cpf")
	ErrCPFTakenBySecretary          = errors.New("cannot reuse secretary cpf")
)

type Service struct {
	principals        repository.PrincipalRepository
	anesthesiologists repository.AnesthesiologistRepository
	secretaries       repository.SecretaryRepository
}

func NewService(
	principals repository.PrincipalRepository,
	anesthesiologists repository.AnesthesiologistRepository,
	secretaries repository.SecretaryRepository,
) *Service {
	return &Service{
		principals:        principals,
		anesthesiologists: anesthesiologists,
		secretaries:       secretaries,
	}
}

// Resolve classifies id as exactly one principal kind. An unknown id resolves
// to a principal of kind none. Transport errors and ids present in both tables
// are returned as errors so callers can fail closed.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (*model.Principal, error) {
	rows, err := s.principals.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to classify identity: %w", err)
	}

	p := &model.Principal{ID: id, Kind: model.PrincipalNone}
	switch len(rows) {
	case 0:
		return p, nil
	case 1:
	default:
		return nil, ErrKindConflict
	}

	switch rows[0].Kind {
	case model.PrincipalAnesthesiologist:
		a, err := s.anesthesiologists.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return p, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load anesthesiologist: %w", err)
		}
		p.Kind = model.PrincipalAnesthesiologist
		p.Anesthesiologist = a
	case model.PrincipalSecretary:
		sec, err := s.secretaries.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return p, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load secretary: %w", err)
		}
		p.Kind = model.PrincipalSecretary
		p.Secretary = sec
	}
	return p, nil
}

func (s *Service) IsSecretary(ctx context.Context, id uuid.UUID) bool {
	p, err := s.Resolve(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("identity_id", id.String()).Msg("Failed to classify identity")
		return false
	}
	return p.IsSecretary()
}

func (s *Service) IsAnesthesiologist(ctx context.Context, id uuid.UUID) bool {
	p, err := s.Resolve(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("identity_id", id.String()).Msg("Failed to classify identity")
		return false
	}
	return p.IsAnesthesiologist()
}

// EnsureAvailable rejects an email or CPF that already belongs to the other
// principal kind. Rows owned by self are ignored so profile updates can keep
// their own values.
func (s *Service) EnsureAvailable(ctx context.Context, kind model.PrincipalKind, email string, cpf *string, self *uuid.UUID) error {
	if email != "" {
		rows, err := s.principals.FindByEmail(ctx, validator.NormalizeEmail(email))
		if err != nil {
			return apperrors.Internal(err)
		}
		if other := otherKind(rows, kind, self); other != model.PrincipalNone {
			if other == model.PrincipalAnesthesiologist {
				return apperrors.Conflict(ErrEmailTakenByAnesthesiologist.Error(), ErrEmailTakenByAnesthesiologist)
			}
			return apperrors.Conflict(ErrEmailTakenBySecretary.Error(), ErrEmailTakenBySecretary)
		}
	}

	if cpf != nil && *cpf != "" {
		rows, err := s.principals.FindByCPF(ctx, validator.NormalizeCPF(*cpf))
		if err != nil {
			return apperrors.Internal(err)
		}
		if other := otherKind(rows, kind, self); other != model.PrincipalNone {
			if other == model.PrincipalAnesthesiologist {
				return apperrors.Conflict(ErrCPFTakenByAnesthesiologist.Error(), ErrCPFTakenByAnesthesiologist)
			}
			return apperrors.Conflict(ErrCPFTakenBySecretary.Error(), ErrCPFTakenBySecretary)
		}
	}
	return nil
}

func otherKind(rows []model.PrincipalRow, kind model.PrincipalKind, self *uuid.UUID) model.PrincipalKind {
	for _, r := range rows {
		if self != nil && r.ID == *self {
			continue
		}
		if r.Kind != kind {
			return r.Kind
		}
	}
	return model.PrincipalNone
}

func (s *Service) UpdateAnesthesiologist(ctx context.Context, actor *model.Principal, req *model.UpdateAnesthesiologistRequest) (*model.Anesthesiologist, error) {
	if !actor.IsAnesthesiologist() {
		return nil, apperrors.Forbidden("only anesthesiologists can update this profile")
	}
	if err := s.EnsureAvailable(ctx, model.PrincipalAnesthesiologist, "", req.CPF, &actor.ID); err != nil {
		return nil, err
	}

	a := *actor.Anesthesiologist
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.CRM != nil {
		a.CRM = *req.CRM
	}
	if req.Specialty != nil {
		a.Specialty = *req.Specialty
	}
	if req.Phone != nil {
		a.Phone = req.Phone
	}
	if req.CPF != nil {
		cpf := validator.NormalizeCPF(*req.CPF)
		a.CPF = &cpf
	}

	if err := s.anesthesiologists.Update(ctx, &a); err != nil {
		return nil, apperrors.Internal(err)
	}
	return &a, nil
}

func (s *Service) UpdateSecretary(ctx context.Context, actor *model.Principal, req *model.UpdateSecretaryRequest) (*model.Secretary, error) {
	if !actor.IsSecretary() {
		return nil, apperrors.Forbidden("only secretaries can update this profile")
	}
	if err := s.EnsureAvailable(ctx, model.PrincipalSecretary, "", req.CPF, &actor.ID); err != nil {
		return nil, err
	}

	sec := *actor.Secretary
	if req.Name != nil {
		sec.Name = *req.Name
	}
	if req.Phone != nil {
		sec.Phone = req.Phone
	}
	if req.CPF != nil {
		cpf := validator.NormalizeCPF(*req.CPF)
		sec.CPF = &cpf
	}

	if err := s.secretaries.Update(ctx, &sec); err != nil {
		return nil, apperrors.Internal(err)
	}
	return &sec, nil
}
