package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/email"
	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	"github.com/anesteasy/api/internal/service/policy"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/security"
	"github.com/anesteasy/api/pkg/validator"
)

const (
	LinkTTL     = 48 * time.Hour
	tokenLength = 32
)

var (
	ErrLinkExpired     = errors.New("feedback link expired")
	ErrAlreadyAnswered = errors.New("feedback already submitted")
)

type Authorizer interface {
	CanAccess(ctx context.Context, principal *model.Principal, action policy.Action, resource policy.Resource) policy.Decision
}

// Service issues single-use feedback links that let a surgeon report
// post-anesthesia complications for one procedure.
type Service struct {
	repo       repository.FeedbackRepository
	procedures repository.ProcedureRepository
	policy     Authorizer
	mailer     email.Service
	baseURL    string
	now        func() time.Time
}

func NewService(repo repository.FeedbackRepository, procedures repository.ProcedureRepository, policy Authorizer, mailer email.Service, baseURL string) *Service {
	return &Service{
		repo:       repo,
		procedures: procedures,
		policy:     policy,
		mailer:     mailer,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

func (s *Service) procedure(ctx context.Context, actor *model.Principal, action policy.Action, id uuid.UUID) (*model.Procedure, error) {
	p, err := s.procedures.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("procedure", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	res := policy.Resource{Kind: policy.ResourceFeedback, OwnerID: p.UserID, SecretaryID: p.SecretaryID}
	if err := s.policy.CanAccess(ctx, actor, action, res).Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) URL(token string) string {
	return fmt.Sprintf("%s/feedback/%s", s.baseURL, token)
}

func (s *Service) CreateLink(ctx context.Context, actor *model.Principal, procedureID uuid.UUID, req *model.CreateFeedbackLinkRequest) (*model.FeedbackLink, error) {
	p, err := s.procedure(ctx, actor, policy.ActionCreate, procedureID)
	if err != nil {
		return nil, err
	}

	token, err := security.RandomToken(tokenLength)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	link := &model.FeedbackLink{
		ProcedureID:  p.ID,
		SurgeonEmail: validator.NormalizeEmail(req.SurgeonEmail),
		SurgeonPhone: req.SurgeonPhone,
		Token:        token,
		ExpiresAt:    s.now().Add(LinkTTL),
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, apperrors.Internal(err)
	}

	if req.SendEmail {
		if err := s.mailer.SendFeedbackInvite(ctx, link.SurgeonEmail, p.ProcedureName, s.URL(token)); err != nil {
			log.Warn().Err(err).Str("procedure_id", p.ID.String()).Msg("Failed to send feedback invite")
		}
	}
	return link, nil
}

// Validate returns the live link for token.
func (s *Service) Validate(ctx context.Context, token string) (*model.FeedbackLink, error) {
	link, err := s.repo.GetLinkByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("feedback link", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if link.RespondedAt != nil {
		return nil, apperrors.Conflict(ErrAlreadyAnswered.Error(), ErrAlreadyAnswered)
	}
	if s.now().After(link.ExpiresAt) {
		return nil, apperrors.BadRequest(ErrLinkExpired.Error(), ErrLinkExpired)
	}
	return link, nil
}

func (s *Service) Submit(ctx context.Context, token string, req *model.SubmitFeedbackRequest) (*model.FeedbackResponse, error) {
	link, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	resp := &model.FeedbackResponse{
		FeedbackLinkID:    link.ID,
		NauseaVomiting:    req.NauseaVomiting,
		Headache:          req.Headache,
		BackPain:          req.BackPain,
		AnemiaTransfusion: req.AnemiaTransfusion,
	}
	if err := s.repo.SaveResponse(ctx, link, resp); err != nil {
		// the link was answered between Validate and the stamp
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Conflict(ErrAlreadyAnswered.Error(), ErrAlreadyAnswered)
		}
		return nil, apperrors.Internal(err)
	}
	return resp, nil
}

func (s *Service) Status(ctx context.Context, actor *model.Principal, procedureID uuid.UUID) (*model.FeedbackStatus, error) {
	if _, err := s.procedure(ctx, actor, policy.ActionRead, procedureID); err != nil {
		return nil, err
	}

	link, err := s.repo.GetLinkByProcedure(ctx, procedureID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Str("procedure_id", procedureID.String()).Msg("Failed to load feedback link")
		}
		return &model.FeedbackStatus{}, nil
	}

	sent := link.CreatedAt
	return &model.FeedbackStatus{
		LinkCreated:  true,
		LinkExpired:  link.RespondedAt == nil && s.now().After(link.ExpiresAt),
		Responded:    link.RespondedAt != nil,
		SurgeonEmail: link.SurgeonEmail,
		SentAt:       &sent,
		RespondedAt:  link.RespondedAt,
	}, nil
}

func (s *Service) Response(ctx context.Context, actor *model.Principal, procedureID uuid.UUID) (*model.FeedbackResponse, error) {
	if _, err := s.procedure(ctx, actor, policy.ActionRead, procedureID); err != nil {
		return nil, err
	}
	resp, err := s.repo.GetResponseByProcedure(ctx, procedureID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("feedback response", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return resp, nil
}
