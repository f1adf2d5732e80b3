package delegation

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
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/event"
	"github.com/anesteasy/api/pkg/messaging"
	"github.com/anesteasy/api/pkg/metrics"
	"github.com/anesteasy/api/pkg/security"
	"github.com/anesteasy/api/pkg/validator"
)

const tempPasswordLength = 10

var (
	ErrRequestNotPending = errors.New("link request is no longer pending")
	ErrNotLinked         = errors.New("secretary is not linked to this anesthesiologist")
)

// CollisionChecker enforces that an email or CPF belongs to one principal kind.
type CollisionChecker interface {
	EnsureAvailable(ctx context.Context, kind model.PrincipalKind, email string, cpf *string, self *uuid.UUID) error
}

type Deps struct {
	Secretaries       repository.SecretaryRepository
	Anesthesiologists repository.AnesthesiologistRepository
	Links             repository.DelegationRepository
	Credentials       repository.CredentialRepository
	Notifications     repository.NotificationRepository
	Identity          CollisionChecker
	Hasher            security.PasswordHasher
	Mailer            email.Service
	Events            event.Emitter
	Metrics           *metrics.Metrics
}

type Service struct {
	secretaries       repository.SecretaryRepository
	anesthesiologists repository.AnesthesiologistRepository
	links             repository.DelegationRepository
	credentials       repository.CredentialRepository
	notifications     repository.NotificationRepository
	identity          CollisionChecker
	hasher            security.PasswordHasher
	mailer            email.Service
	events            event.Emitter
	metrics           *metrics.Metrics
}

func NewService(d Deps) *Service {
	if d.Events == nil {
		d.Events = event.NopEmitter{}
	}
	return &Service{
		secretaries:       d.Secretaries,
		anesthesiologists: d.Anesthesiologists,
		links:             d.Links,
		credentials:       d.Credentials,
		notifications:     d.Notifications,
		identity:          d.Identity,
		hasher:            d.Hasher,
		mailer:            d.Mailer,
		events:            d.Events,
		metrics:           d.Metrics,
	}
}

// CreateOrLinkSecretary links the secretary with req.Email to the
// anesthesiologist, creating the secretary account with a temporary password
// when none exists. Linking an already linked pair is a no-op.
func (s *Service) CreateOrLinkSecretary(ctx context.Context, anesthesiologistID uuid.UUID, req *model.LinkSecretaryRequest) (*model.LinkResult, error) {
	addr := validator.NormalizeEmail(req.Email)
	if err := s.identity.EnsureAvailable(ctx, model.PrincipalSecretary, addr, nil, nil); err != nil {
		return nil, err
	}

	sec, err := s.secretaries.GetByEmail(ctx, addr)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		sec, err = s.provisionSecretary(ctx, anesthesiologistID, addr, req)
		if err != nil {
			return nil, err
		}
		if err := s.link(ctx, anesthesiologistID, sec.ID); err != nil {
			return nil, err
		}
		return &model.LinkResult{Secretary: sec, IsNew: true}, nil
	case err != nil:
		return nil, apperrors.Internal(err)
	}

	linked, err := s.links.LinkExists(ctx, anesthesiologistID, sec.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !linked {
		if err := s.link(ctx, anesthesiologistID, sec.ID); err != nil {
			return nil, err
		}
	}
	return &model.LinkResult{Secretary: sec}, nil
}

func (s *Service) link(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) error {
	if err := s.links.CreateLink(ctx, anesthesiologistID, secretaryID); err != nil {
		return apperrors.Internal(err)
	}
	s.emit(ctx, event.SecretaryLinked, &model.LinkEvent{
		AnesthesiologistID: anesthesiologistID,
		SecretaryID:        secretaryID,
		Status:             model.LinkRequestAccepted,
	})
	return nil
}

func (s *Service) provisionSecretary(ctx context.Context, anesthesiologistID uuid.UUID, addr string, req *model.LinkSecretaryRequest) (*model.Secretary, error) {
	password, err := security.TemporaryPassword(tempPasswordLength)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := time.Now()
	cred := &model.Credential{
		Email:            addr,
		PasswordHash:     hash,
		EmailConfirmedAt: &now,
		Metadata: model.JSONB{
			"kind":                 string(model.PrincipalSecretary),
			"must_change_password": true,
		},
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		return nil, apperrors.Internal(err)
	}

	name := strings.Split(addr, "@")[0]
	if req.Name != nil && *req.Name != "" {
		name = *req.Name
	}
	sec := &model.Secretary{
		Name:   name,
		Email:  addr,
		Phone:  req.Phone,
		Status: model.SecretaryStatusActive,
	}
	sec.ID = cred.ID
	if err := s.secretaries.Create(ctx, sec); err != nil {
		if delErr := s.credentials.Delete(ctx, cred.ID); delErr != nil {
			log.Error().Err(delErr).Str("credential_id", cred.ID.String()).Msg("Failed to roll back secretary credential")
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.mailer.SendTemporaryPassword(ctx, addr, name, password, s.ownerName(ctx, anesthesiologistID)); err != nil {
		log.Warn().Err(err).Str("secretary_id", sec.ID.String()).Msg("Failed to send temporary password")
	}
	log.Info().
		Str("secretary_id", sec.ID.String()).
		Str("anesthesiologist_id", anesthesiologistID.String()).
		Msg("Secretary account created")
	return sec, nil
}

func (s *Service) ownerName(ctx context.Context, id uuid.UUID) string {
	a, err := s.anesthesiologists.Get(ctx, id)
	if err != nil {
		return "Seu anestesiologista"
	}
	return a.Name
}

// GenerateInvite asks an existing secretary to accept a link through a
// pending request. Unknown emails get an account and a direct link instead.
func (s *Service) GenerateInvite(ctx context.Context, anesthesiologistID uuid.UUID, req *model.LinkSecretaryRequest) (*model.LinkResult, error) {
	addr := validator.NormalizeEmail(req.Email)
	if err := s.identity.EnsureAvailable(ctx, model.PrincipalSecretary, addr, nil, nil); err != nil {
		return nil, err
	}

	sec, err := s.secretaries.GetByEmail(ctx, addr)
	if errors.Is(err, repository.ErrNotFound) {
		return s.CreateOrLinkSecretary(ctx, anesthesiologistID, req)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	linked, err := s.links.LinkExists(ctx, anesthesiologistID, sec.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if linked {
		return &model.LinkResult{Secretary: sec}, nil
	}

	if _, err := s.links.FindPendingRequest(ctx, anesthesiologistID, sec.ID); err == nil {
		return &model.LinkResult{Secretary: sec, Pending: true}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	n := &model.Notification{
		UserID:  sec.ID,
		Title:   "Nova solicitação de vínculo",
		Message: fmt.Sprintf("%s deseja vincular você como secretária.", s.ownerName(ctx, anesthesiologistID)),
		Type:    model.NotificationLinkRequest,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, apperrors.Internal(err)
	}

	lr := &model.LinkRequest{
		AnesthesiologistID: anesthesiologistID,
		SecretaryID:        sec.ID,
		NotificationID:     &n.ID,
		Status:             model.LinkRequestPending,
	}
	if err := s.links.CreateRequest(ctx, lr); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.metrics.LinkRequests.WithLabelValues("created").Inc()
	s.emit(ctx, event.LinkRequestCreated, requestEvent(lr))
	return &model.LinkResult{Secretary: sec, Pending: true}, nil
}

func (s *Service) ownedRequest(ctx context.Context, secretaryID, requestID uuid.UUID) (*model.LinkRequest, error) {
	lr, err := s.links.GetRequest(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("link request", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if lr.SecretaryID != secretaryID {
		return nil, apperrors.Forbidden("link request addressed to another secretary")
	}
	return lr, nil
}

// RequestForNotification finds the request behind a link_request notification.
func (s *Service) RequestForNotification(ctx context.Context, secretaryID, notificationID uuid.UUID) (*model.LinkRequest, error) {
	lr, err := s.links.GetRequestByNotification(ctx, notificationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("link request", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if lr.SecretaryID != secretaryID {
		return nil, apperrors.Forbidden("link request addressed to another secretary")
	}
	return lr, nil
}

// Accept moves a pending request to accepted and creates the link. Accepting
// an accepted request again reports AlreadyLinked and writes nothing.
func (s *Service) Accept(ctx context.Context, secretaryID, requestID uuid.UUID) (*model.AcceptResult, error) {
	lr, err := s.ownedRequest(ctx, secretaryID, requestID)
	if err != nil {
		return nil, err
	}

	switch lr.Status {
	case model.LinkRequestAccepted:
		return &model.AcceptResult{Request: lr, AlreadyLinked: true}, nil
	case model.LinkRequestRejected:
		return nil, apperrors.Conflict(ErrRequestNotPending.Error(), ErrRequestNotPending)
	}

	linked, err := s.links.LinkExists(ctx, lr.AnesthesiologistID, lr.SecretaryID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.links.AcceptRequest(ctx, lr); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return nil, apperrors.Conflict(ErrRequestNotPending.Error(), ErrRequestNotPending)
		}
		return nil, apperrors.Internal(err)
	}

	s.metrics.LinkRequests.WithLabelValues("accepted").Inc()
	s.emit(ctx, event.LinkRequestAccepted, requestEvent(lr))
	return &model.AcceptResult{Request: lr, AlreadyLinked: linked}, nil
}

func (s *Service) Reject(ctx context.Context, secretaryID, requestID uuid.UUID) (*model.LinkRequest, error) {
	lr, err := s.ownedRequest(ctx, secretaryID, requestID)
	if err != nil {
		return nil, err
	}
	if lr.Status != model.LinkRequestPending {
		return nil, apperrors.Conflict(ErrRequestNotPending.Error(), ErrRequestNotPending)
	}

	ok, err := s.links.TransitionRequest(ctx, lr.ID, model.LinkRequestPending, model.LinkRequestRejected)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.Conflict(ErrRequestNotPending.Error(), ErrRequestNotPending)
	}
	lr.Status = model.LinkRequestRejected

	if lr.NotificationID != nil {
		if err := s.notifications.MarkRead(ctx, *lr.NotificationID); err != nil {
			log.Warn().Err(err).Str("notification_id", lr.NotificationID.String()).Msg("Failed to mark notification read")
		}
	}

	s.metrics.LinkRequests.WithLabelValues("rejected").Inc()
	s.emit(ctx, event.LinkRequestRejected, requestEvent(lr))
	return lr, nil
}

func (s *Service) ListRequests(ctx context.Context, secretaryID uuid.UUID, status *model.LinkRequestStatus) []*model.LinkRequest {
	reqs, err := s.links.ListRequests(ctx, secretaryID, status)
	if err != nil {
		log.Error().Err(err).Str("secretary_id", secretaryID.String()).Msg("Failed to list link requests")
		return []*model.LinkRequest{}
	}
	return reqs
}

// RevokeLink removes the link. Procedures already attributed to the secretary
// keep their attribution.
func (s *Service) RevokeLink(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) error {
	if err := s.links.DeleteLink(ctx, anesthesiologistID, secretaryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("delegation link", err)
		}
		return apperrors.Internal(err)
	}
	s.emit(ctx, event.SecretaryUnlinked, &model.LinkEvent{
		AnesthesiologistID: anesthesiologistID,
		SecretaryID:        secretaryID,
	})
	return nil
}

func (s *Service) ListSecretaries(ctx context.Context, anesthesiologistID uuid.UUID) []*model.Secretary {
	secs, err := s.links.ListSecretaries(ctx, anesthesiologistID)
	if err != nil {
		log.Error().Err(err).Str("anesthesiologist_id", anesthesiologistID.String()).Msg("Failed to list secretaries")
		return []*model.Secretary{}
	}
	return secs
}

func (s *Service) ListAnesthesiologists(ctx context.Context, secretaryID uuid.UUID) []*model.Anesthesiologist {
	owners, err := s.links.ListAnesthesiologists(ctx, secretaryID)
	if err != nil {
		log.Error().Err(err).Str("secretary_id", secretaryID.String()).Msg("Failed to list anesthesiologists")
		return []*model.Anesthesiologist{}
	}
	return owners
}

// ResendTemporaryPassword issues a new temporary password for a linked secretary.
func (s *Service) ResendTemporaryPassword(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) (*model.ResendPasswordResult, error) {
	linked, err := s.links.LinkExists(ctx, anesthesiologistID, secretaryID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !linked {
		return nil, apperrors.Forbidden(ErrNotLinked.Error())
	}

	sec, err := s.secretaries.Get(ctx, secretaryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("secretary", err)
		}
		return nil, apperrors.Internal(err)
	}

	password, err := security.TemporaryPassword(tempPasswordLength)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.credentials.UpdatePassword(ctx, secretaryID, hash, true); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.mailer.SendTemporaryPassword(ctx, sec.Email, sec.Name, password, s.ownerName(ctx, anesthesiologistID)); err != nil {
		log.Warn().Err(err).Str("secretary_id", secretaryID.String()).Msg("Failed to resend temporary password")
		return &model.ResendPasswordResult{Message: "Senha redefinida, mas o email não pôde ser enviado"}, nil
	}
	return &model.ResendPasswordResult{EmailSent: true, Message: "Nova senha temporária enviada"}, nil
}

func requestEvent(lr *model.LinkRequest) *model.LinkEvent {
	return &model.LinkEvent{
		RequestID:          lr.ID,
		AnesthesiologistID: lr.AnesthesiologistID,
		SecretaryID:        lr.SecretaryID,
		Status:             lr.Status,
	}
}

// emit records the event for the realtime feed; failures only cost liveness.
func (s *Service) emit(ctx context.Context, eventType event.EventType, payload *model.LinkEvent) {
	payload.Type = string(eventType)
	payload.OccurredAt = time.Now()
	channel := messaging.SecretaryLinkChannel(payload.SecretaryID)
	if err := s.events.Emit(ctx, eventType, channel, payload); err != nil {
		log.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to record link event")
	}
}
