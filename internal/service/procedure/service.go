package procedure

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	"github.com/anesteasy/api/internal/service/policy"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/event"
)

var (
	ErrOwnerRequired = errors.New("secretaries must name the anesthesiologist the procedure belongs to")
	ErrNoFields      = errors.New("no updatable fields given")
)

type Authorizer interface {
	CanAccess(ctx context.Context, principal *model.Principal, action policy.Action, resource policy.Resource) policy.Decision
}

// Service manages procedures for their owners and for linked secretaries.
type Service struct {
	repo          repository.ProcedureRepository
	links         repository.DelegationRepository
	notifications repository.NotificationRepository
	policy        Authorizer
	extractor     event.FieldExtractor
}

func NewService(
	repo repository.ProcedureRepository,
	links repository.DelegationRepository,
	notifications repository.NotificationRepository,
	policy Authorizer,
) *Service {
	return &Service{
		repo:          repo,
		links:         links,
		notifications: notifications,
		policy:        policy,
		extractor:     &event.DefaultFieldExtractor{},
	}
}

func resourceOf(kind policy.ResourceKind, p *model.Procedure) policy.Resource {
	return policy.Resource{Kind: kind, OwnerID: p.UserID, SecretaryID: p.SecretaryID}
}

func (s *Service) authorize(ctx context.Context, actor *model.Principal, action policy.Action, res policy.Resource) error {
	return s.policy.CanAccess(ctx, actor, action, res).Err()
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*model.Procedure, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("procedure", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, actor *model.Principal, req *model.CreateProcedureRequest) (*model.Procedure, error) {
	p := &model.Procedure{
		ProcedureName:  req.ProcedureName,
		ProcedureType:  req.ProcedureType,
		ProcedureDate:  req.ProcedureDate,
		ProcedureValue: req.ProcedureValue,
		PatientName:    req.PatientName,
		PatientAge:     req.PatientAge,
		PatientGender:  req.PatientGender,
		HospitalClinic: req.HospitalClinic,
		SurgeonName:    req.SurgeonName,
		AnesthesiaType: req.AnesthesiaType,
		DurationMin:    req.DurationMin,
		PaymentStatus:  model.PaymentStatusPending,
		PaymentMethod:  req.PaymentMethod,
		PaymentDate:    req.PaymentDate,
		Notes:          req.Notes,
	}
	if req.PaymentStatus != nil {
		p.PaymentStatus = *req.PaymentStatus
	}

	switch {
	case actor.IsSecretary():
		if req.UserID == nil {
			return nil, apperrors.Validation(ErrOwnerRequired.Error())
		}
		p.UserID = *req.UserID
		secretaryID := actor.ID
		p.SecretaryID = &secretaryID
	default:
		p.UserID = actor.ID
	}

	if err := s.authorize(ctx, actor, policy.ActionCreate, resourceOf(policy.ResourceProcedure, p)); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, actor *model.Principal, id uuid.UUID) (*model.Procedure, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, policy.ActionRead, resourceOf(policy.ResourceProcedure, p)); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns what the actor may see: their own procedures, or for a
// secretary the union of every linked owner's procedures and those attributed
// to them.
func (s *Service) List(ctx context.Context, actor *model.Principal) []*model.Procedure {
	if actor.IsSecretary() {
		return s.ListForSecretary(ctx, actor.ID)
	}
	return s.ListOwned(ctx, actor.ID)
}

func (s *Service) ListOwned(ctx context.Context, ownerID uuid.UUID) []*model.Procedure {
	procedures, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		log.Error().Err(err).Str("user_id", ownerID.String()).Msg("Failed to list procedures")
		return []*model.Procedure{}
	}
	return procedures
}

func (s *Service) ListForSecretary(ctx context.Context, secretaryID uuid.UUID) []*model.Procedure {
	ownerIDs, err := s.links.ListAnesthesiologistIDs(ctx, secretaryID)
	if err != nil {
		log.Error().Err(err).Str("secretary_id", secretaryID.String()).Msg("Failed to list linked anesthesiologists")
		ownerIDs = nil
	}

	var merged []*model.Procedure
	if len(ownerIDs) > 0 {
		owned, err := s.repo.ListByOwners(ctx, ownerIDs)
		if err != nil {
			log.Error().Err(err).Str("secretary_id", secretaryID.String()).Msg("Failed to list linked procedures")
		}
		merged = append(merged, owned...)
	}
	attributed, err := s.repo.ListBySecretary(ctx, secretaryID)
	if err != nil {
		log.Error().Err(err).Str("secretary_id", secretaryID.String()).Msg("Failed to list attributed procedures")
	}
	merged = append(merged, attributed...)

	seen := make(map[uuid.UUID]struct{}, len(merged))
	out := make([]*model.Procedure, 0, len(merged))
	for _, p := range merged {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ProcedureDate.Equal(out[j].ProcedureDate) {
			return out[i].ProcedureDate.After(out[j].ProcedureDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// UpdateDelegated applies a sparse update on behalf of the owner or a linked
// secretary, records one log row per changed field and tells the owner when a
// secretary made the change.
func (s *Service) UpdateDelegated(ctx context.Context, actor *model.Principal, id uuid.UUID, updates model.ProcedureUpdate) (*model.Procedure, error) {
	fields := make([]string, 0, len(updates))
	for column := range updates {
		if _, ok := model.ProcedureMutableFields[column]; !ok {
			return nil, apperrors.Validation(fmt.Sprintf("field %q cannot be updated", column))
		}
		fields = append(fields, column)
	}
	if len(fields) == 0 {
		return nil, apperrors.Validation(ErrNoFields.Error())
	}

	old, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, policy.ActionUpdate, resourceOf(policy.ResourceProcedure, old)); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("procedure", err)
		}
		return nil, apperrors.Internal(err)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := s.extractor.ExtractChanges(old, updated, fields)
	if len(changes) > 0 {
		s.recordChanges(ctx, actor, updated, changes)
	}
	return updated, nil
}

func (s *Service) recordChanges(ctx context.Context, actor *model.Principal, p *model.Procedure, changes []event.Change) {
	actorType := model.ActorAnesthesiologist
	if actor.IsSecretary() {
		actorType = model.ActorSecretary
	}

	logs := make([]*model.ProcedureLog, 0, len(changes))
	names := make([]string, 0, len(changes))
	for _, c := range changes {
		logs = append(logs, &model.ProcedureLog{
			ProcedureID:   p.ID,
			ChangedByID:   actor.ID,
			ChangedByType: actorType,
			ChangedByName: actor.DisplayName(),
			FieldName:     c.Field,
			OldValue:      c.Old,
			NewValue:      c.New,
		})
		names = append(names, c.Field)
	}
	if err := s.repo.CreateLogs(ctx, logs); err != nil {
		log.Error().Err(err).Str("procedure_id", p.ID.String()).Msg("Failed to record procedure changes")
	}

	if actorType != model.ActorSecretary {
		return
	}
	n := &model.Notification{
		UserID:  p.UserID,
		Title:   "Procedimento atualizado",
		Message: fmt.Sprintf("%s alterou %s em %s (%s).", actor.DisplayName(), strings.Join(names, ", "), p.ProcedureName, p.ProcedureDate.Format("02/01/2006")),
		Type:    model.NotificationInfo,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		log.Warn().Err(err).Str("procedure_id", p.ID.String()).Msg("Failed to notify owner of procedure change")
	}
}

func (s *Service) Delete(ctx context.Context, actor *model.Principal, id uuid.UUID) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, policy.ActionDelete, resourceOf(policy.ResourceProcedure, p)); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("procedure", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ListLogs(ctx context.Context, actor *model.Principal, id uuid.UUID) ([]*model.ProcedureLog, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListLogs(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("procedure_id", id.String()).Msg("Failed to list procedure logs")
		return []*model.ProcedureLog{}, nil
	}
	return logs, nil
}

func isInstallmentPlan(p *model.Procedure) bool {
	if p.PaymentMethod == nil {
		return false
	}
	method := strings.ToLower(*p.PaymentMethod)
	return method == model.PaymentMethodInstallments || method == "parcelado"
}

// Stats totals the owner's procedures by payment state. Installment plans count
// received installments as completed and the remainder as pending.
func (s *Service) Stats(ctx context.Context, ownerID uuid.UUID) *model.ProcedureStats {
	procedures, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		log.Error().Err(err).Str("user_id", ownerID.String()).Msg("Failed to load procedures for stats")
		return &model.ProcedureStats{}
	}
	return s.summarize(ctx, procedures)
}

func (s *Service) summarize(ctx context.Context, procedures []*model.Procedure) *model.ProcedureStats {
	stats := &model.ProcedureStats{Total: len(procedures)}

	var planIDs []uuid.UUID
	for _, p := range procedures {
		if isInstallmentPlan(p) {
			planIDs = append(planIDs, p.ID)
		}
	}
	received := make(map[uuid.UUID]float64, len(planIDs))
	if len(planIDs) > 0 {
		installments, err := s.repo.ListInstallmentsByProcedures(ctx, planIDs)
		if err != nil {
			log.Error().Err(err).Int("procedures", len(planIDs)).Msg("Failed to load installments for stats")
		}
		for _, in := range installments {
			if in.Received {
				received[in.ProcedureID] += in.Amount
			}
		}
	}

	for _, p := range procedures {
		stats.TotalValue += p.ProcedureValue
		if isInstallmentPlan(p) {
			got := received[p.ID]
			if got > 0 {
				stats.Completed++
				stats.CompletedValue += got
			}
			if rest := p.ProcedureValue - got; rest > 0 {
				stats.Pending++
				stats.PendingValue += rest
			}
			continue
		}
		switch p.PaymentStatus {
		case model.PaymentStatusPaid:
			stats.Completed++
			stats.CompletedValue += p.ProcedureValue
		case model.PaymentStatusPending:
			stats.Pending++
			stats.PendingValue += p.ProcedureValue
		case model.PaymentStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

// Summarize computes stats for an already loaded set of procedures.
func (s *Service) Summarize(ctx context.Context, procedures []*model.Procedure) *model.ProcedureStats {
	return s.summarize(ctx, procedures)
}

func (s *Service) ListInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) []*model.Procedure {
	procedures, err := s.repo.ListByDateRange(ctx, ownerID, start, end)
	if err != nil {
		log.Error().Err(err).Str("user_id", ownerID.String()).Msg("Failed to list procedures in range")
		return []*model.Procedure{}
	}
	return procedures
}
