package entitlement

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	"github.com/anesteasy/api/pkg/metrics"
)

const (
	TrialPeriod     = 7 * 24 * time.Hour
	FreeMonthPeriod = 30 * 24 * time.Hour
	// RefundWindowDays is the number of used days below which a refund is granted.
	RefundWindowDays = 8
)

type Resolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*model.Principal, error)
}

type Service struct {
	resolver          Resolver
	anesthesiologists repository.AnesthesiologistRepository
	subscriptions     repository.SubscriptionRepository
	metrics           *metrics.Metrics
	now               func() time.Time
}

func NewService(
	resolver Resolver,
	anesthesiologists repository.AnesthesiologistRepository,
	subscriptions repository.SubscriptionRepository,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		resolver:          resolver,
		anesthesiologists: anesthesiologists,
		subscriptions:     subscriptions,
		metrics:           metrics,
		now:               time.Now,
	}
}

// TrialEnd is trial_ends_at (or registration + 7 days) extended by the free
// month credit.
func TrialEnd(a *model.Anesthesiologist) time.Time {
	end := a.CreatedAt.Add(TrialPeriod)
	if a.TrialEndsAt != nil {
		end = *a.TrialEndsAt
	}
	if a.FreeMonths > 0 {
		end = end.Add(time.Duration(a.FreeMonths) * FreeMonthPeriod)
	}
	return end
}

func (s *Service) HasActiveEntitlement(ctx context.Context, id uuid.UUID) bool {
	return s.Check(ctx, id).HasAccess
}

// Check never fails open: any lookup error yields no access.
func (s *Service) Check(ctx context.Context, id uuid.UUID) *model.Access {
	access := s.check(ctx, id)
	if !access.HasAccess {
		s.metrics.EntitlementDenials.Inc()
	}
	return access
}

func (s *Service) check(ctx context.Context, id uuid.UUID) *model.Access {
	p, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("user_id", id.String()).Msg("Failed to resolve principal for entitlement")
		return &model.Access{Reason: "verification_error"}
	}

	switch {
	case p.IsSecretary():
		return &model.Access{HasAccess: true, Reason: "secretary"}
	case !p.IsAnesthesiologist():
		return &model.Access{Reason: "unknown_user"}
	}

	now := s.now()
	trialEnd := TrialEnd(p.Anesthesiologist)
	if !now.After(trialEnd) {
		return &model.Access{
			HasAccess:          true,
			Reason:             "trial",
			SubscriptionStatus: "trial",
			ExpiresAt:          &trialEnd,
			DaysRemaining:      daysUntil(now, trialEnd),
		}
	}

	sub, err := s.subscriptions.GetLatest(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.Access{Reason: "no_subscription"}
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", id.String()).Msg("Failed to load subscription")
		return &model.Access{Reason: "verification_error"}
	}

	return s.evaluate(ctx, p.Anesthesiologist, sub, now)
}

func (s *Service) evaluate(ctx context.Context, owner *model.Anesthesiologist, sub *model.Subscription, now time.Time) *model.Access {
	access := &model.Access{
		SubscriptionStatus: string(sub.Status),
		ExpiresAt:          sub.CurrentPeriodEnd,
	}
	withinPeriod := sub.CurrentPeriodEnd == nil || !now.After(*sub.CurrentPeriodEnd)
	if sub.CurrentPeriodEnd != nil && withinPeriod {
		access.DaysRemaining = daysUntil(now, *sub.CurrentPeriodEnd)
	}

	switch sub.Status {
	case model.SubscriptionActive:
		if withinPeriod {
			access.HasAccess = true
			access.Reason = "active_subscription"
			return access
		}
		s.expire(ctx, owner, sub)
		access.SubscriptionStatus = string(model.SubscriptionExpired)
		access.Reason = "subscription_expired"
	case model.SubscriptionCancelled:
		if sub.CurrentPeriodEnd != nil && withinPeriod {
			access.HasAccess = true
			access.Reason = "cancelled_until_period_end"
			return access
		}
		access.Reason = "subscription_cancelled"
	case model.SubscriptionPending:
		access.HasAccess = true
		access.Reason = "payment_pending"
	default:
		access.Reason = "subscription_" + string(sub.Status)
	}
	return access
}

// expire repairs an active row whose period already elapsed.
func (s *Service) expire(ctx context.Context, owner *model.Anesthesiologist, sub *model.Subscription) {
	if err := s.subscriptions.UpdateStatus(ctx, sub.ID, model.SubscriptionExpired); err != nil {
		log.Error().Err(err).Str("subscription_id", sub.ID.String()).Msg("Failed to expire subscription")
		return
	}
	if err := s.anesthesiologists.UpdateSubscriptionStatus(ctx, owner.ID, model.SubscriptionStatusInactive); err != nil {
		log.Error().Err(err).Str("user_id", owner.ID.String()).Msg("Failed to mark owner inactive")
	}
}

// DaysUsed counts whole days since the current period started, or -1 when
// there is no subscription.
func (s *Service) DaysUsed(ctx context.Context, userID uuid.UUID) int {
	sub, err := s.subscriptions.GetLatest(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to load subscription")
		}
		return -1
	}
	days := s.daysUsed(sub)
	if days != sub.DaysUsed {
		if err := s.subscriptions.UpdateDaysUsed(ctx, sub.ID, days); err != nil {
			log.Warn().Err(err).Str("subscription_id", sub.ID.String()).Msg("Failed to store days used")
		}
	}
	return days
}

func (s *Service) daysUsed(sub *model.Subscription) int {
	if sub.CurrentPeriodStart == nil {
		return 0
	}
	elapsed := s.now().Sub(*sub.CurrentPeriodStart)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

func (s *Service) RefundEligibility(ctx context.Context, userID uuid.UUID) *model.RefundEligibility {
	sub, err := s.subscriptions.GetLatest(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.RefundEligibility{Reason: "Nenhuma assinatura encontrada"}
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to load subscription")
		return &model.RefundEligibility{Reason: "Erro ao verificar assinatura"}
	}
	if sub.Status != model.SubscriptionActive {
		return &model.RefundEligibility{Reason: "Assinatura não está ativa"}
	}

	days := s.daysUsed(sub)
	if days < RefundWindowDays {
		return &model.RefundEligibility{Eligible: true, DaysUsed: days, Reason: "Dentro do prazo de reembolso"}
	}
	return &model.RefundEligibility{DaysUsed: days, Reason: "Prazo de reembolso de 7 dias expirado"}
}

func daysUntil(now, end time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}
