package policy

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type ResourceKind string

const (
	ResourceShift        ResourceKind = "shift"
	ResourceProcedure    ResourceKind = "procedure"
	ResourceInstallment  ResourceKind = "installment"
	ResourceGoal         ResourceKind = "goal"
	ResourceFeedback     ResourceKind = "feedback"
	ResourceNotification ResourceKind = "notification"
	ResourceDelegation   ResourceKind = "delegation"
	ResourceReport       ResourceKind = "report"
)

// Resource identifies what is being accessed by its owner. SecretaryID is the
// secretary a procedure is attributed to, if any.
type Resource struct {
	Kind        ResourceKind
	OwnerID     uuid.UUID
	SecretaryID *uuid.UUID
}

type Decision struct {
	Allowed bool
	Reason  string
}

// Err turns a denial into a forbidden AppError.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperrors.Forbidden(d.Reason)
}

func allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allowed: false, Reason: reason} }

// delegable lists what a linked secretary may do on an anesthesiologist's data.
var delegable = map[ResourceKind]map[Action]bool{
	ResourceProcedure: {
		ActionRead:   true,
		ActionCreate: true,
		ActionUpdate: true,
	},
	ResourceInstallment: {
		ActionRead:   true,
		ActionUpdate: true,
	},
}

// Engine is the single access decision point for owned resources.
type Engine struct {
	links repository.DelegationRepository
}

func NewEngine(links repository.DelegationRepository) *Engine {
	return &Engine{links: links}
}

func (e *Engine) CanAccess(ctx context.Context, principal *model.Principal, action Action, resource Resource) Decision {
	if principal == nil || principal.Kind == model.PrincipalNone {
		return deny("unauthenticated")
	}

	if principal.ID == resource.OwnerID {
		return allow("owner")
	}

	if !principal.IsSecretary() {
		return deny("not the owner")
	}

	if action == ActionRead && resource.SecretaryID != nil && *resource.SecretaryID == principal.ID {
		return allow("attributed")
	}

	if !delegable[resource.Kind][action] {
		return deny("action not delegated to secretaries")
	}

	linked, err := e.links.LinkExists(ctx, resource.OwnerID, principal.ID)
	if err != nil {
		log.Error().Err(err).
			Str("secretary_id", principal.ID.String()).
			Str("owner_id", resource.OwnerID.String()).
			Msg("Failed to check delegation link")
		return deny("delegation check failed")
	}
	if !linked {
		return deny("no delegation link")
	}
	return allow("delegated")
}
