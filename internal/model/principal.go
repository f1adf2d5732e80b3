package model

import (
	"time"

	"github.com/google/uuid"
)

type PrincipalKind string

const (
	PrincipalNone             PrincipalKind = ""
	PrincipalAnesthesiologist PrincipalKind = "anesthesiologist"
	PrincipalSecretary        PrincipalKind = "secretary"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	SubscriptionStatusPending  SubscriptionStatus = "pending"
)

type Anesthesiologist struct {
	Base
	Name               string             `db:"name" json:"name"`
	Email              string             `db:"email" json:"email"`
	CRM                string             `db:"crm" json:"crm"`
	Specialty          string             `db:"specialty" json:"specialty"`
	Phone              *string            `db:"phone" json:"phone,omitempty"`
	CPF                *string            `db:"cpf" json:"cpf,omitempty"`
	SubscriptionPlan   string             `db:"subscription_plan" json:"subscription_plan"`
	SubscriptionStatus SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	TrialEndsAt        *time.Time         `db:"trial_ends_at" json:"trial_ends_at,omitempty"`
	FreeMonths         int                `db:"free_months" json:"free_months"`
}

type SecretaryStatus string

const (
	SecretaryStatusActive   SecretaryStatus = "active"
	SecretaryStatusInactive SecretaryStatus = "inactive"
	SecretaryStatusPending  SecretaryStatus = "pending"
)

type Secretary struct {
	Base
	Name         string          `db:"name" json:"name"`
	Email        string          `db:"email" json:"email"`
	Phone        *string         `db:"phone" json:"phone,omitempty"`
	CPF          *string         `db:"cpf" json:"cpf,omitempty"`
	RegisteredAt time.Time       `db:"registered_at" json:"registered_at"`
	Status       SecretaryStatus `db:"status" json:"status"`
}

// Principal is an authenticated identity classified as exactly one kind.
// Exactly one of Anesthesiologist and Secretary is set unless Kind is PrincipalNone.
type Principal struct {
	ID               uuid.UUID         `json:"id"`
	Kind             PrincipalKind     `json:"kind"`
	Anesthesiologist *Anesthesiologist `json:"anesthesiologist,omitempty"`
	Secretary        *Secretary        `json:"secretary,omitempty"`
}

func (p *Principal) IsAnesthesiologist() bool {
	return p != nil && p.Kind == PrincipalAnesthesiologist && p.Anesthesiologist != nil
}

func (p *Principal) IsSecretary() bool {
	return p != nil && p.Kind == PrincipalSecretary && p.Secretary != nil
}

// DisplayName is the name recorded in change logs and notifications.
func (p *Principal) DisplayName() string {
	switch {
	case p.IsAnesthesiologist():
		return p.Anesthesiologist.Name
	case p.IsSecretary():
		return p.Secretary.Name
	default:
		return ""
	}
}

func (p *Principal) Email() string {
	switch {
	case p.IsAnesthesiologist():
		return p.Anesthesiologist.Email
	case p.IsSecretary():
		return p.Secretary.Email
	default:
		return ""
	}
}

// PrincipalRow is one hit of the cross-kind identity lookup.
type PrincipalRow struct {
	Kind  PrincipalKind `db:"kind"`
	ID    uuid.UUID     `db:"id"`
	Email string        `db:"email"`
}

type UpdateAnesthesiologistRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=2,max=200"`
	CRM       *string `json:"crm" binding:"omitempty,max=20"`
	Specialty *string `json:"specialty" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	CPF       *string `json:"cpf" binding:"omitempty,cpf"`
}

type UpdateSecretaryRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=200"`
	Phone *string `json:"phone" binding:"omitempty,max=20"`
	CPF   *string `json:"cpf" binding:"omitempty,cpf"`
}
