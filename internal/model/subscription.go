package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionState string

const (
	SubscriptionActive    SubscriptionState = "active"
	SubscriptionCancelled SubscriptionState = "cancelled"
	SubscriptionPending   SubscriptionState = "pending"
	SubscriptionExpired   SubscriptionState = "expired"
	SubscriptionSuspended SubscriptionState = "suspended"
)

type Subscription struct {
	Base
	UserID             uuid.UUID         `db:"user_id" json:"user_id"`
	PlanType           string            `db:"plan_type" json:"plan_type"`
	Status             SubscriptionState `db:"status" json:"status"`
	CurrentPeriodStart *time.Time        `db:"current_period_start" json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time        `db:"current_period_end" json:"current_period_end,omitempty"`
	DaysUsed           int               `db:"days_used" json:"days_used"`
}

// Access is the outcome of an entitlement check.
type Access struct {
	HasAccess          bool       `json:"has_access"`
	Reason             string     `json:"reason,omitempty"`
	SubscriptionStatus string     `json:"subscription_status,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	DaysRemaining      int        `json:"days_remaining"`
}

type RefundEligibility struct {
	Eligible bool   `json:"eligible"`
	DaysUsed int    `json:"days_used"`
	Reason   string `json:"reason"`
}
