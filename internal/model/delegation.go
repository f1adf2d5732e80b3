package model

import (
	"time"

	"github.com/google/uuid"
)

type DelegationLink struct {
	AnesthesiologistID uuid.UUID `db:"anesthesiologist_id" json:"anesthesiologist_id"`
	SecretaryID        uuid.UUID `db:"secretary_id" json:"secretary_id"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

type LinkRequestStatus string

const (
	LinkRequestPending  LinkRequestStatus = "pending"
	LinkRequestAccepted LinkRequestStatus = "accepted"
	LinkRequestRejected LinkRequestStatus = "rejected"
)

type LinkRequest struct {
	Base
	AnesthesiologistID uuid.UUID         `db:"anesthesiologist_id" json:"anesthesiologist_id"`
	SecretaryID        uuid.UUID         `db:"secretary_id" json:"secretary_id"`
	NotificationID     *uuid.UUID        `db:"notification_id" json:"notification_id,omitempty"`
	Status             LinkRequestStatus `db:"status" json:"status"`
}

type LinkSecretaryRequest struct {
	Email string  `json:"email" binding:"required,email"`
	Name  *string `json:"name" binding:"omitempty,min=2,max=200"`
	Phone *string `json:"phone" binding:"omitempty,max=20"`
}

// LinkResult is returned by create-or-link.
type LinkResult struct {
	Secretary *Secretary `json:"secretary"`
	IsNew     bool       `json:"is_new"`
	// Pending is set when an invitation was sent instead of linking directly.
	Pending bool `json:"pending"`
}

// AcceptResult reports whether an accept created a link.
type AcceptResult struct {
	Request       *LinkRequest `json:"request"`
	AlreadyLinked bool         `json:"already_linked"`
}

type ResendPasswordResult struct {
	EmailSent bool   `json:"email_sent"`
	Message   string `json:"message"`
}

// LinkEvent is published on the realtime feed for a secretary.
type LinkEvent struct {
	Type               string            `json:"type"`
	RequestID          uuid.UUID         `json:"request_id"`
	AnesthesiologistID uuid.UUID         `json:"anesthesiologist_id"`
	SecretaryID        uuid.UUID         `json:"secretary_id"`
	Status             LinkRequestStatus `json:"status"`
	OccurredAt         time.Time         `json:"occurred_at"`
}
