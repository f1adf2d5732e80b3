package model

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackLink struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ProcedureID  uuid.UUID  `db:"procedure_id" json:"procedure_id"`
	SurgeonEmail string     `db:"surgeon_email" json:"surgeon_email"`
	SurgeonPhone *string    `db:"surgeon_phone" json:"surgeon_phone,omitempty"`
	Token        string     `db:"token" json:"token"`
	ExpiresAt    time.Time  `db:"expires_at" json:"expires_at"`
	RespondedAt  *time.Time `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type FeedbackResponse struct {
	ID                uuid.UUID `db:"id" json:"id"`
	FeedbackLinkID    uuid.UUID `db:"feedback_link_id" json:"feedback_link_id"`
	NauseaVomiting    bool      `db:"nausea_vomiting" json:"nausea_vomiting"`
	Headache          bool      `db:"headache" json:"headache"`
	BackPain          bool      `db:"back_pain" json:"back_pain"`
	AnemiaTransfusion bool      `db:"anemia_transfusion" json:"anemia_transfusion"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type CreateFeedbackLinkRequest struct {
	SurgeonEmail string  `json:"surgeon_email" binding:"required,email"`
	SurgeonPhone *string `json:"surgeon_phone" binding:"omitempty,max=20"`
	SendEmail    bool    `json:"send_email"`
}

type SubmitFeedbackRequest struct {
	NauseaVomiting    bool `json:"nausea_vomiting"`
	Headache          bool `json:"headache"`
	BackPain          bool `json:"back_pain"`
	AnemiaTransfusion bool `json:"anemia_transfusion"`
}

// FeedbackStatus is the state of the feedback link of one procedure.
type FeedbackStatus struct {
	LinkCreated  bool       `json:"link_created"`
	LinkExpired  bool       `json:"link_expired"`
	Responded    bool       `json:"responded"`
	SurgeonEmail string     `json:"surgeon_email,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}
