package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrStateChanged is returned when a conditional state transition finds the
// row already moved on.
var ErrStateChanged = errors.New("record state changed")

// All repository interfaces in one file
type (
	ShiftRepository interface {
		Create(ctx context.Context, shift *model.Shift) error
		CreateBatch(ctx context.Context, shifts []*model.Shift) error
		Get(ctx context.Context, id uuid.UUID) (*model.Shift, error)
		Update(ctx context.Context, shift *model.Shift) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Shift, error)
		ListInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]*model.Shift, error)
		FindOverlapping(ctx context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Shift, error)
		ListGroup(ctx context.Context, rootID uuid.UUID) ([]*model.Shift, error)
		UpdateCommonFields(ctx context.Context, ids []uuid.UUID, fields model.ShiftCommonFields) error
		// RegenerateSeries moves the parent, applies the common fields to the
		// group, drops its non-excepted children and inserts the given children,
		// all in one transaction.
		RegenerateSeries(ctx context.Context, parent *model.Shift, children []*model.Shift, common model.ShiftCommonFields) error
		ListExceptions(ctx context.Context, parentID uuid.UUID) ([]*model.ShiftException, error)
		UpsertException(ctx context.Context, exception *model.ShiftException) error
	}

	// PrincipalRepository resolves identities across both principal tables in one query.
	PrincipalRepository interface {
		FindByID(ctx context.Context, id uuid.UUID) ([]model.PrincipalRow, error)
		FindByEmail(ctx context.Context, email string) ([]model.PrincipalRow, error)
		FindByCPF(ctx context.Context, cpf string) ([]model.PrincipalRow, error)
	}

	AnesthesiologistRepository interface {
		Create(ctx context.Context, a *model.Anesthesiologist) error
		Get(ctx context.Context, id uuid.UUID) (*model.Anesthesiologist, error)
		GetByEmail(ctx context.Context, email string) (*model.Anesthesiologist, error)
		Update(ctx context.Context, a *model.Anesthesiologist) error
		UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status model.SubscriptionStatus) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	SecretaryRepository interface {
		Create(ctx context.Context, s *model.Secretary) error
		Get(ctx context.Context, id uuid.UUID) (*model.Secretary, error)
		GetByEmail(ctx context.Context, email string) (*model.Secretary, error)
		Update(ctx context.Context, s *model.Secretary) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	DelegationRepository interface {
		LinkExists(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) (bool, error)
		// CreateLink is a no-op when the pair is already linked.
		CreateLink(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) error
		DeleteLink(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) error
		ListAnesthesiologistIDs(ctx context.Context, secretaryID uuid.UUID) ([]uuid.UUID, error)
		ListSecretaries(ctx context.Context, anesthesiologistID uuid.UUID) ([]*model.Secretary, error)
		ListAnesthesiologists(ctx context.Context, secretaryID uuid.UUID) ([]*model.Anesthesiologist, error)

		CreateRequest(ctx context.Context, req *model.LinkRequest) error
		GetRequest(ctx context.Context, id uuid.UUID) (*model.LinkRequest, error)
		GetRequestByNotification(ctx context.Context, notificationID uuid.UUID) (*model.LinkRequest, error)
		FindPendingRequest(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) (*model.LinkRequest, error)
		ListRequests(ctx context.Context, secretaryID uuid.UUID, status *model.LinkRequestStatus) ([]*model.LinkRequest, error)
		// AcceptRequest links the pair, moves the request out of pending and marks
		// its notification read in one transaction.
		AcceptRequest(ctx context.Context, req *model.LinkRequest) error
		// TransitionRequest changes status only when the request is still in from.
		TransitionRequest(ctx context.Context, id uuid.UUID, from, to model.LinkRequestStatus) (bool, error)
	}

	ProcedureRepository interface {
		Create(ctx context.Context, p *model.Procedure) error
		Get(ctx context.Context, id uuid.UUID) (*model.Procedure, error)
		ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Procedure, error)
		ListByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]*model.Procedure, error)
		ListBySecretary(ctx context.Context, secretaryID uuid.UUID) ([]*model.Procedure, error)
		ListByDateRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]*model.Procedure, error)
		Update(ctx context.Context, id uuid.UUID, fields model.ProcedureUpdate) error
		Delete(ctx context.Context, id uuid.UUID) error

		CreateLogs(ctx context.Context, logs []*model.ProcedureLog) error
		ListLogs(ctx context.Context, procedureID uuid.UUID) ([]*model.ProcedureLog, error)

		ListInstallments(ctx context.Context, procedureID uuid.UUID) ([]*model.Installment, error)
		ListInstallmentsByProcedures(ctx context.Context, procedureIDs []uuid.UUID) ([]*model.Installment, error)
		GetInstallment(ctx context.Context, id uuid.UUID) (*model.Installment, error)
		CreateInstallments(ctx context.Context, installments []*model.Installment) error
		UpdateInstallment(ctx context.Context, installment *model.Installment) error
		DeleteInstallments(ctx context.Context, procedureID uuid.UUID) error
	}

	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
	}

	GoalRepository interface {
		GetByUser(ctx context.Context, userID uuid.UUID) (*model.Goal, error)
		Upsert(ctx context.Context, goal *model.Goal) error
		DeleteByUser(ctx context.Context, userID uuid.UUID) error
	}

	FeedbackRepository interface {
		CreateLink(ctx context.Context, link *model.FeedbackLink) error
		GetLinkByToken(ctx context.Context, token string) (*model.FeedbackLink, error)
		GetLinkByProcedure(ctx context.Context, procedureID uuid.UUID) (*model.FeedbackLink, error)
		// SaveResponse stores the answers and stamps the link, failing when the
		// link was already answered.
		SaveResponse(ctx context.Context, link *model.FeedbackLink, resp *model.FeedbackResponse) error
		GetResponseByProcedure(ctx context.Context, procedureID uuid.UUID) (*model.FeedbackResponse, error)
	}

	SubscriptionRepository interface {
		GetLatest(ctx context.Context, userID uuid.UUID) (*model.Subscription, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Subscription, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.SubscriptionState) error
		UpdateDaysUsed(ctx context.Context, id uuid.UUID, days int) error
	}

	CredentialRepository interface {
		Create(ctx context.Context, c *model.Credential) error
		Get(ctx context.Context, id uuid.UUID) (*model.Credential, error)
		GetByEmail(ctx context.Context, email string) (*model.Credential, error)
		UpdatePassword(ctx context.Context, id uuid.UUID, hash string, temporary bool) error
		MarkEmailConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	TokenRepository interface {
		Store(ctx context.Context, token *model.OneTimeToken) error
		// Consume marks a live token used and returns it.
		Consume(ctx context.Context, token string, purpose model.TokenPurpose) (*model.OneTimeToken, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending moves up to limit pending events to processing and returns them.
		ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
