package procedure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository/mocks"
	"github.com/anesteasy/api/internal/service/policy"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

type fixture struct {
	repo          *mocks.ProcedureRepository
	links         *mocks.DelegationRepository
	notifications *mocks.NotificationRepository
	svc           *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:          &mocks.ProcedureRepository{},
		links:         &mocks.DelegationRepository{},
		notifications: &mocks.NotificationRepository{},
	}
	f.svc = NewService(f.repo, f.links, f.notifications, policy.NewEngine(f.links))
	return f
}

func owner(id uuid.UUID) *model.Principal {
	return &model.Principal{ID: id, Kind: model.PrincipalAnesthesiologist, Anesthesiologist: &model.Anesthesiologist{Name: "Dr. Paulo"}}
}

func secretary(id uuid.UUID) *model.Principal {
	return &model.Principal{ID: id, Kind: model.PrincipalSecretary, Secretary: &model.Secretary{Name: "Maria"}}
}

func procedureOf(ownerID uuid.UUID, value float64, status model.PaymentStatus) *model.Procedure {
	return &model.Procedure{
		Base:           model.Base{ID: uuid.New()},
		UserID:         ownerID,
		ProcedureName:  "Colecistectomia",
		ProcedureDate:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		ProcedureValue: value,
		PaymentStatus:  status,
	}
}

func TestUpdateDelegated_SecretaryLogsAndNotifies(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerID, secID := uuid.New(), uuid.New()
	before := procedureOf(ownerID, 1000, model.PaymentStatusPending)
	after := *before
	after.PaymentStatus = model.PaymentStatusPaid

	f.links.On("LinkExists", mock.Anything, ownerID, secID).Return(true, nil)
	f.repo.On("Get", ctx, before.ID).Return(before, nil).Once()
	f.repo.On("Get", ctx, before.ID).Return(&after, nil).Once()
	f.repo.On("Update", ctx, before.ID, model.ProcedureUpdate{"payment_status": "paid"}).Return(nil)
	f.repo.On("CreateLogs", ctx, mock.MatchedBy(func(logs []*model.ProcedureLog) bool {
		return len(logs) == 1 &&
			logs[0].FieldName == "payment_status" &&
			*logs[0].OldValue == "pending" && *logs[0].NewValue == "paid" &&
			logs[0].ChangedByType == model.ActorSecretary &&
			logs[0].ChangedByName == "Maria"
	})).Return(nil)
	f.notifications.On("Create", ctx, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == ownerID
	})).Return(nil)

	got, err := f.svc.UpdateDelegated(ctx, secretary(secID), before.ID, model.ProcedureUpdate{"payment_status": "paid"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
	f.repo.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
}

func TestUpdateDelegated_OwnerDoesNotNotify(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerID := uuid.New()
	before := procedureOf(ownerID, 1000, model.PaymentStatusPending)
	after := *before
	after.ProcedureValue = 1200

	f.repo.On("Get", ctx, before.ID).Return(before, nil).Once()
	f.repo.On("Get", ctx, before.ID).Return(&after, nil).Once()
	f.repo.On("Update", ctx, before.ID, mock.Anything).Return(nil)
	f.repo.On("CreateLogs", ctx, mock.Anything).Return(nil)

	_, err := f.svc.UpdateDelegated(ctx, owner(ownerID), before.ID, model.ProcedureUpdate{"procedure_value": 1200.0})
	require.NoError(t, err)
	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateDelegated_UnlinkedSecretaryForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerID, secID := uuid.New(), uuid.New()
	p := procedureOf(ownerID, 500, model.PaymentStatusPending)

	f.repo.On("Get", ctx, p.ID).Return(p, nil)
	f.links.On("LinkExists", mock.Anything, ownerID, secID).Return(false, nil)

	_, err := f.svc.UpdateDelegated(ctx, secretary(secID), p.ID, model.ProcedureUpdate{"notes": "x"})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateDelegated_RejectsUnknownField(t *testing.T) {
	f := newFixture()

	_, err := f.svc.UpdateDelegated(context.Background(), owner(uuid.New()), uuid.New(), model.ProcedureUpdate{"user_id": uuid.New()})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	f.repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestDelete_SecretaryDenied(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := procedureOf(uuid.New(), 500, model.PaymentStatusPending)
	f.repo.On("Get", ctx, p.ID).Return(p, nil)

	err := f.svc.Delete(ctx, secretary(uuid.New()), p.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCreate_SecretaryNeedsOwner(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), secretary(uuid.New()), &model.CreateProcedureRequest{ProcedureName: "x"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCreate_SecretaryAttributed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerID, secID := uuid.New(), uuid.New()

	f.links.On("LinkExists", mock.Anything, ownerID, secID).Return(true, nil)
	f.repo.On("Create", ctx, mock.MatchedBy(func(p *model.Procedure) bool {
		return p.UserID == ownerID && p.SecretaryID != nil && *p.SecretaryID == secID
	})).Return(nil)

	p, err := f.svc.Create(ctx, secretary(secID), &model.CreateProcedureRequest{UserID: &ownerID, ProcedureName: "Raqui"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, p.PaymentStatus)
}

func TestListForSecretary_DedupesNewestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	secID, ownerID := uuid.New(), uuid.New()

	older := procedureOf(ownerID, 100, model.PaymentStatusPaid)
	newer := procedureOf(ownerID, 200, model.PaymentStatusPaid)
	newer.ProcedureDate = older.ProcedureDate.AddDate(0, 0, 5)
	attributed := procedureOf(uuid.New(), 300, model.PaymentStatusPending)
	attributed.ProcedureDate = older.ProcedureDate.AddDate(0, 0, 2)

	f.links.On("ListAnesthesiologistIDs", ctx, secID).Return([]uuid.UUID{ownerID}, nil)
	f.repo.On("ListByOwners", ctx, []uuid.UUID{ownerID}).Return([]*model.Procedure{newer, older}, nil)
	f.repo.On("ListBySecretary", ctx, secID).Return([]*model.Procedure{attributed, older}, nil)

	got := f.svc.ListForSecretary(ctx, secID)
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{newer.ID, attributed.ID, older.ID}, []uuid.UUID{got[0].ID, got[1].ID, got[2].ID})
}

func TestListForSecretary_NoLinksStillShowsAttributed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	secID := uuid.New()
	attributed := procedureOf(uuid.New(), 300, model.PaymentStatusPending)

	f.links.On("ListAnesthesiologistIDs", ctx, secID).Return([]uuid.UUID{}, nil)
	f.repo.On("ListBySecretary", ctx, secID).Return([]*model.Procedure{attributed}, nil)

	got := f.svc.List(ctx, secretary(secID))
	assert.Len(t, got, 1)
	f.repo.AssertNotCalled(t, "ListByOwners", mock.Anything, mock.Anything)
}

func TestStats_InstallmentAware(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerID := uuid.New()
	method := model.PaymentMethodInstallments

	paid := procedureOf(ownerID, 1000, model.PaymentStatusPaid)
	pending := procedureOf(ownerID, 400, model.PaymentStatusPending)
	cancelled := procedureOf(ownerID, 250, model.PaymentStatusCancelled)
	plan := procedureOf(ownerID, 900, model.PaymentStatusPending)
	plan.PaymentMethod = &method

	f.repo.On("ListByOwner", ctx, ownerID).Return([]*model.Procedure{paid, pending, cancelled, plan}, nil)
	f.repo.On("ListInstallmentsByProcedures", ctx, []uuid.UUID{plan.ID}).Return([]*model.Installment{
		{ProcedureID: plan.ID, Number: 1, Amount: 300, Received: true},
		{ProcedureID: plan.ID, Number: 2, Amount: 300},
		{ProcedureID: plan.ID, Number: 3, Amount: 300},
	}, nil)

	stats := f.svc.Stats(ctx, ownerID)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Cancelled)
	assert.InDelta(t, 2550, stats.TotalValue, 0.001)
	assert.InDelta(t, 1300, stats.CompletedValue, 0.001)
	assert.InDelta(t, 1000, stats.PendingValue, 0.001)
}

func TestStats_FailsSoft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.repo.On("ListByOwner", ctx, mock.Anything).Return(nil, errors.New("db down"))

	assert.Equal(t, &model.ProcedureStats{}, f.svc.Stats(ctx, uuid.New()))
}

func TestUpdateInstallment_SecretaryMarksReceived(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerID, secID := uuid.New(), uuid.New()
	p := procedureOf(ownerID, 900, model.PaymentStatusPending)
	in := &model.Installment{Base: model.Base{ID: uuid.New()}, ProcedureID: p.ID, Number: 1, Amount: 300}
	received := true
	when := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	f.repo.On("GetInstallment", ctx, in.ID).Return(in, nil)
	f.repo.On("Get", ctx, p.ID).Return(p, nil)
	f.links.On("LinkExists", mock.Anything, ownerID, secID).Return(true, nil)
	f.repo.On("UpdateInstallment", ctx, in).Return(nil)

	got, err := f.svc.UpdateInstallment(ctx, secretary(secID), in.ID, &model.UpdateInstallmentRequest{Received: &received, ReceivedDate: &when})
	require.NoError(t, err)
	assert.True(t, got.Received)
	assert.Equal(t, when, *got.ReceivedDate)
}

func TestReplaceInstallments_SecretaryDenied(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := procedureOf(uuid.New(), 900, model.PaymentStatusPending)
	f.repo.On("Get", ctx, p.ID).Return(p, nil)

	_, err := f.svc.ReplaceInstallments(ctx, secretary(uuid.New()), p.ID, []model.CreateInstallmentRequest{{Number: 1, Amount: 900}})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestReplaceInstallments_DuplicateNumbers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerID := uuid.New()
	p := procedureOf(ownerID, 900, model.PaymentStatusPending)
	f.repo.On("Get", ctx, p.ID).Return(p, nil)

	_, err := f.svc.ReplaceInstallments(ctx, owner(ownerID), p.ID, []model.CreateInstallmentRequest{{Number: 1}, {Number: 1}})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	f.repo.AssertNotCalled(t, "DeleteInstallments", mock.Anything, mock.Anything)
}
