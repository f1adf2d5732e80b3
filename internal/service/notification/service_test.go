package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	"github.com/anesteasy/api/internal/repository/mocks"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

func anesthesiologist(id uuid.UUID) *model.Principal {
	return &model.Principal{ID: id, Kind: model.PrincipalAnesthesiologist, Anesthesiologist: &model.Anesthesiologist{}}
}

func TestCreate_Self(t *testing.T) {
	repo := &mocks.NotificationRepository{}
	svc := NewService(repo, &mocks.DelegationRepository{})
	ctx := context.Background()
	id := uuid.New()

	repo.On("Create", ctx, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == id && n.Type == model.NotificationInfo && n.Title == "Lembrete"
	})).Return(nil)

	n, err := svc.Create(ctx, anesthesiologist(id), &model.CreateNotificationRequest{Title: " Lembrete ", Message: "Plantão amanhã"})
	require.NoError(t, err)
	assert.Equal(t, id, n.UserID)
}

func TestCreate_UnlinkedRecipientForbidden(t *testing.T) {
	repo := &mocks.NotificationRepository{}
	links := &mocks.DelegationRepository{}
	svc := NewService(repo, links)
	ctx := context.Background()
	other := uuid.New()
	links.On("LinkExists", ctx, mock.Anything, other).Return(false, nil)

	_, err := svc.Create(ctx, anesthesiologist(uuid.New()), &model.CreateNotificationRequest{UserID: &other, Title: "t", Message: "m"})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(&mocks.NotificationRepository{}, &mocks.DelegationRepository{})

	_, err := svc.Create(context.Background(), anesthesiologist(uuid.New()), &model.CreateNotificationRequest{Title: "  ", Message: "m"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestMarkRead(t *testing.T) {
	repo := &mocks.NotificationRepository{}
	svc := NewService(repo, &mocks.DelegationRepository{})
	ctx := context.Background()
	user := uuid.New()
	n := &model.Notification{ID: uuid.New(), UserID: user}

	repo.On("Get", ctx, n.ID).Return(n, nil)
	repo.On("MarkRead", ctx, n.ID).Return(nil).Once()

	require.NoError(t, svc.MarkRead(ctx, user, n.ID))
	assert.True(t, apperrors.Is(svc.MarkRead(ctx, uuid.New(), n.ID), apperrors.ErrForbidden))
	repo.AssertNumberOfCalls(t, "MarkRead", 1)
}

func TestMarkRead_NotFound(t *testing.T) {
	repo := &mocks.NotificationRepository{}
	svc := NewService(repo, &mocks.DelegationRepository{})
	repo.On("Get", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	assert.True(t, apperrors.Is(svc.MarkRead(context.Background(), uuid.New(), uuid.New()), apperrors.ErrNotFound))
}

func TestList_FailsSoft(t *testing.T) {
	repo := &mocks.NotificationRepository{}
	svc := NewService(repo, &mocks.DelegationRepository{})
	repo.On("List", mock.Anything, mock.Anything, true).Return(nil, errors.New("db down"))

	assert.Empty(t, svc.List(context.Background(), uuid.New(), true))
}
