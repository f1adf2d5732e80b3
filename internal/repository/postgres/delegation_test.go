package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
)

func TestDelegationRepository_CreateLinkIsIdempotent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDelegationRepository(db)

	aid, sid := uuid.New(), uuid.New()
	mock.ExpectExec(`INSERT INTO delegation_links .* ON CONFLICT \(anesthesiologist_id, secretary_id\) DO NOTHING`).
		WithArgs(aid, sid, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.CreateLink(context.Background(), aid, sid))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelegationRepository_AcceptRequest(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDelegationRepository(db)

	notificationID := uuid.New()
	req := &model.LinkRequest{
		Base:               model.Base{ID: uuid.New()},
		AnesthesiologistID: uuid.New(),
		SecretaryID:        uuid.New(),
		NotificationID:     &notificationID,
		Status:             model.LinkRequestPending,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE link_requests SET status = \$1`).
		WithArgs(model.LinkRequestAccepted, sqlmock.AnyArg(), req.ID, model.LinkRequestPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO delegation_links`).
		WithArgs(req.AnesthesiologistID, req.SecretaryID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE notifications SET is_read = true WHERE id = \$1`).
		WithArgs(notificationID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AcceptRequest(context.Background(), req))
	assert.Equal(t, model.LinkRequestAccepted, req.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelegationRepository_AcceptRequestRollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDelegationRepository(db)

	req := &model.LinkRequest{
		Base:               model.Base{ID: uuid.New()},
		AnesthesiologistID: uuid.New(),
		SecretaryID:        uuid.New(),
		Status:             model.LinkRequestPending,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE link_requests SET status = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO delegation_links`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.AcceptRequest(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, model.LinkRequestPending, req.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelegationRepository_AcceptRequestAlreadyRejected(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDelegationRepository(db)

	req := &model.LinkRequest{
		Base:               model.Base{ID: uuid.New()},
		AnesthesiologistID: uuid.New(),
		SecretaryID:        uuid.New(),
		Status:             model.LinkRequestPending,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE link_requests SET status = \$1`).
		WithArgs(model.LinkRequestAccepted, sqlmock.AnyArg(), req.ID, model.LinkRequestPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.AcceptRequest(context.Background(), req)
	assert.ErrorIs(t, err, repository.ErrStateChanged)
	assert.Equal(t, model.LinkRequestPending, req.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelegationRepository_TransitionRequest(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDelegationRepository(db)

	id := uuid.New()
	mock.ExpectExec(`UPDATE link_requests SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs(model.LinkRequestRejected, sqlmock.AnyArg(), id, model.LinkRequestPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.TransitionRequest(context.Background(), id, model.LinkRequestPending, model.LinkRequestRejected)
	require.NoError(t, err)
	assert.False(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}
