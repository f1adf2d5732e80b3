package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/model"
)

func TestOutboxRepository_ClaimPending(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "event_type", "channel", "payload", "status", "error_message", "retry_count",
		"created_at", "processed_at", "updated_at",
	}).AddRow(id.String(), "link_request.created", "links:abc", []byte(`{"a":1}`), "processing", nil, 0, now, nil, now)

	mock.ExpectQuery(`UPDATE outbox_events\s+SET status = 'processing'.*FOR UPDATE SKIP LOCKED`).
		WithArgs(10).
		WillReturnRows(rows)

	events, err := repo.ClaimPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.OutboxStatusProcessing, events[0].Status)
	assert.JSONEq(t, `{"a":1}`, string(events[0].Payload))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CreateRequiresPayload(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)

	assert.Error(t, repo.Create(context.Background(), &model.OutboxEvent{EventType: "x"}))

	mock.ExpectExec(`INSERT INTO outbox_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	event := &model.OutboxEvent{EventType: "x", Channel: "c", Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.Equal(t, model.OutboxStatusPending, event.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
