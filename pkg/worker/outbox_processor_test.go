package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository/mocks"
	"github.com/anesteasy/api/pkg/logger"
	"github.com/anesteasy/api/pkg/metrics"
)

type fakeBroker struct {
	mu        sync.Mutex
	failures  int
	published map[string][][]byte
}

func newFakeBroker(failures int) *fakeBroker {
	return &fakeBroker{failures: failures, published: map[string][][]byte{}}
}

func (b *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures > 0 {
		b.failures--
		return errors.New("broker unavailable")
	}
	b.published[channel] = append(b.published[channel], message.([]byte))
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *fakeBroker) Close() error { return nil }

func newEvent(retries int) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:         uuid.New(),
		EventType:  "link_request.created",
		Channel:    "anesteasy:links:test",
		Payload:    json.RawMessage(`{"type":"link_request.created"}`),
		Status:     model.OutboxStatusProcessing,
		RetryCount: retries,
	}
}

func newProcessor(t *testing.T, repo *mocks.OutboxRepository, broker *fakeBroker, attempts int) *OutboxProcessor {
	t.Helper()
	p, err := NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: attempts,
		RetryDelay:    time.Millisecond,
		MaxDeliveries: 3,
	}, logger.Nop(), metrics.NewNop())
	require.NoError(t, err)
	return p
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	_, err := NewOutboxProcessor(&mocks.OutboxRepository{}, newFakeBroker(0), OutboxProcessorConfig{}, logger.Nop(), metrics.NewNop())
	assert.Error(t, err)

	_, err = NewOutboxProcessor(&mocks.OutboxRepository{}, newFakeBroker(0), OutboxProcessorConfig{BatchSize: 1}, logger.Nop(), metrics.NewNop())
	assert.Error(t, err)
}

func TestProcessBatchPublishesAndMarksProcessed(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	broker := newFakeBroker(0)
	event := newEvent(0)

	repo.On("ClaimPending", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusProcessed, (*string)(nil)).Return(nil)

	n, err := newProcessor(t, repo, broker, 1).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, [][]byte{[]byte(event.Payload)}, broker.published[event.Channel])
	repo.AssertExpectations(t)
}

func TestProcessBatchRetriesWithinAttempts(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	broker := newFakeBroker(1)
	event := newEvent(0)

	repo.On("ClaimPending", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusProcessed, (*string)(nil)).Return(nil)

	n, err := newProcessor(t, repo, broker, 2).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	repo.AssertExpectations(t)
}

func TestProcessBatchRequeuesFailedPublish(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	broker := newFakeBroker(5)
	event := newEvent(0)

	repo.On("ClaimPending", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusPending, mock.AnythingOfType("*string")).Return(nil)

	n, err := newProcessor(t, repo, broker, 1).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	repo.AssertExpectations(t)
}

func TestProcessBatchParksEventAfterMaxDeliveries(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	broker := newFakeBroker(5)
	event := newEvent(2)

	repo.On("ClaimPending", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusFailed, mock.AnythingOfType("*string")).Return(nil)

	_, err := newProcessor(t, repo, broker, 1).ProcessBatch(context.Background())
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProcessBatchClaimError(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	repo.On("ClaimPending", mock.Anything, 10).Return(nil, errors.New("connection refused"))

	_, err := newProcessor(t, repo, newFakeBroker(0), 1).ProcessBatch(context.Background())
	assert.Error(t, err)
}

func TestOutboxCleanupUsesRetentionCutoff(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	repo.On("DeleteProcessedBefore", mock.Anything, now.Add(-48*time.Hour)).Return(int64(4), nil)

	NewOutboxCleanupWorker(repo, 48*time.Hour, time.Hour, logger.Nop()).Cleanup(context.Background(), now)
	repo.AssertExpectations(t)
}
