package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
)

// Emitter records domain events in the outbox; the relay worker publishes them.
type Emitter interface {
	Emit(ctx context.Context, eventType EventType, channel string, payload interface{}) error
}

type OutboxEmitter struct {
	outboxRepo repository.OutboxRepository
}

func NewOutboxEmitter(outboxRepo repository.OutboxRepository) *OutboxEmitter {
	return &OutboxEmitter{outboxRepo: outboxRepo}
}

func (e *OutboxEmitter) Emit(ctx context.Context, eventType EventType, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	event := &model.OutboxEvent{
		EventType: string(eventType),
		Channel:   channel,
		Payload:   data,
		Status:    model.OutboxStatusPending,
	}
	if err := e.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to store %s event: %w", eventType, err)
	}
	return nil
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, EventType, string, interface{}) error { return nil }
