package messaging

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe streams raw payloads until ctx is cancelled; the channel is then closed.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// SecretaryLinkChannel is the channel carrying link request events for one secretary.
func SecretaryLinkChannel(secretaryID uuid.UUID) string {
	return fmt.Sprintf("anesteasy:links:%s", secretaryID)
}
