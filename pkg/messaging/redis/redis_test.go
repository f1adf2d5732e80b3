package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBroker(t *testing.T) (*miniredis.Miniredis, *RedisBroker) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	logger := zerolog.Nop()

	broker := NewRedisBroker(client, &logger).(*RedisBroker)
	t.Cleanup(func() { broker.Close() })
	return mr, broker
}

func TestRedisBroker_PublishSubscribe(t *testing.T) {
	_, broker := setupBroker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := broker.Subscribe(ctx, "anesteasy:links:abc")
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, "anesteasy:links:abc", map[string]string{"type": "link_request.created"}))

	select {
	case msg := <-msgs:
		assert.JSONEq(t, `{"type":"link_request.created"}`, string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}

	cancel()
	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestRedisBroker_PublishRawPayload(t *testing.T) {
	_, broker := setupBroker(t)
	ctx := context.Background()

	msgs, err := broker.Subscribe(ctx, "c")
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, "c", []byte(`{"a":1}`)))

	select {
	case msg := <-msgs:
		assert.Equal(t, `{"a":1}`, string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{URL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	defer client.Close()

	_, err = NewClient(context.Background(), Config{URL: "not a url"})
	assert.Error(t, err)
}
