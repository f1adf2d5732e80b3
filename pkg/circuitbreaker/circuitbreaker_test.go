package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Settings{Name: "test", MaxRequests: 2, Timeout: time.Second})
	cb.now = func() time.Time { return clock }

	boom := errors.New("boom")
	fail := func() error { return boom }
	calls := 0
	ok := func() error { calls++; return nil }

	assert.ErrorIs(t, cb.Execute(fail), boom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), boom)
	assert.Equal(t, StateOpen, cb.State())

	assert.ErrorIs(t, cb.Execute(ok), ErrOpen)
	assert.Equal(t, 0, calls)

	clock = clock.Add(2 * time.Second)
	assert.NoError(t, cb.Execute(ok))
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Settings{MaxRequests: 1, Timeout: time.Second})
	cb.now = func() time.Time { return clock }

	_ = cb.Execute(func() error { return errors.New("x") })
	assert.Equal(t, StateOpen, cb.State())

	clock = clock.Add(2 * time.Second)
	_ = cb.Execute(func() error { return errors.New("x") })
	assert.Equal(t, StateOpen, cb.State())
}
