package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *jwtService {
	return NewJWTService(Config{
		Secret:     "access-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}).(*jwtService)
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := newTestService()
	id := uuid.New()

	access, expiresAt, err := svc.GenerateAccessToken(id, "dr@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "dr@example.com", claims.Email)
}

func TestJWT_TypesAreNotInterchangeable(t *testing.T) {
	svc := newTestService()
	id := uuid.New()

	refresh, err := svc.GenerateRefreshToken(id, "dr@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
}

func TestJWT_Expired(t *testing.T) {
	svc := newTestService()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, _, err := svc.GenerateAccessToken(uuid.New(), "x@example.com")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, _, err := newTestService().GenerateAccessToken(uuid.New(), "x@example.com")
	require.NoError(t, err)

	other := NewJWTService(Config{Secret: "other", AccessTTL: time.Hour})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
