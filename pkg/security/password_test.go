package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.Error(t, h.Compare(hash, "wrong horse"))

	_, err = h.Hash("short")
	assert.ErrorIs(t, err, ErrPasswordShort)
}

func TestTemporaryPassword(t *testing.T) {
	a, err := TemporaryPassword(12)
	require.NoError(t, err)
	b, err := TemporaryPassword(12)
	require.NoError(t, err)

	assert.Len(t, a, 15)
	assert.True(t, strings.HasSuffix(a, TempPasswordSuffix))
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), MinPasswordLen)
}

func TestRandomToken(t *testing.T) {
	tok, err := RandomToken(16)
	require.NoError(t, err)
	assert.Len(t, tok, 32)
}
