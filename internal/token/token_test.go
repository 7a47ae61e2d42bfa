package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestNewPair_VerifiesImmediately(t *testing.T) {
	pair, err := NewPair(secret, "user-1", "a@example.com", 7*24*time.Hour, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(7*24*3600), pair.ExpiresIn)

	claims, err := Verify(secret, pair.AccessToken, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, KindAccess, claims.Kind)

	claims, err = Verify(secret, pair.RefreshToken, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, KindRefresh, claims.Kind)
}

func TestVerify_RejectsKindConfusion(t *testing.T) {
	pair, err := NewPair(secret, "user-1", "a@example.com", time.Hour, time.Hour)
	require.NoError(t, err)

	_, err = Verify(secret, pair.AccessToken, KindRefresh)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Verify(secret, pair.RefreshToken, KindAccess)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_RejectsExpired(t *testing.T) {
	raw, err := Sign(secret, "user-1", "a@example.com", KindAccess, -time.Minute)
	require.NoError(t, err)

	_, err = Verify(secret, raw, KindAccess)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	raw, err := Sign([]byte("other-secret"), "user-1", "a@example.com", KindAccess, time.Hour)
	require.NoError(t, err)

	_, err = Verify(secret, raw, KindAccess)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Verify(secret, "not-a-token", KindAccess)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestExtractExpiry(t *testing.T) {
	raw, err := Sign(secret, "user-1", "a@example.com", KindAccess, time.Hour)
	require.NoError(t, err)

	exp, ok := ExtractExpiry(raw)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	// Expiry is recoverable even for a token signed with a different
	// secret; logout relies on this and must not trust anything else.
	foreign, err := Sign([]byte("other"), "user-1", "a@example.com", KindAccess, time.Hour)
	require.NoError(t, err)
	_, ok = ExtractExpiry(foreign)
	assert.True(t, ok)

	_, ok = ExtractExpiry("garbage")
	assert.False(t, ok)
}
