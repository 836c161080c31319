package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_TokenPairRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", "ui-forge")

	pair, err := m.GenerateTokenPair("user-1", time.Minute, time.Hour)
	require.NoError(t, err)

	access, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", access.UserID)
	assert.Equal(t, "access", access.Type)
	assert.Equal(t, "ui-forge", access.Issuer)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Type)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", "ui-forge")

	token, err := m.GenerateToken("user-1", "access", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", "ui-forge").GenerateToken("user-1", "access", time.Minute)
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", "ui-forge").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
