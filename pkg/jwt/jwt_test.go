package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate("ops@example.com", "ops")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, "ops", claims.Username)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute)

	token, err := m.Generate("ops@example.com", "ops")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret", time.Hour).Generate("ops@example.com", "ops")
	require.NoError(t, err)

	_, err = NewJWTManager("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Garbage(t *testing.T) {
	_, err := NewJWTManager("secret", time.Hour).Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
