package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateToken(7, "admin", true)
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.IsSuperuser)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyRejectsWrongSecretAndExpired(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, time.Hour)
	token, err := m.GenerateToken(1, "u", false)
	require.NoError(t, err)

	_, err = NewJWTManager("other", time.Hour, time.Hour).VerifyToken(token)
	assert.Error(t, err)

	expired := NewJWTManager("secret", -time.Minute, time.Hour)
	token, err = expired.GenerateToken(1, "u", false)
	require.NoError(t, err)
	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestRefreshToken(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute, time.Hour)
	old, err := m.GenerateToken(3, "ops", false)
	require.NoError(t, err)

	fresh, oldClaims, err := m.RefreshToken(old)
	require.NoError(t, err)
	assert.NotEqual(t, old, fresh)
	assert.Equal(t, uint(3), oldClaims.UserID)

	noWindow := NewJWTManager("secret", time.Hour, -time.Minute)
	token, err := noWindow.GenerateToken(3, "ops", false)
	require.NoError(t, err)
	_, _, err = noWindow.RefreshToken(token)
	assert.Error(t, err)
}
