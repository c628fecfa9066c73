package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)

	tokenString, err := manager.GenerateToken(42, "alice", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := manager.VerifyToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestJWTManager_RefreshTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)

	refreshToken, err := manager.GenerateRefreshToken(42, "alice", "alice@example.com")
	require.NoError(t, err)

	claims, err := manager.VerifyToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)
	other := NewJWTManager("different-secret", 1, 7)

	tokenString, err := manager.GenerateToken(42, "alice", "alice@example.com")
	require.NoError(t, err)

	_, err = other.VerifyToken(tokenString)
	assert.Error(t, err)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)

	_, err := manager.VerifyToken("not.a.token")
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	// 过期时间为 -1 小时，签发即过期
	manager := NewJWTManager("test-secret", -1, 7)

	tokenString, err := manager.GenerateToken(42, "alice", "alice@example.com")
	require.NoError(t, err)

	_, err = manager.VerifyToken(tokenString)
	assert.Error(t, err)
}
