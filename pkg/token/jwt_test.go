package token

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", 1, 7)

	access, err := m.GenerateToken(42, "21BCE1001", "student")
	require.NoError(t, err)
	claims, err := m.VerifyTokenOfType(access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "21BCE1001", claims.RegNo)
	assert.Equal(t, "student", claims.Role)
	assert.NotEmpty(t, claims.ID)

	refresh, err := m.GenerateRefreshToken(42, "21BCE1001", "student")
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)
	_, err = m.VerifyTokenOfType(refresh, TypeAccess)
	assert.True(t, errors.Is(err, ErrWrongTokenType))
	rc, err := m.VerifyTokenOfType(refresh, TypeRefresh)
	require.NoError(t, err)
	assert.True(t, rc.ExpiresAt.After(claims.ExpiresAt.Time))
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", 1, 7)
	other := NewJWTManager("other-secret", 1, 7)

	tok, err := other.GenerateToken(1, "x", "admin")
	require.NoError(t, err)
	_, err = m.VerifyToken(tok)
	assert.Error(t, err)

	expired := NewJWTManager("test-secret", -1, 7)
	tok, err = expired.GenerateToken(1, "x", "admin")
	require.NoError(t, err)
	_, err = m.VerifyToken(tok)
	assert.Error(t, err)

	_, err = m.VerifyToken("garbage")
	assert.Error(t, err)
}
