package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	signed, err := GenerateToken(42, KindAgent, 3, "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(signed, "secret")
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, KindAgent, claims.Kind)
	assert.Equal(t, 3, claims.RoleID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	signed, err := GenerateToken(1, KindClient, 0, "secret", time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(signed, "other")
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	signed, err := GenerateToken(1, KindClient, 0, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(signed, "secret")
	require.Error(t, err)
}
