package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret")

	token, expiresAt, err := tm.GenerateToken(42, "Chlorine", []string{"FTO Officer"})
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.ActorID)
	assert.Equal(t, "Chlorine", claims.DisplayName)
	assert.Equal(t, []string{"FTO Officer"}, claims.Capabilities)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a").GenerateToken(42, "Chlorine", nil)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b").ParseToken(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret").ParseToken("not-a-token")
	assert.Error(t, err)
}
