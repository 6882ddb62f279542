package jwthelper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	key := []byte("signing-key")

	token, err := GenerateToken(key, 42, "curl/8.0")
	require.NoError(t, err)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "curl/8.0", claims.UserAgent)
}

func TestParseToken_Invalid(t *testing.T) {
	token, err := GenerateToken([]byte("one"), 1, "ua")
	require.NoError(t, err)

	_, err = ParseToken([]byte("two"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken([]byte("one"), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
