package services

import (
	"testing"

	"psychparty/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, checkPassword(hash, "correct horse battery staple"))
	assert.False(t, checkPassword(hash, "wrong password"))
}

func TestTokenRoundTrip(t *testing.T) {
	s := &AuthService{jwtSecret: "test-secret"}

	token, err := s.generateToken(42)
	require.NoError(t, err)

	playerID, err := middleware.ParsePlayerID(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), playerID)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	s := &AuthService{jwtSecret: "test-secret"}

	token, err := s.generateToken(42)
	require.NoError(t, err)

	_, err = middleware.ParsePlayerID(token, "other-secret")
	assert.Error(t, err)
}
