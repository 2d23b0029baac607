package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Now()
	token, expiresAt, err := GenerateAccessToken(42, "a@example.com", []string{"user"}, "secret", time.Hour, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, []string{"user"}, claims.Roles)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := GenerateAccessToken(1, "a@example.com", nil, "secret", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = ValidateToken(token, "other")
	assert.ErrorIs(t, err, ErrInvalidJWT)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, _, err := GenerateAccessToken(1, "a@example.com", nil, "secret", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidJWT)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidJWT)
}
