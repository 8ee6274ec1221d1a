package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-key"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "maya", "DONOR", testSecret, 15)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token, testSecret)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "maya", claims.Username)
	assert.Equal(t, "DONOR", claims.Role)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(42, "maya", "DONOR", testSecret, 15)
	assert.NoError(t, err)

	_, err = ValidateAccessToken(token, "different-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(42, "maya", "DONOR", testSecret, -1)
	assert.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccessTokenGarbage(t *testing.T) {
	_, err := ValidateAccessToken("not.a.token", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(42, "token-id-1", testSecret, 7)
	assert.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testSecret)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)
}

func TestRefreshTokenNotValidAsAccessSecret(t *testing.T) {
	token, err := GenerateRefreshToken(42, "token-id-1", "refresh-secret", 7)
	assert.NoError(t, err)

	_, err = ValidateRefreshToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGetExpiryTime(t *testing.T) {
	expiry := GetExpiryTime(7)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiry, time.Minute)
}
