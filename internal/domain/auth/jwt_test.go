package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, expiresAt, err := svc.GenerateAccessToken("u-1", "Bilal", []string{"clerk"})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "Bilal", user.Name)
	assert.Equal(t, []string{"clerk"}, user.Roles)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	other := NewJWTService(DefaultJWTConfig("other-secret"))
	forged, _, err := other.GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)

	cfg := DefaultJWTConfig("secret")
	cfg.Issuer = "someone-else"
	foreign, _, err := NewJWTService(cfg).GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)

	cfg = DefaultJWTConfig("secret")
	cfg.AccessTokenTTL = -time.Minute
	expired, _, err := NewJWTService(cfg).GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "u-1", "iss": "khaata"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong secret": forged,
		"wrong issuer": foreign,
		"expired":      expired,
		"unsigned":     none,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}
