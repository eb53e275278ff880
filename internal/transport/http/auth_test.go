package http

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestVerifyMapsClaims(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{HMACSecret: testSecret, Issuer: "daily"}, nil)
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "name": "  Alice ", "email": "a@example.com", "iss": "daily"})

	id, err := auth.Verify(token)
	require.NoError(t, err)
	require.Equal(t, Identity{UserID: "u1", DisplayName: "Alice", Email: "a@example.com"}, id)
}

func TestVerifyRejects(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{HMACSecret: testSecret, Issuer: "daily"}, nil)

	cases := map[string]string{
		"wrong secret": signToken(t, "nope", jwt.MapClaims{"sub": "u1", "iss": "daily"}),
		"wrong issuer": signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "iss": "other"}),
		"no subject":   signToken(t, testSecret, jwt.MapClaims{"iss": "daily"}),
		"expired":      signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "iss": "daily", "exp": time.Now().Add(-time.Hour).Unix()}),
		"garbage":      "not.a.jwt",
	}
	for name, token := range cases {
		_, err := auth.Verify(token)
		require.Error(t, err, name)
	}
}

func TestVerifyWithoutSecret(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{}, nil)
	_, err := auth.Verify(signToken(t, testSecret, jwt.MapClaims{"sub": "u1"}))
	require.Error(t, err)
}

func TestIsAdminIgnoresCase(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{HMACSecret: testSecret, AdminEmails: []string{" Ops@Example.com ", ""}}, nil)
	require.True(t, auth.IsAdmin(Identity{Email: "ops@example.COM"}))
	require.False(t, auth.IsAdmin(Identity{Email: "someone@example.com"}))
	require.False(t, auth.IsAdmin(Identity{}))
}

func TestExtractBearer(t *testing.T) {
	require.Equal(t, "abc", extractBearer("Bearer abc"))
	require.Equal(t, "abc", extractBearer("bearer  abc "))
	require.Equal(t, "", extractBearer("Basic abc"))
	require.Equal(t, "", extractBearer("Bearer"))
	require.Equal(t, "", extractBearer(""))
}
