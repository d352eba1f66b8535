package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	token, err := issuer.GenerateToken("01HUSER", "ana@example.com")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "01HUSER", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "01HUSER", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
}

func TestIssuer_RejectsOtherSecret(t *testing.T) {
	token, err := NewIssuer("one", time.Hour).GenerateToken("u", "u@x.com")
	require.NoError(t, err)

	_, err = NewIssuer("two", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.GenerateToken("u", "u@x.com")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssuer_RejectsNoneAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: "u"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestIssuer_EmptySecret(t *testing.T) {
	issuer := NewIssuer("", time.Hour)

	_, err := issuer.GenerateToken("u", "u@x.com")
	assert.ErrorIs(t, err, ErrSecretNotSet)

	_, err = issuer.ValidateToken("x")
	assert.ErrorIs(t, err, ErrSecretNotSet)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, VerifyPassword("secret1", hash))
	assert.ErrorIs(t, VerifyPassword("secret2", hash), ErrPasswordMismatch)
}
