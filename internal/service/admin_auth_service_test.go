package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "turnero/internal/errors"
)

func newTestAuth(t *testing.T) *adminAuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAdminAuthService("Admin@Example.com", string(hash), "jwt-secret", time.Hour).(*adminAuthService)
}

func TestAdminAuthDisabledWithoutCredentials(t *testing.T) {
	svc := NewAdminAuthService("", "", "", 0)

	assert.False(t, svc.Enabled())
	_, err := svc.Login("admin@example.com", "x")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestAdminLoginIssuesVerifiableToken(t *testing.T) {
	svc := newTestAuth(t)

	token, err := svc.Login(" admin@example.com ", "s3cret")
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Subject)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuth(t)

	for _, creds := range [][2]string{
		{"admin@example.com", "wrong"},
		{"intruder@example.com", "s3cret"},
		{"", ""},
	} {
		_, err := svc.Login(creds[0], creds[1])
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized), "%v", creds)
	}
}

func TestParseTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	svc := newTestAuth(t)
	token, err := svc.Login("admin@example.com", "s3cret")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ParseToken(token)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized), "expired")
	svc.now = time.Now

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(signed)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized), "wrong key")

	_, err = svc.ParseToken("garbage")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}
