package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService("test-secret", "1h", "168h", CookieConfig{MaxAge: 7 * 24 * time.Hour})
	require.NoError(t, err)
	return svc.(*JWTService)
}

func TestNewJWTService_InvalidDuration(t *testing.T) {
	_, err := NewJWTService("secret", "soon", "168h", CookieConfig{})
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, expiresAt, err := svc.GenerateAccessToken("u1", "u1@farm.test", profile.RoleEmployee)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), expiresAt, 2)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1@farm.test", claims.Email)
	assert.Equal(t, profile.RoleEmployee, claims.Role)
	assert.Equal(t, expiresAt, claims.ExpiresAt.Unix())
}

func TestRefreshToken_NotAcceptedAsAccess(t *testing.T) {
	svc := newTestService(t)

	refresh, _, err := svc.GenerateRefreshToken("u1")
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	userID, err := svc.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestRefreshTokens_AreUnique(t *testing.T) {
	svc := newTestService(t)

	a, _, err := svc.GenerateRefreshToken("u1")
	require.NoError(t, err)
	b, _, err := svc.GenerateRefreshToken("u1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParseAccessToken_Expired(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.GenerateAccessToken("u1", "u1@farm.test", profile.RoleViewer)
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc := newTestService(t)

	token, expiresAt, err := svc.GenerateAccessToken("u1", "u1@farm.test", profile.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, svc.IsTokenRevoked(token))

	svc.RevokeToken(token, time.Unix(expiresAt, 0))
	assert.True(t, svc.IsTokenRevoked(token))

	_, err = svc.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestSessionCookies(t *testing.T) {
	svc := newTestService(t)

	cookies := svc.SessionCookies("access", "refresh")
	require.Len(t, cookies, 2)
	assert.Equal(t, AccessTokenCookie, cookies[0].Name)
	assert.Equal(t, RefreshTokenCookie, cookies[1].Name)
	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, 7*24*60*60, c.MaxAge)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	}

	for _, c := range svc.ClearSessionCookies() {
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}
}

func TestTokenFromCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromCookie(req))

	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "abc"})
	assert.Equal(t, "abc", TokenFromCookie(req))
}
