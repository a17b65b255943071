package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var guardNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func signedIn(id string) IdentityLookup {
	return func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		return auth.Identity{ID: id, Email: id + "@granja.test"}, nil, nil
	}
}

func anonymous(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
	return auth.Identity{}, nil, auth.ErrNotAuthenticated
}

func serveGuarded(t *testing.T, cfg RouteGuardConfig, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return guardNow }
	}
	reached := false
	h := RouteGuard(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, reached
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRouteGuard_AnonymousProtectedRedirectsToLogin(t *testing.T) {
	rec, reached := serveGuarded(t, RouteGuardConfig{Lookup: anonymous}, httptest.NewRequest(http.MethodGet, "/pigs/123", nil))

	assert.False(t, reached)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouteGuard_SignedInPublicRedirectsToDashboard(t *testing.T) {
	rec, reached := serveGuarded(t, RouteGuardConfig{Lookup: signedIn("u1")}, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.False(t, reached)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRouteGuard_AnonymousPublicPasses(t *testing.T) {
	_, reached := serveGuarded(t, RouteGuardConfig{Lookup: anonymous}, httptest.NewRequest(http.MethodGet, "/forgot-password", nil))
	assert.True(t, reached)
}

func TestRouteGuard_UnguardedPathSkipsLookup(t *testing.T) {
	called := false
	lookup := func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		called = true
		return auth.Identity{}, nil, nil
	}
	_, reached := serveGuarded(t, RouteGuardConfig{Lookup: lookup}, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))

	assert.True(t, reached)
	assert.False(t, called)
}

func TestRouteGuard_StampsLastActivity(t *testing.T) {
	rec, reached := serveGuarded(t, RouteGuardConfig{Lookup: signedIn("u1")}, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.True(t, reached)
	c := findCookie(rec, LastActivityCookie)
	require.NotNil(t, c)
	assert.Equal(t, strconv.FormatInt(guardNow.UnixMilli(), 10), c.Value)
	assert.Equal(t, 3600, c.MaxAge)
	assert.False(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestRouteGuard_RecentActivityRearms(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/finances", nil)
	req.AddCookie(&http.Cookie{Name: LastActivityCookie, Value: strconv.FormatInt(guardNow.Add(-59*time.Minute).UnixMilli(), 10)})

	rec, reached := serveGuarded(t, RouteGuardConfig{Lookup: signedIn("u1")}, req)

	assert.True(t, reached)
	assert.Equal(t, strconv.FormatInt(guardNow.UnixMilli(), 10), findCookie(rec, LastActivityCookie).Value)
}

func TestRouteGuard_InactivityExpiresSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: LastActivityCookie, Value: strconv.FormatInt(guardNow.Add(-61*time.Minute).UnixMilli(), 10)})

	rec, reached := serveGuarded(t, RouteGuardConfig{Lookup: signedIn("u1")}, req)

	assert.False(t, reached)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	expired := findCookie(rec, SessionExpiredCookie)
	require.NotNil(t, expired)
	assert.Equal(t, "inactivity", expired.Value)
	assert.Equal(t, 60, expired.MaxAge)
	assert.False(t, expired.HttpOnly)

	cleared := findCookie(rec, LastActivityCookie)
	require.NotNil(t, cleared)
	assert.Equal(t, "", cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestRouteGuard_MalformedActivityIgnored(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/pigs", nil)
	req.AddCookie(&http.Cookie{Name: LastActivityCookie, Value: "yesterday"})

	_, reached := serveGuarded(t, RouteGuardConfig{Lookup: signedIn("u1")}, req)
	assert.True(t, reached)
}

func TestRouteGuard_LookupTimeoutIsAnonymous(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		<-release
		return auth.Identity{ID: "u1"}, nil, nil
	}

	rec, reached := serveGuarded(t, RouteGuardConfig{Lookup: slow, LookupTimeout: 20 * time.Millisecond}, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.False(t, reached)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouteGuard_LookupErrorIsAnonymous(t *testing.T) {
	failing := func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		return auth.Identity{}, nil, errors.New("database unavailable")
	}
	rec, _ := serveGuarded(t, RouteGuardConfig{Lookup: failing}, httptest.NewRequest(http.MethodGet, "/reports", nil))
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouteGuard_ForwardsLookupCookies(t *testing.T) {
	rotating := func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		return auth.Identity{ID: "u1"}, []*http.Cookie{{Name: "sb-auth-token", Value: "fresh", Path: "/"}}, nil
	}
	rec, reached := serveGuarded(t, RouteGuardConfig{Lookup: rotating}, httptest.NewRequest(http.MethodGet, "/calendar", nil))

	assert.True(t, reached)
	require.NotNil(t, findCookie(rec, "sb-auth-token"))
	assert.Equal(t, "fresh", findCookie(rec, "sb-auth-token").Value)
}

func TestRouteGuard_RotationCookiesReachBrowser(t *testing.T) {
	rotate := func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		return auth.Identity{ID: "u1"}, []*http.Cookie{{Name: "sb-refresh-token", Value: "rotated", Path: "/"}}, nil
	}
	rec, reached := serveGuarded(t, RouteGuardConfig{Lookup: anonymous, Rotate: rotate}, httptest.NewRequest(http.MethodGet, "/pigs", nil))

	assert.True(t, reached)
	require.NotNil(t, findCookie(rec, "sb-refresh-token"))
	assert.Equal(t, "rotated", findCookie(rec, "sb-refresh-token").Value)
}

func TestRouteGuard_SlowRotationOutlivesLookupTimeout(t *testing.T) {
	rotate := func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		select {
		case <-time.After(60 * time.Millisecond):
		case <-ctx.Done():
			return auth.Identity{}, nil, ctx.Err()
		}
		return auth.Identity{ID: "u1"}, []*http.Cookie{{Name: "sb-refresh-token", Value: "rotated", Path: "/"}}, nil
	}
	cfg := RouteGuardConfig{Lookup: anonymous, Rotate: rotate, LookupTimeout: 10 * time.Millisecond}
	rec, reached := serveGuarded(t, cfg, httptest.NewRequest(http.MethodGet, "/finances", nil))

	assert.True(t, reached)
	require.NotNil(t, findCookie(rec, "sb-refresh-token"))
}

func TestRouteGuard_NoRotationAfterLookupTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		<-release
		return auth.Identity{ID: "u1"}, nil, nil
	}
	rotated := false
	rotate := func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		rotated = true
		return auth.Identity{ID: "u1"}, nil, nil
	}
	cfg := RouteGuardConfig{Lookup: slow, Rotate: rotate, LookupTimeout: 10 * time.Millisecond}
	rec, reached := serveGuarded(t, cfg, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.False(t, reached)
	assert.False(t, rotated)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouteGuard_NoRotationForOtherLookupErrors(t *testing.T) {
	failing := func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		return auth.Identity{}, nil, errors.New("database unavailable")
	}
	rotated := false
	rotate := func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		rotated = true
		return auth.Identity{ID: "u1"}, nil, nil
	}
	rec, _ := serveGuarded(t, RouteGuardConfig{Lookup: failing, Rotate: rotate}, httptest.NewRequest(http.MethodGet, "/pigs", nil))

	assert.False(t, rotated)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, matchesAny("/pigs", ProtectedPaths))
	assert.True(t, matchesAny("/pigs/new", ProtectedPaths))
	assert.False(t, matchesAny("/pigsty", ProtectedPaths))
	assert.False(t, matchesAny("/", ProtectedPaths))
}
