package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/pkg/jwt"
)

const (
	LastActivityCookie   = "last_activity"
	SessionExpiredCookie = "session_expired"

	DefaultInactivityTimeout = 60 * time.Minute
	DefaultLookupTimeout     = 5 * time.Second

	sessionExpiredMaxAge = 60
)

var (
	// PublicOnlyPaths redirect signed-in users to the dashboard.
	PublicOnlyPaths = []string{"/login", "/register", "/forgot-password", "/reset-password"}
	// ProtectedPaths redirect anonymous users to the login page.
	ProtectedPaths = []string{"/dashboard", "/pigs", "/finances", "/calendar", "/profile", "/admin", "/vaccinations", "/reports"}
)

var errLookupTimeout = errors.New("identity lookup timed out")

// IdentityLookup resolves the caller of a view request. Cookies it returns are
// set on the response.
type IdentityLookup func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error)

type RouteGuardConfig struct {
	// Lookup is bounded by LookupTimeout; a timeout reads as anonymous.
	Lookup IdentityLookup

	// Rotate runs when Lookup reports auth.ErrNotAuthenticated. It is not bounded
	// by LookupTimeout: a rotation that revokes the old refresh token must hand the
	// new one to the browser.
	Rotate IdentityLookup

	InactivityTimeout time.Duration
	LookupTimeout     time.Duration
	SecureCookies     bool
	Now               func() time.Time
}

// RouteGuard protects the view routes: anonymous users are sent to /login,
// signed-in users are kept away from the login pages and idle sessions expire.
func RouteGuard(cfg RouteGuardConfig) func(http.Handler) http.Handler {
	if cfg.InactivityTimeout <= 0 {
		cfg.InactivityTimeout = DefaultInactivityTimeout
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			public := matchesAny(path, PublicOnlyPaths)
			protected := matchesAny(path, ProtectedPaths)
			if !public && !protected {
				next.ServeHTTP(w, r)
				return
			}

			identity, cookies, err := lookupWithTimeout(r, cfg.Lookup, cfg.LookupTimeout)
			if cfg.Rotate != nil && errors.Is(err, auth.ErrNotAuthenticated) {
				identity, cookies, err = cfg.Rotate(r.Context(), r)
			}
			if err != nil {
				slog.Debug("route guard treating request as anonymous", "path", path, "error", err)
			}
			for _, c := range cookies {
				http.SetCookie(w, c)
			}
			authenticated := err == nil && identity.ID != ""

			if public {
				if authenticated {
					redirect(w, r, "/dashboard")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !authenticated {
				redirect(w, r, "/login")
				return
			}

			now := cfg.Now()
			if last, ok := lastActivity(r); ok && now.Sub(last) > cfg.InactivityTimeout {
				slog.Info("session expired by inactivity", "user_id", identity.ID, "idle", now.Sub(last).Round(time.Second).String())
				http.SetCookie(w, &http.Cookie{
					Name:   SessionExpiredCookie,
					Value:  "inactivity",
					Path:   "/",
					MaxAge: sessionExpiredMaxAge,
				})
				http.SetCookie(w, &http.Cookie{
					Name:   LastActivityCookie,
					Value:  "",
					Path:   "/",
					MaxAge: -1,
				})
				redirect(w, r, "/login")
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     LastActivityCookie,
				Value:    strconv.FormatInt(now.UnixMilli(), 10),
				Path:     "/",
				MaxAge:   int(cfg.InactivityTimeout.Seconds()),
				Secure:   cfg.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r)
		})
	}
}

// SessionLookup resolves identities from the access cookie. A missing or expired
// access token yields auth.ErrNotAuthenticated so SessionRotation can take over.
func SessionLookup(tokens jwt.Service, authService auth.AuthService) IdentityLookup {
	return func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		raw := jwt.TokenFromCookie(r)
		if raw == "" {
			return auth.Identity{}, nil, auth.ErrNotAuthenticated
		}
		claims, err := tokens.ParseAccessToken(raw)
		if err != nil {
			return auth.Identity{}, nil, auth.ErrNotAuthenticated
		}
		me, err := authService.Me(ctx, claims.UserID)
		if err != nil {
			return auth.Identity{}, nil, err
		}
		return me.User, nil, nil
	}
}

// SessionRotation exchanges the refresh cookie for a new session and returns the
// new pair as cookies. A rejected refresh token clears both cookies.
func SessionRotation(tokens jwt.Service, authService auth.AuthService) IdentityLookup {
	return func(ctx context.Context, r *http.Request) (auth.Identity, []*http.Cookie, error) {
		refresh, err := r.Cookie(jwt.RefreshTokenCookie)
		if err != nil || refresh.Value == "" {
			return auth.Identity{}, nil, auth.ErrNotAuthenticated
		}
		session, err := authService.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: refresh.Value}, auth.SessionTrackingRequest{
			UserAgent: r.UserAgent(),
			IPAddress: r.RemoteAddr,
		})
		if err != nil {
			return auth.Identity{}, tokens.ClearSessionCookies(), err
		}
		return session.User, tokens.SessionCookies(session.AccessToken, session.RefreshToken), nil
	}
}

type lookupResult struct {
	identity auth.Identity
	cookies  []*http.Cookie
	err      error
}

func lookupWithTimeout(r *http.Request, lookup IdentityLookup, timeout time.Duration) (auth.Identity, []*http.Cookie, error) {
	if lookup == nil {
		return auth.Identity{}, nil, auth.ErrNotAuthenticated
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	done := make(chan lookupResult, 1)
	go func() {
		identity, cookies, err := lookup(ctx, r)
		done <- lookupResult{identity: identity, cookies: cookies, err: err}
	}()

	select {
	case res := <-done:
		return res.identity, res.cookies, res.err
	case <-ctx.Done():
		return auth.Identity{}, nil, errLookupTimeout
	}
}

func lastActivity(r *http.Request) (time.Time, bool) {
	c, err := r.Cookie(LastActivityCookie)
	if err != nil || c.Value == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(c.Value, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusTemporaryRedirect)
}
