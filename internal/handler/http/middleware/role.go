package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
)

// ProfileGetter resolves the profile of the authenticated user. Roles are read
// from the profile on every request so that role changes apply without a new token.
type ProfileGetter interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
}

func requireProfile(profiles ProfileGetter, allowed func(*profile.Profile) bool, denied error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserID(r.Context())
			if userID == "" {
				response.HandleError(w, auth.ErrNotAuthenticated)
				return
			}

			p, err := profiles.Get(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, profile.ErrProfileNotFound) {
					slog.Error("role check profile lookup failed", "user_id", userID, "error", err)
					response.HandleError(w, err)
					return
				}
				response.HandleError(w, denied)
				return
			}

			if !allowed(&p) {
				response.HandleError(w, denied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin requires the admin role
func RequireAdmin(profiles ProfileGetter) func(http.Handler) http.Handler {
	return requireProfile(profiles, (*profile.Profile).IsAdmin, profile.ErrAdminAccessRequired)
}

// RequireEditor requires admin or employee role
func RequireEditor(profiles ProfileGetter) func(http.Handler) http.Handler {
	return requireProfile(profiles, (*profile.Profile).CanEdit, profile.ErrEditorAccessRequired)
}

// RequirePermission checks if user has specific permission
func RequirePermission(profiles ProfileGetter, permission profile.Permission) func(http.Handler) http.Handler {
	denied := fmt.Errorf("%w: required '%s'", profile.ErrInsufficientPermissions, permission)
	return requireProfile(profiles, func(p *profile.Profile) bool {
		return p.Can(permission)
	}, denied)
}
