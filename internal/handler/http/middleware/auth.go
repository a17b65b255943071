package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
	"github.com/granjalink/farm-backend-go/internal/pkg/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthRequired rejects requests without a valid, unrevoked access token.
// The token is read from the Authorization header first, then from the session cookie.
func AuthRequired(tokens jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			raw := TokenFromRequest(r)
			if raw == "" {
				response.HandleError(w, auth.ErrNotAuthenticated)
				return
			}

			claims, err := tokens.ParseAccessToken(raw)
			if err != nil {
				slog.Debug("access token rejected", "error", err)
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		}
		return http.HandlerFunc(hfn)
	}
}

// TokenFromRequest finds the access token using the same lookups as jwtauth.Verifier.
func TokenFromRequest(r *http.Request) string {
	if token := jwtauth.TokenFromHeader(r); token != "" {
		return token
	}
	return jwt.TokenFromCookie(r)
}

func WithClaims(ctx context.Context, claims jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(jwt.Claims)
	return claims, ok
}

// UserID returns the authenticated user's id, or "" outside AuthRequired.
func UserID(ctx context.Context) string {
	claims, _ := ClaimsFromContext(ctx)
	return claims.UserID
}
