package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/expense"
	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/domain/user"
	"github.com/granjalink/farm-backend-go/internal/domain/vaccination"
	"github.com/granjalink/farm-backend-go/internal/pkg/oauth"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrNotAuthenticated), errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Not authenticated")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked),
		errors.Is(err, auth.ErrRefreshTokenCookieNotFound),
		errors.Is(err, auth.ErrRefreshTokenCookieEmpty):
		SessionExpired(w, "Session expired, sign in again")
	case errors.Is(err, auth.ErrPasswordResetTokenInvalid):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, auth.ErrStateMismatch),
		errors.Is(err, auth.ErrStateCookieEmpty),
		errors.Is(err, auth.ErrStateParamEmpty),
		errors.Is(err, auth.ErrCodeValueEmpty):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, auth.ErrOAuthNotConfigured), errors.Is(err, auth.ErrEmailDeliveryNotConfigured):
		ServiceUnavailable(w, err.Error())
	case errors.Is(err, oauth.ErrEmailNotVerified):
		Forbidden(w, "Email not verified")

	// Profile and role errors
	case errors.Is(err, profile.ErrAdminAccessRequired),
		errors.Is(err, profile.ErrEditorAccessRequired),
		errors.Is(err, profile.ErrInsufficientPermissions):
		Forbidden(w, err.Error())
	case errors.Is(err, profile.ErrProfileNotFound):
		NotFound(w, "Profile not found")
	case errors.Is(err, profile.ErrInvalidRole), errors.Is(err, profile.ErrInvalidAvatar), errors.Is(err, profile.ErrAvatarTooLarge):
		BadRequest(w, err.Error(), nil)

	// User administration errors
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, auth.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrCannotDeleteSelf):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, user.ErrPasswordTooShort), errors.Is(err, user.ErrUserIDRequired):
		BadRequest(w, err.Error(), nil)

	// Farm domain errors
	case errors.Is(err, pig.ErrPigNotFound):
		NotFound(w, "Pig not found")
	case errors.Is(err, pig.ErrIdentifierConflict):
		Conflict(w, err.Error())
	case errors.Is(err, pig.ErrInvalidBatchSize):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, expense.ErrExpenseNotFound):
		NotFound(w, "Expense not found")
	case errors.Is(err, expense.ErrPigNotFound), errors.Is(err, vaccination.ErrPigNotFound):
		NotFound(w, "Referenced pig not found")
	case errors.Is(err, vaccination.ErrVaccinationNotFound):
		NotFound(w, "Vaccination not found")
	case errors.Is(err, vaccination.ErrScheduleNotFound):
		NotFound(w, "Vaccination schedule not found")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
