package auth

import (
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

const (
	minPasswordLength = 6
	maxEmailLength    = 254
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors
	checkEmail(&errs, r.Email)
	errs.Required("password", r.Password)
	return errs.Err()
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("refresh_token", r.RefreshToken)
	return errs.Err()
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	var errs validator.ValidationErrors
	checkEmail(&errs, r.Email)
	return errs.Err()
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("token", r.Token)
	if errs.Required("password", r.Password) && len(r.Password) < minPasswordLength {
		errs.Addf("password", "password must be at least %d characters long", minPasswordLength)
	}
	if r.ConfirmPassword != r.Password {
		errs.Add("confirm_password", "password and confirm_password do not match")
	}
	return errs.Err()
}

// checkEmail enforces presence, the RFC 5321 length cap and a plausible shape.
func checkEmail(errs *validator.ValidationErrors, email string) {
	switch {
	case !errs.Required("email", email):
	case len(email) > maxEmailLength:
		errs.Addf("email", "email must not exceed %d characters", maxEmailLength)
	case !validator.IsValidEmail(email):
		errs.Add("email", "email must be a valid email address")
	}
}

// GoogleIdentity is the verified account data returned by the Google callback.
type GoogleIdentity struct {
	GoogleID string
	Email    string
	FullName string
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

// TokenResponse carries a fresh token pair. Expiries are Unix seconds.
type TokenResponse struct {
	AccessToken           string   `json:"access_token"`
	ExpiresAt             int64    `json:"expires_at"`
	RefreshToken          string   `json:"refresh_token"`
	RefreshTokenExpiresAt int64    `json:"refresh_token_expires_at"`
	User                  Identity `json:"user"`
}

// MeResponse is the payload of GET /auth/me and the hydration source for clients.
type MeResponse struct {
	User    Identity         `json:"user"`
	Profile *profile.Profile `json:"profile"`
}
