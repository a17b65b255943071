package auth

import "errors"

var (
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrInvalidToken               = errors.New("invalid or expired token")
	ErrTokenExpired               = errors.New("token has expired")
	ErrRefreshTokenRevoked        = errors.New("refresh token has been revoked")
	ErrRefreshTokenCookieNotFound = errors.New("refresh token cookie not found")
	ErrRefreshTokenCookieEmpty    = errors.New("refresh token cookie is empty")
	ErrNotAuthenticated           = errors.New("not authenticated")
	ErrUserNotFound               = errors.New("user not found")
	ErrPasswordResetTokenInvalid  = errors.New("password reset token is invalid or expired")
	ErrGoogleAccessDeniedByUser   = errors.New("google access denied by user")
	ErrStateCookieEmpty           = errors.New("state cookie is empty")
	ErrStateParamEmpty            = errors.New("state parameter is empty")
	ErrStateMismatch              = errors.New("state mismatch")
	ErrCodeValueEmpty             = errors.New("code value is empty")
	ErrOAuthNotConfigured         = errors.New("oauth provider is not configured")
	ErrEmailDeliveryNotConfigured = errors.New("email delivery is not configured")
)
