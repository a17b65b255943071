package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest, sessionReq SessionTrackingRequest) (TokenResponse, error)
	LoginWithGoogle(ctx context.Context, identity GoogleIdentity, sessionReq SessionTrackingRequest) (TokenResponse, error)
	// Logout revokes both tokens. Either may be empty.
	Logout(ctx context.Context, accessToken string, refreshToken string) error
	RefreshToken(ctx context.Context, req RefreshTokenRequest, sessionReq SessionTrackingRequest) (TokenResponse, error)
	Me(ctx context.Context, userID string) (MeResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}
