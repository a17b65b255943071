package auth

import (
	"context"
	"time"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, userID string, token string, expiresAt int64, sessionReq SessionTrackingRequest) error
	GetByToken(ctx context.Context, token string) (RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type PasswordResetRepository interface {
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error
	// Consume marks the token used and returns its owner. Unknown, used or expired tokens return ErrPasswordResetTokenInvalid.
	Consume(ctx context.Context, token string) (string, error)
}
