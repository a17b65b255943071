package user

import (
	"context"
)

// UserRepository stores sign-in accounts. Lookups by email are case-insensitive.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	// List returns every account, newest first, for the admin console.
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, newUser User) (User, error)
	// LinkGoogleAccount attaches googleID to the account registered with email.
	LinkGoogleAccount(ctx context.Context, googleID string, email string) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	TouchLastSignIn(ctx context.Context, userID string) error
	// Delete removes the account; its profile and refresh tokens cascade.
	Delete(ctx context.Context, userID string) error
}
