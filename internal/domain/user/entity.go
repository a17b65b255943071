package user

import "time"

type User struct {
	ID               string
	Email            string
	PasswordHash     *string
	OAuthProvider    *string
	OAuthProviderID  *string
	EmailConfirmedAt *time.Time
	LastSignInAt     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPassword reports whether the account can sign in with email and password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
