package user

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailExists      = errors.New("email already registered")
	ErrCannotDeleteSelf     = errors.New("cannot delete your own account")
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters")
	ErrUserIDRequired       = errors.New("user ID is required")
	ErrInvalidOAuthProvider = errors.New("invalid oauth provider")
)
