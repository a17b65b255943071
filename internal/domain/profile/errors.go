package profile

import "errors"

var (
	ErrProfileNotFound         = errors.New("profile not found")
	ErrInvalidRole             = errors.New("invalid role")
	ErrAdminAccessRequired     = errors.New("admin access required")
	ErrEditorAccessRequired    = errors.New("admin or employee role required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrInvalidAvatar           = errors.New("avatar must be a JPEG or PNG image")
	ErrAvatarTooLarge          = errors.New("avatar exceeds 5 MB")
)
