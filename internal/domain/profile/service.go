package profile

import (
	"context"
	"io"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (Profile, error)
	Update(ctx context.Context, userID string, req UpdateProfileRequest) (Profile, error)
	// UploadAvatar stores a JPEG or PNG image as the user's avatar and replaces the previous one.
	UploadAvatar(ctx context.Context, userID string, image io.Reader) (Profile, error)
}
