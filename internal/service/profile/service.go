package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/pkg/storage"
)

type ProfileServiceImpl struct {
	profile.ProfileRepository
	files storage.FileStorage
}

func NewProfileService(profileRepository profile.ProfileRepository, files storage.FileStorage) profile.ProfileService {
	return &ProfileServiceImpl{ProfileRepository: profileRepository, files: files}
}

// Get implements profile.ProfileService.
func (s *ProfileServiceImpl) Get(ctx context.Context, userID string) (profile.Profile, error) {
	return s.ProfileRepository.GetByID(ctx, userID)
}

// Update implements profile.ProfileService. Role and permissions are not user-editable.
func (s *ProfileServiceImpl) Update(ctx context.Context, userID string, req profile.UpdateProfileRequest) (profile.Profile, error) {
	if req.AvatarURL != nil && *req.AvatarURL == "" {
		req.AvatarURL = nil
	}
	return s.ProfileRepository.Update(ctx, userID, req)
}

// UploadAvatar implements profile.ProfileService.
func (s *ProfileServiceImpl) UploadAvatar(ctx context.Context, userID string, image io.Reader) (profile.Profile, error) {
	current, err := s.ProfileRepository.GetByID(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}

	normalized, err := normalizeAvatar(io.LimitReader(image, profile.MaxAvatarBytes+1))
	if err != nil {
		return profile.Profile{}, err
	}

	key := fmt.Sprintf("avatars/%s/%s.jpg", userID, uuid.NewString())
	key, err = s.files.Upload(ctx, normalized, key, "image/jpeg")
	if err != nil {
		return profile.Profile{}, fmt.Errorf("store avatar: %w", err)
	}

	url := s.files.URL(key)
	updated, err := s.ProfileRepository.Update(ctx, userID, profile.UpdateProfileRequest{FullName: current.FullName, AvatarURL: &url})
	if err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			slog.Warn("Orphaned avatar left in storage", "key", key, "error", delErr)
		}
		return profile.Profile{}, err
	}

	if current.AvatarURL != nil {
		if old, ok := s.files.Key(*current.AvatarURL); ok {
			if err := s.files.Delete(ctx, old); err != nil {
				slog.Warn("Delete previous avatar failed", "key", old, "error", err)
			}
		}
	}
	return updated, nil
}
