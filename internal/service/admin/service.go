package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/domain/user"
	"github.com/granjalink/farm-backend-go/internal/pkg/sse"
	"github.com/granjalink/farm-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

type AdminServiceImpl struct {
	tx            postgresql.Transactor
	users         user.UserRepository
	profiles      profile.ProfileRepository
	refreshTokens auth.RefreshTokenRepository
	events        sse.Publisher
	now           func() time.Time
}

func NewAdminService(
	tx postgresql.Transactor,
	userRepository user.UserRepository,
	profileRepository profile.ProfileRepository,
	refreshTokenRepository auth.RefreshTokenRepository,
	events sse.Publisher,
) user.AdminService {
	return &AdminServiceImpl{
		tx:            tx,
		users:         userRepository,
		profiles:      profileRepository,
		refreshTokens: refreshTokenRepository,
		events:        events,
		now:           time.Now,
	}
}

// ListUsers joins every profile with its account. Profiles without an account are skipped.
func (s *AdminServiceImpl) ListUsers(ctx context.Context) ([]user.AdminUserResponse, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	byID := make(map[string]user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	result := make([]user.AdminUserResponse, 0, len(profiles))
	for _, p := range profiles {
		u, ok := byID[p.ID]
		if !ok {
			slog.Warn("profile without account", "profile_id", p.ID)
			continue
		}
		result = append(result, user.AdminUserResponse{
			Profile:        p,
			Email:          u.Email,
			LastSignIn:     u.LastSignInAt,
			EmailConfirmed: u.EmailConfirmedAt != nil,
		})
	}
	return result, nil
}

// CreateUser creates a confirmed account and its profile.
func (s *AdminServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)
	confirmed := s.now()

	var userID string
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err := s.users.Create(txCtx, user.User{
			Email:            strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash:     &hashed,
			EmailConfirmedAt: &confirmed,
		})
		if err != nil {
			return err
		}

		if _, err := s.profiles.Upsert(txCtx, profile.Profile{
			ID:       created.ID,
			FullName: req.FullName,
			Role:     req.Role,
		}); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		userID = created.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("user created by admin", "user_id", userID, "role", req.Role)
	return userID, nil
}

func (s *AdminServiceImpl) UpdateRole(ctx context.Context, userID string, req user.UpdateRoleRequest) error {
	if userID == "" {
		return user.ErrUserIDRequired
	}
	if !req.Role.Valid() {
		return profile.ErrInvalidRole
	}
	return s.profiles.UpdateRole(ctx, userID, req.Role)
}

// DeleteUser removes the account and ends its sessions. Admins cannot delete themselves.
func (s *AdminServiceImpl) DeleteUser(ctx context.Context, actorID string, userID string) error {
	if userID == "" {
		return user.ErrUserIDRequired
	}
	if actorID == userID {
		return user.ErrCannotDeleteSelf
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.events.Publish(userID, sse.Event{Event: string(auth.EventSignedOut)})
	slog.Info("user deleted by admin", "user_id", userID, "actor_id", actorID)
	return nil
}

// ResetPassword sets a new password for another user and revokes their refresh tokens.
func (s *AdminServiceImpl) ResetPassword(ctx context.Context, req user.ResetPasswordRequest) error {
	if len(req.NewPassword) < 6 {
		return user.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.users.UpdatePassword(txCtx, req.UserID, string(hash)); err != nil {
			return err
		}
		if err := s.refreshTokens.RevokeAllForUser(txCtx, req.UserID); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.events.Publish(req.UserID, sse.Event{Event: string(auth.EventSignedOut)})
	return nil
}
