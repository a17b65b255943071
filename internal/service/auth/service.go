package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/domain/user"
	"github.com/granjalink/farm-backend-go/internal/pkg/email"
	"github.com/granjalink/farm-backend-go/internal/pkg/jwt"
	"github.com/granjalink/farm-backend-go/internal/pkg/sse"
	"github.com/granjalink/farm-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

const passwordResetTTL = time.Hour

const oauthProviderGoogle = "google"

type AuthServiceImpl struct {
	tx            postgresql.Transactor
	users         user.UserRepository
	profiles      profile.ProfileRepository
	tokens        jwt.Service
	refreshTokens auth.RefreshTokenRepository
	resets        auth.PasswordResetRepository
	mailer        email.EmailService
	events        sse.Publisher
	frontendURL   string
	now           func() time.Time
}

func NewAuthService(
	tx postgresql.Transactor,
	userRepository user.UserRepository,
	profileRepository profile.ProfileRepository,
	jwtService jwt.Service,
	refreshTokenRepository auth.RefreshTokenRepository,
	passwordResetRepository auth.PasswordResetRepository,
	mailer email.EmailService,
	events sse.Publisher,
	frontendURL string,
) auth.AuthService {
	return &AuthServiceImpl{
		tx:            tx,
		users:         userRepository,
		profiles:      profileRepository,
		tokens:        jwtService,
		refreshTokens: refreshTokenRepository,
		resets:        passwordResetRepository,
		mailer:        mailer,
		events:        events,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		now:           time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func toIdentity(u user.User) auth.Identity {
	return auth.Identity{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, sessionReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, err := a.users.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !userData.HasPassword() {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueSession(ctx, userData, sessionReq)
}

// LoginWithGoogle implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, identity auth.GoogleIdentity, sessionReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var userData user.User

	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		linked, err := a.users.LinkGoogleAccount(txCtx, identity.GoogleID, identity.Email)
		if err == nil {
			userData = linked
			return nil
		}
		if !errors.Is(err, user.ErrUserNotFound) {
			return fmt.Errorf("failed to link google account: %w", err)
		}

		provider := oauthProviderGoogle
		googleID := identity.GoogleID
		confirmed := a.now()
		created, err := a.users.Create(txCtx, user.User{
			Email:            identity.Email,
			OAuthProvider:    &provider,
			OAuthProviderID:  &googleID,
			EmailConfirmedAt: &confirmed,
		})
		if err != nil {
			return fmt.Errorf("failed to create google user: %w", err)
		}

		fullName := identity.FullName
		if fullName == "" {
			fullName = strings.Split(identity.Email, "@")[0]
		}
		if _, err := a.profiles.Upsert(txCtx, profile.Profile{
			ID:       created.ID,
			FullName: fullName,
			Role:     profile.RoleViewer,
		}); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		userData = created
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return a.issueSession(ctx, userData, sessionReq)
}

// issueSession mints an access/refresh pair and persists the refresh token.
func (a *AuthServiceImpl) issueSession(ctx context.Context, userData user.User, sessionReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	role := profile.RoleViewer
	p, err := a.profiles.GetByID(ctx, userData.ID)
	switch {
	case err == nil:
		role = p.Role
	case errors.Is(err, profile.ErrProfileNotFound):
		slog.Warn("user has no profile, issuing viewer session", "user_id", userData.ID)
	default:
		return auth.TokenResponse{}, fmt.Errorf("failed to get profile: %w", err)
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		tokenResponse.AccessToken, tokenResponse.ExpiresAt, err = a.tokens.GenerateAccessToken(userData.ID, userData.Email, role)
		if err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}
		tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresAt, err = a.tokens.GenerateRefreshToken(userData.ID)
		if err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}

		if err := a.refreshTokens.Create(txCtx, userData.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresAt, sessionReq); err != nil {
			return fmt.Errorf("failed to save refresh token to database: %w", err)
		}
		if err := a.users.TouchLastSignIn(txCtx, userData.ID); err != nil {
			return fmt.Errorf("failed to record sign in: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	tokenResponse.User = toIdentity(userData)
	return tokenResponse, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, accessToken string, refreshToken string) error {
	var userID string

	if accessToken != "" {
		if claims, err := a.tokens.ParseAccessToken(accessToken); err == nil {
			a.tokens.RevokeToken(accessToken, claims.ExpiresAt)
			userID = claims.UserID
		}
	}

	if refreshToken != "" {
		if id, err := a.tokens.ParseRefreshToken(refreshToken); err == nil && userID == "" {
			userID = id
		}
		if err := a.refreshTokens.Revoke(ctx, refreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}

	if userID != "" {
		a.events.Publish(userID, sse.Event{Event: string(auth.EventSignedOut)})
	}
	return nil
}

// RefreshToken implements auth.AuthService. The presented token is revoked and replaced.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest, sessionReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userID, err := a.tokens.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	stored, err := a.refreshTokens.GetByToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return auth.TokenResponse{}, auth.ErrRefreshTokenRevoked
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if !stored.Active(a.now()) || stored.UserID != userID {
		return auth.TokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	userData, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrRefreshTokenRevoked
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := a.refreshTokens.Revoke(txCtx, req.RefreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		var err error
		tokenResponse, err = a.issueSession(txCtx, userData, sessionReq)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	a.events.Publish(userID, sse.Event{
		Event: string(auth.EventTokenRefreshed),
		Data:  map[string]int64{"expires_at": tokenResponse.ExpiresAt},
	})
	return tokenResponse, nil
}

// Me implements auth.AuthService. A missing profile is not an error.
func (a *AuthServiceImpl) Me(ctx context.Context, userID string) (auth.MeResponse, error) {
	userData, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.MeResponse{}, auth.ErrNotAuthenticated
		}
		return auth.MeResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	resp := auth.MeResponse{User: toIdentity(userData)}

	p, err := a.profiles.GetByID(ctx, userID)
	switch {
	case err == nil:
		resp.Profile = &p
	case errors.Is(err, profile.ErrProfileNotFound):
	default:
		return auth.MeResponse{}, fmt.Errorf("failed to get profile: %w", err)
	}

	return resp, nil
}

// ForgotPassword implements auth.AuthService. Unknown emails succeed silently.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) error {
	userData, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			slog.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}

	expiresAt := a.now().Add(passwordResetTTL)
	if err := a.resets.Create(ctx, userData.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to save password reset: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", a.frontendURL, token)
	if err := a.mailer.SendPasswordReset(ctx, userData.Email, link, expiresAt.Format("2006-01-02 15:04 MST")); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// ResetPassword implements auth.AuthService. Every session of the user is revoked.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var userID string
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		userID, err = a.resets.Consume(txCtx, req.Token)
		if err != nil {
			return err
		}
		if err := a.users.UpdatePassword(txCtx, userID, hashed); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := a.refreshTokens.RevokeAllForUser(txCtx, userID); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.events.Publish(userID, sse.Event{Event: string(auth.EventSignedOut)})
	return nil
}

// CleanupExpiredTokens implements auth.AuthService.
func (a *AuthServiceImpl) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	deleted, err := a.refreshTokens.DeleteExpired(ctx, a.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return deleted, nil
}

func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
