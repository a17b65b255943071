package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/domain/user"
	"github.com/granjalink/farm-backend-go/internal/pkg/email"
	"github.com/granjalink/farm-backend-go/internal/pkg/jwt"
	"github.com/granjalink/farm-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeUsers struct {
	byID map[string]user.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(context.Context) ([]user.User, error) { return nil, nil }

func (f *fakeUsers) Create(_ context.Context, newUser user.User) (user.User, error) {
	newUser.ID = "google-user"
	f.byID[newUser.ID] = newUser
	return newUser, nil
}

func (f *fakeUsers) LinkGoogleAccount(_ context.Context, googleID string, email string) (user.User, error) {
	for id, u := range f.byID {
		if u.Email == email {
			u.OAuthProviderID = &googleID
			f.byID[id] = u
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = &passwordHash
	f.byID[userID] = u
	return nil
}

func (f *fakeUsers) TouchLastSignIn(context.Context, string) error { return nil }
func (f *fakeUsers) Delete(context.Context, string) error          { return nil }

type fakeProfiles struct {
	byID map[string]profile.Profile
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (profile.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return profile.Profile{}, profile.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) List(context.Context) ([]profile.Profile, error) { return nil, nil }

func (f *fakeProfiles) Upsert(_ context.Context, p profile.Profile) (profile.Profile, error) {
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeProfiles) Update(context.Context, string, profile.UpdateProfileRequest) (profile.Profile, error) {
	return profile.Profile{}, nil
}

func (f *fakeProfiles) UpdateRole(context.Context, string, profile.Role) error { return nil }

type fakeRefreshTokens struct {
	tokens map[string]auth.RefreshToken
}

func (f *fakeRefreshTokens) Create(_ context.Context, userID string, token string, expiresAt int64, _ auth.SessionTrackingRequest) error {
	f.tokens[token] = auth.RefreshToken{ID: token, UserID: userID, ExpiresAt: time.Unix(expiresAt, 0)}
	return nil
}

func (f *fakeRefreshTokens) GetByToken(_ context.Context, token string) (auth.RefreshToken, error) {
	rt, ok := f.tokens[token]
	if !ok {
		return auth.RefreshToken{}, auth.ErrInvalidToken
	}
	return rt, nil
}

func (f *fakeRefreshTokens) Revoke(_ context.Context, token string) error {
	if rt, ok := f.tokens[token]; ok {
		now := time.Now()
		rt.RevokedAt = &now
		f.tokens[token] = rt
	}
	return nil
}

func (f *fakeRefreshTokens) RevokeAllForUser(ctx context.Context, userID string) error {
	for token, rt := range f.tokens {
		if rt.UserID == userID {
			_ = f.Revoke(ctx, token)
		}
	}
	return nil
}

func (f *fakeRefreshTokens) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for token, rt := range f.tokens {
		if rt.ExpiresAt.Before(before) {
			delete(f.tokens, token)
			n++
		}
	}
	return n, nil
}

type fakeResets struct {
	owners map[string]string
}

func (f *fakeResets) Create(_ context.Context, userID string, token string, _ time.Time) error {
	f.owners[token] = userID
	return nil
}

func (f *fakeResets) Consume(_ context.Context, token string) (string, error) {
	userID, ok := f.owners[token]
	if !ok {
		return "", auth.ErrPasswordResetTokenInvalid
	}
	delete(f.owners, token)
	return userID, nil
}

type fakeMailer struct {
	links []string
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, _, resetLink, _ string) error {
	f.links = append(f.links, resetLink)
	return nil
}

func (f *fakeMailer) SendVaccinationReminder(context.Context, string, email.VaccinationReminder) error {
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingPublisher) Publish(userID string, event sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.UserID = userID
	r.events = append(r.events, event)
}

type authFixture struct {
	svc      *AuthServiceImpl
	users    *fakeUsers
	profiles *fakeProfiles
	tokens   *fakeRefreshTokens
	resets   *fakeResets
	mailer   *fakeMailer
	events   *recordingPublisher
	jwt      jwt.Service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := string(hash)

	jwtService, err := jwt.NewJWTService(testSecret, "1h", "24h", jwt.CookieConfig{MaxAge: 7 * 24 * time.Hour})
	require.NoError(t, err)

	f := &authFixture{
		users: &fakeUsers{byID: map[string]user.User{
			"u1": {ID: "u1", Email: "u1@farm.test", PasswordHash: &hashed},
			"u2": {ID: "u2", Email: "oauth@farm.test"},
		}},
		profiles: &fakeProfiles{byID: map[string]profile.Profile{
			"u1": {ID: "u1", FullName: "Ana", Role: profile.RoleEmployee},
		}},
		tokens: &fakeRefreshTokens{tokens: map[string]auth.RefreshToken{}},
		resets: &fakeResets{owners: map[string]string{}},
		mailer: &fakeMailer{},
		events: &recordingPublisher{},
		jwt:    jwtService,
	}
	f.svc = NewAuthService(passthroughTx{}, f.users, f.profiles, jwtService, f.tokens, f.resets, f.mailer, f.events, "http://localhost:3000/").(*AuthServiceImpl)
	return f
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success carries role claim", func(t *testing.T) {
		f := newAuthFixture(t)

		resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "u1@farm.test", Password: "password123"}, auth.SessionTrackingRequest{})
		require.NoError(t, err)
		assert.Equal(t, "u1", resp.User.ID)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Contains(t, f.tokens.tokens, resp.RefreshToken)

		claims, err := f.jwt.ParseAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, profile.RoleEmployee, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Login(ctx, auth.LoginRequest{Email: "u1@farm.test", Password: "nope"}, auth.SessionTrackingRequest{})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Login(ctx, auth.LoginRequest{Email: "ghost@farm.test", Password: "password123"}, auth.SessionTrackingRequest{})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("oauth-only account has no password", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Login(ctx, auth.LoginRequest{Email: "oauth@farm.test", Password: "password123"}, auth.SessionTrackingRequest{})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	ctx := context.Background()

	t.Run("links existing account", func(t *testing.T) {
		f := newAuthFixture(t)
		resp, err := f.svc.LoginWithGoogle(ctx, auth.GoogleIdentity{GoogleID: "g-1", Email: "u1@farm.test"}, auth.SessionTrackingRequest{})
		require.NoError(t, err)
		assert.Equal(t, "u1", resp.User.ID)
		assert.Equal(t, "g-1", *f.users.byID["u1"].OAuthProviderID)
	})

	t.Run("creates viewer for new account", func(t *testing.T) {
		f := newAuthFixture(t)
		resp, err := f.svc.LoginWithGoogle(ctx, auth.GoogleIdentity{GoogleID: "g-2", Email: "new@farm.test"}, auth.SessionTrackingRequest{})
		require.NoError(t, err)

		p := f.profiles.byID[resp.User.ID]
		assert.Equal(t, profile.RoleViewer, p.Role)
		assert.Equal(t, "new", p.FullName)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates and publishes", func(t *testing.T) {
		f := newAuthFixture(t)
		first, err := f.svc.Login(ctx, auth.LoginRequest{Email: "u1@farm.test", Password: "password123"}, auth.SessionTrackingRequest{})
		require.NoError(t, err)

		second, err := f.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: first.RefreshToken}, auth.SessionTrackingRequest{})
		require.NoError(t, err)
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
		assert.NotNil(t, f.tokens.tokens[first.RefreshToken].RevokedAt)

		require.Len(t, f.events.events, 1)
		assert.Equal(t, string(auth.EventTokenRefreshed), f.events.events[0].Event)

		_, err = f.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: first.RefreshToken}, auth.SessionTrackingRequest{})
		assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
	})

	t.Run("garbage token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: "not-a-jwt"}, auth.SessionTrackingRequest{})
		assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		f := newAuthFixture(t)
		resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "u1@farm.test", Password: "password123"}, auth.SessionTrackingRequest{})
		require.NoError(t, err)

		_, err = f.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: resp.AccessToken}, auth.SessionTrackingRequest{})
		assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
	})

	t.Run("expired stored token", func(t *testing.T) {
		f := newAuthFixture(t)
		resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "u1@farm.test", Password: "password123"}, auth.SessionTrackingRequest{})
		require.NoError(t, err)

		f.svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
		_, err = f.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: resp.RefreshToken}, auth.SessionTrackingRequest{})
		assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "u1@farm.test", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, resp.AccessToken, resp.RefreshToken))

	assert.True(t, f.jwt.IsTokenRevoked(resp.AccessToken))
	assert.NotNil(t, f.tokens.tokens[resp.RefreshToken].RevokedAt)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, string(auth.EventSignedOut), f.events.events[0].Event)
	assert.Equal(t, "u1", f.events.events[0].UserID)

	// Logging out without tokens is a no-op.
	require.NoError(t, f.svc.Logout(ctx, "", ""))
	assert.Len(t, f.events.events, 1)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	me, err := f.svc.Me(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, me.Profile)
	assert.True(t, me.Profile.CanEdit())
	assert.False(t, me.Profile.IsAdmin())

	me, err = f.svc.Me(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, me.Profile)

	_, err = f.svc.Me(ctx, "ghost")
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	login, err := f.svc.Login(ctx, auth.LoginRequest{Email: "u1@farm.test", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, auth.ForgotPasswordRequest{Email: "u1@farm.test"}))
	require.Len(t, f.mailer.links, 1)
	assert.True(t, strings.HasPrefix(f.mailer.links[0], "http://localhost:3000/reset-password?token="))

	token := strings.TrimPrefix(f.mailer.links[0], "http://localhost:3000/reset-password?token=")
	require.NoError(t, f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: token, Password: "newpass", ConfirmPassword: "newpass"}))

	assert.NotNil(t, f.tokens.tokens[login.RefreshToken].RevokedAt)
	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "u1@farm.test", Password: "newpass"}, auth.SessionTrackingRequest{})
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: token, Password: "again1", ConfirmPassword: "again1"})
	assert.True(t, errors.Is(err, auth.ErrPasswordResetTokenInvalid))
}

func TestAuthService_ForgotPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.ForgotPassword(context.Background(), auth.ForgotPasswordRequest{Email: "ghost@farm.test"}))
	assert.Empty(t, f.mailer.links)
}

func TestAuthService_CleanupExpiredTokens(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.tokens.tokens["old"] = auth.RefreshToken{UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)}
	f.tokens.tokens["fresh"] = auth.RefreshToken{UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}

	n, err := f.svc.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, f.tokens.tokens, "fresh")
}
