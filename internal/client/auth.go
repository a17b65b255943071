package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/pkg/localstore"
)

// SessionStorage persists the session between runs and across processes.
type SessionStorage interface {
	GetJSON(key string, v any) (bool, error)
	SetJSON(key string, v any) error
	Delete(key string) error
}

// AuthClient signs users in and out and keeps the session in SessionStorage.
// Listeners registered with OnAuthStateChange see every local session change.
type AuthClient struct {
	transport
	storage SessionStorage
	now     func() time.Time

	mu        sync.Mutex
	listeners map[int]func(auth.Event)
	nextID    int
}

func NewAuthClient(baseURL string, storage SessionStorage, opts Options) *AuthClient {
	opts = opts.withDefaults()
	return &AuthClient{
		transport: newTransport(baseURL, opts),
		storage:   storage,
		now:       opts.Now,
		listeners: make(map[int]func(auth.Event)),
	}
}

// OnAuthStateChange registers fn for SIGNED_IN, SIGNED_OUT and TOKEN_REFRESHED events.
// Listeners run synchronously on the goroutine that changed the session.
func (c *AuthClient) OnAuthStateChange(fn func(auth.Event)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *AuthClient) emit(event auth.Event) {
	c.mu.Lock()
	listeners := make([]func(auth.Event), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func sessionFromTokens(tokens auth.TokenResponse) auth.Session {
	return auth.Session{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    time.Unix(tokens.ExpiresAt, 0),
		User:         tokens.User,
	}
}

func (c *AuthClient) saveSession(session auth.Session) error {
	if err := c.storage.SetJSON(localstore.SessionKey, session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (c *AuthClient) clearSession() {
	if err := c.storage.Delete(localstore.SessionKey); err != nil {
		c.logger.Warn("clear stored session failed", "error", err)
	}
}

// SignIn exchanges credentials for a session and announces SIGNED_IN.
func (c *AuthClient) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	var tokens auth.TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", auth.LoginRequest{Email: email, Password: password}, &tokens)
	if err != nil {
		return auth.Session{}, err
	}

	session := sessionFromTokens(tokens)
	if err := c.saveSession(session); err != nil {
		return auth.Session{}, err
	}
	c.emit(auth.Event{Type: auth.EventSignedIn, Session: &session})
	return session, nil
}

// SignOut revokes the session on the server when possible. The local session is
// always discarded and SIGNED_OUT is always announced.
func (c *AuthClient) SignOut(ctx context.Context) error {
	session, err := c.GetSession(ctx)
	if err != nil {
		c.logger.Warn("read session before sign out failed", "error", err)
	}

	var remoteErr error
	if session != nil {
		remoteErr = c.do(ctx, http.MethodPost, "/auth/logout", session.AccessToken, auth.RefreshTokenRequest{RefreshToken: session.RefreshToken}, nil)
		if remoteErr != nil {
			c.logger.Warn("server sign out failed", "error", remoteErr)
		}
	}

	c.clearSession()
	c.emit(auth.Event{Type: auth.EventSignedOut})
	return remoteErr
}

// GetSession returns the stored session, or nil when signed out. It never calls the API.
func (c *AuthClient) GetSession(ctx context.Context) (*auth.Session, error) {
	var session auth.Session
	ok, err := c.storage.GetJSON(localstore.SessionKey, &session)
	if err != nil {
		return nil, err
	}
	if !ok || session.AccessToken == "" {
		return nil, nil
	}
	return &session, nil
}

// GetUser validates the stored session with the API and returns its identity, or
// nil when signed out. An expired access token is refreshed first.
func (c *AuthClient) GetUser(ctx context.Context) (*auth.Identity, error) {
	session, err := c.GetSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}

	if session.Expired(c.now()) {
		session, err = c.RefreshSession(ctx)
		if err != nil {
			if errors.Is(err, ErrInvalidRefreshToken) {
				return nil, nil
			}
			return nil, err
		}
	}

	var me auth.MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", session.AccessToken, nil, &me); err != nil {
		return nil, err
	}
	return &me.User, nil
}

// RefreshSession rotates the token pair and announces TOKEN_REFRESHED. A rejected
// refresh token clears the stored session and matches ErrInvalidRefreshToken.
func (c *AuthClient) RefreshSession(ctx context.Context) (*auth.Session, error) {
	current, err := c.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil || current.RefreshToken == "" {
		return nil, fmt.Errorf("refresh session: %w", ErrNotAuthenticated)
	}

	var tokens auth.TokenResponse
	err = c.do(ctx, http.MethodPost, "/auth/refresh", "", auth.RefreshTokenRequest{RefreshToken: current.RefreshToken}, &tokens)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			c.clearSession()
		}
		return nil, err
	}

	session := sessionFromTokens(tokens)
	if err := c.saveSession(session); err != nil {
		return nil, err
	}
	c.emit(auth.Event{Type: auth.EventTokenRefreshed, Session: &session})
	return &session, nil
}

// FetchProfile loads the profile row of userID. Only the signed-in user's own profile is readable.
func (c *AuthClient) FetchProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var p profile.Profile
	if err := c.do(ctx, http.MethodGet, "/profile", token, nil, &p); err != nil {
		return nil, err
	}
	if p.ID != userID {
		return nil, fmt.Errorf("fetch profile: got profile %s for user %s", p.ID, userID)
	}
	return &p, nil
}

// Hydrate returns identity and profile in one call, the payload a session store is seeded with.
func (c *AuthClient) Hydrate(ctx context.Context) (auth.MeResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return auth.MeResponse{}, err
	}
	var me auth.MeResponse
	err = c.do(ctx, http.MethodGet, "/auth/me", token, nil, &me)
	return me, err
}

// AccessToken returns the stored access token or ErrNotAuthenticated.
func (c *AuthClient) AccessToken(ctx context.Context) (string, error) {
	session, err := c.GetSession(ctx)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrNotAuthenticated
	}
	return session.AccessToken, nil
}

// ForgotPassword asks the API to email a reset link.
func (c *AuthClient) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", "", auth.ForgotPasswordRequest{Email: email}, nil)
}
