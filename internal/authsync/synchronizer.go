package authsync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/pkg/localstore"
)

const (
	DefaultHeartbeatInterval   = 5 * time.Minute
	DefaultRefreshBeforeExpiry = 10 * time.Minute
	DefaultProfileRetryDelay   = 2 * time.Second
	DefaultProfileRetries      = 2
)

// Provider is the auth backend the synchronizer follows. *client.AuthClient satisfies it.
type Provider interface {
	GetUser(ctx context.Context) (*auth.Identity, error)
	GetSession(ctx context.Context) (*auth.Session, error)
	RefreshSession(ctx context.Context) (*auth.Session, error)
	FetchProfile(ctx context.Context, userID string) (*profile.Profile, error)
	OnAuthStateChange(fn func(auth.Event)) (unsubscribe func())
}

// Resetter is implemented by handles that must start over after sign-out.
type Resetter interface {
	Reset()
}

type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

type Config struct {
	Provider Provider
	Store    *Store
	Holder   Resetter
	Clock    Clock
	Logger   *slog.Logger

	HeartbeatInterval   time.Duration
	RefreshBeforeExpiry time.Duration
	ProfileRetryDelay   time.Duration
	ProfileRetries      int
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = RealClock()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.RefreshBeforeExpiry <= 0 {
		c.RefreshBeforeExpiry = DefaultRefreshBeforeExpiry
	}
	if c.ProfileRetryDelay <= 0 {
		c.ProfileRetryDelay = DefaultProfileRetryDelay
	}
	if c.ProfileRetries < 0 {
		c.ProfileRetries = 0
	}
	return c
}

// Synchronizer drives a Store through bootstrap, provider events, proactive and
// periodic refresh, visibility changes and changes made by other processes.
// None of its methods return provider failures; they end up in the store or the log.
type Synchronizer struct {
	cfg      Config
	provider Provider
	store    *Store
	clock    Clock
	logger   *slog.Logger

	flight       singleflight.Group
	bootstrapped chan struct{}
	wg           sync.WaitGroup

	mu           sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	started      bool
	closed       bool
	generation   int
	refreshTimer Timer
	refreshSeq   int
	heartbeat    Timer
	heartbeatSeq int
	unsubscribe  []func()
}

func NewSynchronizer(cfg Config) *Synchronizer {
	cfg = cfg.withDefaults()
	return &Synchronizer{
		cfg:          cfg,
		provider:     cfg.Provider,
		store:        cfg.Store,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		bootstrapped: make(chan struct{}),
	}
}

// Start subscribes to provider events and bootstraps the store in the background.
// Only the first call has any effect.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	unobserve := s.store.Subscribe(s.observe)
	unsubscribe := s.provider.OnAuthStateChange(s.handleEvent)

	s.mu.Lock()
	s.unsubscribe = append(s.unsubscribe, unobserve, unsubscribe)
	s.mu.Unlock()

	if !s.spawn(s.bootstrap) {
		close(s.bootstrapped)
	}
}

// Bootstrapped is closed once the initial session check has finished.
func (s *Synchronizer) Bootstrapped() <-chan struct{} {
	return s.bootstrapped
}

// Close stops all timers, drops provider subscriptions and waits for work in flight.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopRefreshLocked()
	s.stopHeartbeatLocked()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	cancel := s.cancel
	s.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// OnVisibilityChange refreshes the session as soon as the process is back in the foreground.
func (s *Synchronizer) OnVisibilityChange(v Visibility) {
	if v != Visible || !s.store.Snapshot().Authenticated() {
		return
	}
	s.spawn(s.refresh)
}

// OnStorageChange reacts to another process touching the shared session files.
// If the session is gone there, it is dropped here too.
func (s *Synchronizer) OnStorageChange(key string) {
	if !strings.Contains(key, localstore.Namespace) {
		return
	}
	s.spawn(func(ctx context.Context) {
		identity, err := s.provider.GetUser(ctx)
		if !s.alive() {
			return
		}
		if err != nil && !IsAuthError(err) {
			s.logger.Warn("Session check after storage change failed", "key", key, "error", err)
			return
		}
		if identity == nil && s.store.Snapshot().Authenticated() {
			s.logger.Info("Session ended in another process", "key", key)
			s.endSession()
		}
	})
}

func (s *Synchronizer) spawn(fn func(ctx context.Context)) bool {
	s.mu.Lock()
	if s.closed || s.ctx == nil {
		s.mu.Unlock()
		return false
	}
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
	return true
}

func (s *Synchronizer) alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// current reports whether gen is still the live session generation.
func (s *Synchronizer) current(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.generation == gen
}

func (s *Synchronizer) nextGeneration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

func (s *Synchronizer) bootstrap(ctx context.Context) {
	defer close(s.bootstrapped)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Auth bootstrap panicked", "panic", fmt.Sprint(r))
			if s.alive() {
				s.store.SetError(&AuthError{Kind: ErrorUnknown, Message: "Initialization failed", Recoverable: true})
				s.store.SetReady(true)
			}
		}
		if s.alive() {
			s.store.SetLoading(false)
			s.store.SetInitialized(true)
		}
	}()

	gen := s.nextGeneration()

	identity, err := s.provider.GetUser(ctx)
	if !s.current(gen) {
		return
	}
	if err != nil {
		s.logger.Warn("Auth bootstrap user lookup failed", "error", err)
		if !IsAuthError(err) {
			s.store.SetError(&AuthError{Kind: ErrorNetwork, Message: "Could not reach the server", Recoverable: true})
		}
		s.store.SetReady(true)
		return
	}

	if identity == nil {
		s.logger.Debug("No session found")
		s.store.SetReady(true)
		return
	}

	session, err := s.provider.GetSession(ctx)
	if !s.current(gen) {
		return
	}
	if err != nil {
		s.logger.Warn("Read session failed", "error", err)
	}
	s.store.SetAuth(identity, session)
	if session != nil {
		s.scheduleRefresh(session.ExpiresAt)
	}

	s.loadProfile(ctx, identity.ID, gen)

	if s.current(gen) {
		s.logger.Info("Auth ready", "user_id", identity.ID)
		s.store.SetReady(true)
	}
}

// loadProfile tries once plus ProfileRetries more times. Failure leaves the identity
// signed in with a recoverable error.
func (s *Synchronizer) loadProfile(ctx context.Context, userID string, gen int) {
	for attempt := 0; ; attempt++ {
		p, err := s.provider.FetchProfile(ctx, userID)
		if !s.current(gen) {
			return
		}
		if err == nil {
			s.store.SetProfile(p)
			s.store.SetError(nil)
			return
		}

		if attempt >= s.cfg.ProfileRetries {
			s.logger.Warn("Profile fetch failed after retries", "user_id", userID, "attempts", attempt+1, "error", err)
			s.store.SetError(&AuthError{Kind: ErrorProfileFetchFailed, Message: "Could not load the profile", Recoverable: true})
			return
		}
		if err := s.clock.Sleep(ctx, s.cfg.ProfileRetryDelay); err != nil {
			return
		}
	}
}

func (s *Synchronizer) handleEvent(event auth.Event) {
	if !s.alive() {
		return
	}

	switch event.Type {
	case auth.EventSignedIn:
		if event.Session == nil {
			return
		}
		session := *event.Session
		gen := s.nextGeneration()
		s.store.SetAuth(&session.User, &session)
		s.store.SetReady(false)
		s.scheduleRefresh(session.ExpiresAt)

		s.spawn(func(ctx context.Context) {
			s.loadProfile(ctx, session.User.ID, gen)
			if s.current(gen) {
				s.store.SetReady(true)
			}
		})
	case auth.EventSignedOut:
		s.endSession()
	case auth.EventTokenRefreshed:
		if event.Session == nil {
			return
		}
		s.store.SetSession(event.Session)
		s.scheduleRefresh(event.Session.ExpiresAt)
	}
	s.store.SetLoading(false)
}

// endSession drops everything tied to the current session.
func (s *Synchronizer) endSession() {
	s.mu.Lock()
	s.generation++
	s.stopRefreshLocked()
	s.stopHeartbeatLocked()
	s.mu.Unlock()

	s.store.Reset()
	if s.cfg.Holder != nil {
		s.cfg.Holder.Reset()
	}
}

// refresh rotates the session. Concurrent callers share one provider call.
func (s *Synchronizer) refresh(ctx context.Context) {
	_, _, _ = s.flight.Do("refresh", func() (any, error) {
		s.refreshOnce(ctx)
		return nil, nil
	})
}

func (s *Synchronizer) refreshOnce(ctx context.Context) {
	if !s.alive() || !s.store.Snapshot().Authenticated() {
		return
	}

	s.store.SetRefreshing(true)
	defer s.store.SetRefreshing(false)

	session, err := s.provider.RefreshSession(ctx)
	if !s.alive() {
		return
	}

	if err != nil {
		if IsSessionExpired(err) {
			expired := &AuthError{Kind: ErrorSessionExpired, Message: "Session expired", Recoverable: false}
			s.logger.Warn("Session refresh rejected", "error", err, "auth_error", expired.Error())
			s.endSession()
			return
		}
		s.logger.Warn("Session refresh failed", "error", err)
		return
	}
	if session == nil {
		return
	}

	s.store.SetAuth(&session.User, session)
	s.scheduleRefresh(session.ExpiresAt)
}

// scheduleRefresh replaces any pending proactive refresh with one at expiresAt minus
// RefreshBeforeExpiry. Nothing is armed if that moment has passed.
func (s *Synchronizer) scheduleRefresh(expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.stopRefreshLocked()
	if expiresAt.IsZero() {
		return
	}
	delay := expiresAt.Add(-s.cfg.RefreshBeforeExpiry).Sub(s.clock.Now())
	if delay <= 0 {
		return
	}

	seq := s.refreshSeq
	s.refreshTimer = s.clock.AfterFunc(delay, func() { s.refreshDue(seq) })
}

func (s *Synchronizer) refreshDue(seq int) {
	s.mu.Lock()
	if s.closed || seq != s.refreshSeq {
		s.mu.Unlock()
		return
	}
	s.refreshTimer = nil
	s.mu.Unlock()

	s.spawn(s.refresh)
}

func (s *Synchronizer) stopRefreshLocked() {
	s.refreshSeq++
	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
		s.refreshTimer = nil
	}
}

// observe keeps the heartbeat running exactly while an identity is present.
func (s *Synchronizer) observe(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if !state.Authenticated() {
		s.stopHeartbeatLocked()
		s.stopRefreshLocked()
		return
	}
	if s.heartbeat == nil {
		s.armHeartbeatLocked()
	}
}

func (s *Synchronizer) armHeartbeatLocked() {
	seq := s.heartbeatSeq
	s.heartbeat = s.clock.AfterFunc(s.cfg.HeartbeatInterval, func() { s.heartbeatTick(seq) })
}

func (s *Synchronizer) heartbeatTick(seq int) {
	s.mu.Lock()
	if s.closed || s.heartbeat == nil || seq != s.heartbeatSeq {
		s.mu.Unlock()
		return
	}
	s.armHeartbeatLocked()
	s.mu.Unlock()

	s.spawn(s.refresh)
}

func (s *Synchronizer) stopHeartbeatLocked() {
	s.heartbeatSeq++
	if s.heartbeat != nil {
		s.heartbeat.Stop()
		s.heartbeat = nil
	}
}
