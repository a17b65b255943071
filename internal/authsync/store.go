// Package authsync keeps a process's view of the signed-in user in step with the
// auth provider and gates data access on that view.
package authsync

import (
	"sync"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
)

type ErrorKind string

const (
	ErrorSessionExpired     ErrorKind = "session_expired"
	ErrorNetwork            ErrorKind = "network_error"
	ErrorProfileFetchFailed ErrorKind = "profile_fetch_failed"
	ErrorUnknown            ErrorKind = "unknown"
)

// AuthError is the last auth problem worth showing to the user. Recoverable errors
// leave the identity in place.
type AuthError struct {
	Kind        ErrorKind
	Message     string
	Recoverable bool
}

func (e *AuthError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// State is a snapshot of the session. Snapshots are values; the pointers they
// carry must be treated as read-only.
type State struct {
	Identity *auth.Identity
	Profile  *profile.Profile
	Session  *auth.Session

	Loading     bool
	Initialized bool
	Refreshing  bool
	Ready       bool
	Err         *AuthError
}

func (s State) Authenticated() bool { return s.Identity != nil }

func (s State) IsAdmin() bool { return s.Profile.IsAdmin() }

func (s State) CanEdit() bool { return s.Profile.CanEdit() }

// Store is the single source of truth for auth state. It has no side effects;
// observers are told about every write, in write order.
type Store struct {
	mu        sync.RWMutex
	state     State
	observers map[int]func(State)
	nextID    int

	// held while observers run so notifications never interleave
	notifyMu sync.Mutex
}

// NewStore returns an empty store in the bootstrapping state.
func NewStore() *Store {
	return &Store{
		state:     State{Loading: true},
		observers: make(map[int]func(State)),
	}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to receive a snapshot after every write. Observers run
// synchronously on the writing goroutine and must not write to the store.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	observers := make([]func(State), 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()

	defer s.notifyMu.Unlock()
	for _, o := range observers {
		o(snapshot)
	}
}

func (s *Store) SetIdentity(identity *auth.Identity) {
	s.update(func(st *State) { st.Identity = cloneIdentity(identity) })
}

func (s *Store) SetProfile(p *profile.Profile) {
	s.update(func(st *State) { st.Profile = cloneProfile(p) })
}

func (s *Store) SetSession(session *auth.Session) {
	s.update(func(st *State) { st.Session = cloneSession(session) })
}

// SetAuth replaces identity and tokens in one write. A different identity drops
// the profile of the previous one.
func (s *Store) SetAuth(identity *auth.Identity, session *auth.Session) {
	s.update(func(st *State) {
		if st.Identity == nil || identity == nil || st.Identity.ID != identity.ID {
			st.Profile = nil
		}
		st.Identity = cloneIdentity(identity)
		st.Session = cloneSession(session)
	})
}

func (s *Store) SetLoading(v bool) {
	s.update(func(st *State) { st.Loading = v })
}

func (s *Store) SetInitialized(v bool) {
	s.update(func(st *State) { st.Initialized = v })
}

func (s *Store) SetRefreshing(v bool) {
	s.update(func(st *State) { st.Refreshing = v })
}

func (s *Store) SetReady(v bool) {
	s.update(func(st *State) { st.Ready = v })
}

func (s *Store) SetError(err *AuthError) {
	s.update(func(st *State) { st.Err = err })
}

// Reset clears the session and leaves the store ready for an anonymous user.
func (s *Store) Reset() {
	s.update(func(st *State) {
		*st = State{Initialized: true, Ready: true}
	})
}

// Hydrate seeds the store from a trusted source in a single write.
func (s *Store) Hydrate(identity *auth.Identity, p *profile.Profile, session *auth.Session) {
	s.update(func(st *State) {
		*st = State{
			Identity:    cloneIdentity(identity),
			Profile:     cloneProfile(p),
			Session:     cloneSession(session),
			Initialized: true,
			Ready:       true,
		}
	})
}

func cloneIdentity(v *auth.Identity) *auth.Identity {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneProfile(v *profile.Profile) *profile.Profile {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneSession(v *auth.Session) *auth.Session {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
