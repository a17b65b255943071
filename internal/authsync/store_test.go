package authsync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
)

func TestStore_StartsBootstrapping(t *testing.T) {
	st := NewStore().Snapshot()
	assert.True(t, st.Loading)
	assert.False(t, st.Initialized)
	assert.False(t, st.Ready)
	assert.False(t, st.Authenticated())
}

func TestStore_ResetIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Hydrate(
		&auth.Identity{ID: "u1"},
		&profile.Profile{ID: "u1", Role: profile.RoleAdmin},
		&auth.Session{AccessToken: "a", RefreshToken: "r"},
	)
	s.SetError(&AuthError{Kind: ErrorNetwork, Message: "offline", Recoverable: true})

	s.Reset()
	once := s.Snapshot()
	s.Reset()
	twice := s.Snapshot()

	assert.Equal(t, once, twice)
	assert.Nil(t, twice.Identity)
	assert.Nil(t, twice.Profile)
	assert.Nil(t, twice.Session)
	assert.Nil(t, twice.Err)
	assert.True(t, twice.Ready)
	assert.True(t, twice.Initialized)
	assert.False(t, twice.Loading)
}

func TestStore_ObserversNeverSeeHalfASession(t *testing.T) {
	s := NewStore()

	var mu sync.Mutex
	var seen []State
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})
	defer unsubscribe()

	identity := &auth.Identity{ID: "u1"}
	session := &auth.Session{AccessToken: "a", ExpiresAt: epoch.Add(time.Hour)}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); s.Hydrate(identity, nil, session) }()
		go func() { defer wg.Done(); s.Reset() }()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 100)
	for _, st := range seen {
		assert.Equal(t, st.Identity == nil, st.Session == nil)
		assert.True(t, st.Ready)
	}
}

func TestStore_SetAuthDropsProfileOfAnotherUser(t *testing.T) {
	s := NewStore()
	s.Hydrate(&auth.Identity{ID: "u1"}, &profile.Profile{ID: "u1", Role: profile.RoleEmployee}, &auth.Session{AccessToken: "a"})

	s.SetAuth(&auth.Identity{ID: "u1"}, &auth.Session{AccessToken: "b"})
	st := s.Snapshot()
	require.NotNil(t, st.Profile)
	assert.Equal(t, "b", st.Session.AccessToken)

	s.SetAuth(&auth.Identity{ID: "u2"}, &auth.Session{AccessToken: "c"})
	st = s.Snapshot()
	assert.Nil(t, st.Profile)
	assert.Equal(t, "u2", st.Identity.ID)
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s := NewStore()
	identity := &auth.Identity{ID: "u1"}
	s.SetIdentity(identity)

	identity.ID = "changed"
	assert.Equal(t, "u1", s.Snapshot().Identity.ID)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := NewStore()
	calls := 0
	unsubscribe := s.Subscribe(func(State) { calls++ })

	s.SetLoading(false)
	unsubscribe()
	s.SetLoading(true)

	assert.Equal(t, 1, calls)
}

func TestState_Capabilities(t *testing.T) {
	tests := []struct {
		role    profile.Role
		canEdit bool
		isAdmin bool
	}{
		{profile.RoleAdmin, true, true},
		{profile.RoleEmployee, true, false},
		{profile.RoleViewer, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			st := State{Profile: &profile.Profile{Role: tt.role}}
			assert.Equal(t, tt.canEdit, st.CanEdit())
			assert.Equal(t, tt.isAdmin, st.IsAdmin())
		})
	}

	assert.False(t, State{}.CanEdit())
	assert.False(t, State{}.IsAdmin())
}
