package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/domain/pig"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/granjalink/farm-backend-go/internal/pkg/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clientNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeAPI answers the auth and data endpoints with the server's envelope.
type fakeAPI struct {
	mu           sync.Mutex
	refreshCalls int
	logoutCalls  int
	refreshValid bool
	validAccess  map[string]bool
	events       chan string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{refreshValid: true, validAccess: map[string]bool{}, events: make(chan string, 4)}
}

func writeEnvelope(w http.ResponseWriter, status int, data any, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"success": status < 300}
	if data != nil {
		body["data"] = data
	}
	if code != "" {
		body["error"] = map[string]string{"code": code, "message": code}
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeAPI) issue(w http.ResponseWriter, generation int) {
	access := fmt.Sprintf("access-%d", generation)
	f.validAccess[access] = true
	writeEnvelope(w, http.StatusOK, auth.TokenResponse{
		AccessToken:  access,
		ExpiresAt:    clientNow.Add(time.Hour).Unix(),
		RefreshToken: fmt.Sprintf("refresh-%d", generation),
		User:         auth.Identity{ID: "u1", Email: "u1@granja.test"},
	}, "")
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := r.Header.Get("Authorization")
	return len(token) > 7 && f.validAccess[token[7:]]
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secreto" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "UNAUTHORIZED")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.issue(w, 0)
	})
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.refreshCalls++
		if !f.refreshValid {
			writeEnvelope(w, http.StatusUnauthorized, nil, "SESSION_EXPIRED")
			return
		}
		f.issue(w, f.refreshCalls)
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logoutCalls++
		f.mu.Unlock()
		writeEnvelope(w, http.StatusInternalServerError, nil, "INTERNAL_SERVER_ERROR")
	})
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			writeEnvelope(w, http.StatusUnauthorized, nil, "UNAUTHORIZED")
			return
		}
		writeEnvelope(w, http.StatusOK, auth.MeResponse{
			User:    auth.Identity{ID: "u1", Email: "u1@granja.test"},
			Profile: &profile.Profile{ID: "u1", Role: profile.RoleEmployee},
		}, "")
	})
	mux.HandleFunc("GET /api/v1/profile", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			writeEnvelope(w, http.StatusUnauthorized, nil, "UNAUTHORIZED")
			return
		}
		writeEnvelope(w, http.StatusOK, profile.Profile{ID: "u1", FullName: "Ana", Role: profile.RoleEmployee}, "")
	})
	mux.HandleFunc("GET /api/v1/pigs", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			writeEnvelope(w, http.StatusUnauthorized, nil, "UNAUTHORIZED")
			return
		}
		writeEnvelope(w, http.StatusOK, []pig.Pig{{ID: "p1", Status: pig.Status(r.URL.Query().Get("status"))}}, "")
	})
	mux.HandleFunc("GET /api/v1/auth/events", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			writeEnvelope(w, http.StatusUnauthorized, nil, "UNAUTHORIZED")
			return
		}
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: connected\ndata: {}\n\n")
		flusher.Flush()
		for {
			select {
			case name := <-f.events:
				fmt.Fprintf(w, "event: %s\ndata: {}\n\n", name)
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	})
	return mux
}

func newTestAuthClient(t *testing.T) (*AuthClient, *fakeAPI, *localstore.FileStore) {
	t.Helper()
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	store, err := localstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	c := NewAuthClient(srv.URL, store, Options{Now: func() time.Time { return clientNow }})
	return c, api, store
}

func recordEvents(c *AuthClient) *[]auth.EventType {
	var mu sync.Mutex
	events := &[]auth.EventType{}
	c.OnAuthStateChange(func(e auth.Event) {
		mu.Lock()
		defer mu.Unlock()
		*events = append(*events, e.Type)
	})
	return events
}

func TestSignIn_PersistsSessionAndAnnounces(t *testing.T) {
	c, _, store := newTestAuthClient(t)
	events := recordEvents(c)

	session, err := c.SignIn(context.Background(), "u1@granja.test", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "access-0", session.AccessToken)
	assert.Equal(t, clientNow.Add(time.Hour).Unix(), session.ExpiresAt.Unix())

	var stored auth.Session
	ok, err := store.GetJSON(localstore.SessionKey, &stored)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "refresh-0", stored.RefreshToken)
	assert.Equal(t, []auth.EventType{auth.EventSignedIn}, *events)
}

func TestSignIn_BadCredentials(t *testing.T) {
	c, _, _ := newTestAuthClient(t)

	_, err := c.SignIn(context.Background(), "u1@granja.test", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.NotErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestGetUser(t *testing.T) {
	c, api, store := newTestAuthClient(t)
	ctx := context.Background()

	identity, err := c.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, identity, "no stored session is anonymous, not an error")

	_, err = c.SignIn(ctx, "u1@granja.test", "secreto")
	require.NoError(t, err)
	identity, err = c.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "u1", identity.ID)

	// An expired access token is refreshed before the lookup.
	require.NoError(t, store.SetJSON(localstore.SessionKey, auth.Session{
		AccessToken:  "stale",
		RefreshToken: "refresh-0",
		ExpiresAt:    clientNow.Add(-time.Minute),
	}))
	identity, err = c.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, 1, api.refreshCalls)
}

func TestRefreshSession_InvalidTokenClearsSession(t *testing.T) {
	c, api, _ := newTestAuthClient(t)
	ctx := context.Background()
	_, err := c.SignIn(ctx, "u1@granja.test", "secreto")
	require.NoError(t, err)

	api.refreshValid = false
	_, err = c.RefreshSession(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	session, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestRefreshSession_AnnouncesRotation(t *testing.T) {
	c, _, _ := newTestAuthClient(t)
	ctx := context.Background()
	_, err := c.SignIn(ctx, "u1@granja.test", "secreto")
	require.NoError(t, err)
	events := recordEvents(c)

	session, err := c.RefreshSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", session.AccessToken)
	assert.Equal(t, []auth.EventType{auth.EventTokenRefreshed}, *events)
}

func TestSignOut_AlwaysClearsLocalSession(t *testing.T) {
	c, api, _ := newTestAuthClient(t)
	ctx := context.Background()
	_, err := c.SignIn(ctx, "u1@granja.test", "secreto")
	require.NoError(t, err)
	events := recordEvents(c)

	err = c.SignOut(ctx)
	assert.Error(t, err, "server failure is reported")
	assert.Equal(t, 1, api.logoutCalls)

	session, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, []auth.EventType{auth.EventSignedOut}, *events)
}

func TestFetchProfileAndHydrate(t *testing.T) {
	c, _, _ := newTestAuthClient(t)
	ctx := context.Background()

	_, err := c.FetchProfile(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.SignIn(ctx, "u1@granja.test", "secreto")
	require.NoError(t, err)

	p, err := c.FetchProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.FullName)

	_, err = c.FetchProfile(ctx, "someone-else")
	assert.Error(t, err)

	me, err := c.Hydrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", me.User.ID)
	assert.True(t, me.Profile.CanEdit())
}

func TestDataClient_UsesSessionToken(t *testing.T) {
	c, _, _ := newTestAuthClient(t)
	data := NewDataClient(c.baseURL[:len(c.baseURL)-len("/api/v1")], c, Options{})
	defer data.Close()
	ctx := context.Background()

	_, err := data.ListPigs(ctx, pig.StatusActive)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.SignIn(ctx, "u1@granja.test", "secreto")
	require.NoError(t, err)

	pigs, err := data.ListPigs(ctx, pig.StatusActive)
	require.NoError(t, err)
	require.Len(t, pigs, 1)
	assert.Equal(t, pig.StatusActive, pigs[0].Status)
}

func TestWithQuery_SkipsEmptyReportBounds(t *testing.T) {
	assert.Equal(t, "/reports", withQuery("/reports", map[string]string{"from": "", "to": ""}))
	assert.Equal(t, "/reports?to=2026-09-30", withQuery("/reports", map[string]string{"from": "", "to": "2026-09-30"}))
	assert.Equal(t, "/reports?from=2026-09-01&to=2026-09-30", withQuery("/reports", map[string]string{"from": "2026-09-01", "to": "2026-09-30"}))
}

func TestStreamEvents_ServerSignOutClearsSession(t *testing.T) {
	c, api, _ := newTestAuthClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := c.SignIn(ctx, "u1@granja.test", "secreto")
	require.NoError(t, err)

	signedOut := make(chan struct{})
	var once sync.Once
	c.OnAuthStateChange(func(e auth.Event) {
		if e.Type == auth.EventSignedOut {
			once.Do(func() { close(signedOut) })
		}
	})

	done := make(chan error, 1)
	go func() { done <- c.StreamEvents(ctx) }()

	api.events <- string(auth.EventSignedOut)

	select {
	case <-signedOut:
	case <-time.After(5 * time.Second):
		t.Fatal("SIGNED_OUT was not announced")
	}
	session, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	cancel()
	assert.True(t, errors.Is(<-done, context.Canceled))
}

func TestWithTimeout_KeepsEarlierDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ctx, cancel2 := withTimeout(parent, DefaultTimeout)
	defer cancel2()

	parentDeadline, _ := parent.Deadline()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.Equal(t, parentDeadline, deadline)
}
