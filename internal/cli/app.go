package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/granjalink/farm-backend-go/internal/authsync"
	"github.com/granjalink/farm-backend-go/internal/client"
	"github.com/granjalink/farm-backend-go/internal/farmdata"
	"github.com/granjalink/farm-backend-go/internal/pkg/localstore"
)

var (
	errNotSignedIn  = errors.New("not signed in, run farmctl login")
	errSessionEnded = errors.New("session ended, run farmctl login")
)

type app struct {
	cfg    Config
	logger *slog.Logger
	files  *localstore.FileStore
	auth   *client.AuthClient
}

func newApp(cfg Config, stderr io.Writer) (*app, error) {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	files, err := localstore.NewFileStore(cfg.SessionDir)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, files: files}
	a.auth = client.NewAuthClient(cfg.APIURL, files, a.clientOptions())
	return a, nil
}

func (a *app) clientOptions() client.Options {
	return client.Options{Logger: a.logger, Timeout: a.cfg.Timeout}
}

// session is a synchronized view of the stored session with its data handle.
type session struct {
	store  *authsync.Store
	handle *farmdata.Handle
	sync   *authsync.Synchronizer
}

// openSession bootstraps a synchronizer and waits until the store is settled.
func (a *app) openSession(ctx context.Context) (*session, error) {
	store := authsync.NewStore()
	handle := authsync.NewClientHolder(func() *client.DataClient {
		return client.NewDataClient(a.cfg.APIURL, a.auth, a.clientOptions())
	}, a.logger)
	sync := authsync.NewSynchronizer(authsync.Config{
		Provider: a.auth,
		Store:    store,
		Holder:   handle,
		Logger:   a.logger,
	})

	s := &session{store: store, handle: handle, sync: sync}
	sync.Start(ctx)
	select {
	case <-sync.Bootstrapped():
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}
	return s, nil
}

// requireSession is openSession for commands that need a signed-in user.
func (a *app) requireSession(ctx context.Context) (*session, error) {
	s, err := a.openSession(ctx)
	if err != nil {
		return nil, err
	}
	if !s.store.Snapshot().Authenticated() {
		s.Close()
		return nil, errNotSignedIn
	}
	return s, nil
}

func (s *session) deps() farmdata.Deps {
	return farmdata.Deps{Store: s.store, Handle: s.handle}
}

func (s *session) Close() {
	s.sync.Close()
	s.handle.Reset()
}

// loaded turns a query result into a value or an error for the command to return.
func loaded[T any](r authsync.Result[T], err error) (T, error) {
	var zero T
	switch {
	case err != nil:
		return zero, err
	case r.Err != nil:
		return zero, r.Err
	case r.IsAuthError:
		return zero, errSessionEnded
	case r.Data == nil:
		return zero, errNotSignedIn
	}
	return *r.Data, nil
}
