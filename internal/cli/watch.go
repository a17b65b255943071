package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/granjalink/farm-backend-go/internal/authsync"
	"github.com/granjalink/farm-backend-go/internal/pkg/localstore"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the session and print auth state changes",
		Long: `watch keeps a synchronized session open until interrupted. It refreshes
tokens before they expire, follows sign-ins and sign-outs made by other
farmctl processes or pushed by the server, and prints every transition.
Sending SIGCONT re-validates the session as if the app came back to the
foreground.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.app.watch(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) watch(ctx context.Context, out io.Writer) error {
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	w, err := localstore.NewWatcher(a.files, a.logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	var (
		mu   sync.Mutex
		last string
	)
	report := func(st authsync.State) {
		line := describe(st)
		mu.Lock()
		defer mu.Unlock()
		if line == last {
			return
		}
		last = line
		fmt.Fprintf(out, "%s  %s\n", time.Now().Format(time.TimeOnly), line)
	}
	report(s.store.Snapshot())
	unsubscribe := s.store.Subscribe(report)
	defer unsubscribe()

	g, ctx := errgroup.WithContext(ctx)
	if err := w.Start(ctx); err != nil {
		return err
	}

	g.Go(func() error {
		for ev := range w.Events() {
			s.sync.OnStorageChange(ev.Key)
		}
		return nil
	})
	g.Go(func() error {
		return a.auth.StreamEvents(ctx)
	})
	g.Go(func() error {
		foreground := notifyForeground(ctx)
		for range foreground {
			s.sync.OnVisibilityChange(authsync.Visible)
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func describe(st authsync.State) string {
	switch {
	case !st.Ready:
		if st.Refreshing {
			return "refreshing session"
		}
		return "loading"
	case !st.Authenticated():
		return "signed out"
	}

	line := "signed in as " + st.Identity.Email
	if st.Profile != nil {
		line += " (" + string(st.Profile.Role) + ")"
	}
	if st.Session != nil && !st.Session.ExpiresAt.IsZero() {
		line += ", token valid until " + st.Session.ExpiresAt.Local().Format(time.TimeOnly)
	}
	if st.Refreshing {
		line += ", refreshing"
	}
	if st.Err != nil {
		line += ", " + st.Err.Error()
	}
	return line
}
