// Package farmdata exposes the farm records as gated queries. Every read waits for
// the session to be usable and every write is followed by a refetch of its list.
package farmdata

import (
	"context"
	"time"

	"github.com/granjalink/farm-backend-go/internal/authsync"
	"github.com/granjalink/farm-backend-go/internal/client"
)

// awaitPoll is how often Await looks at a query the session held back.
const awaitPoll = 25 * time.Millisecond

// Handle is the process-wide data client holder.
type Handle = authsync.ClientHolder[*client.DataClient]

type Deps struct {
	Store   *authsync.Store
	Handle  *Handle
	Options authsync.QueryOptions
}

// view is the read side shared by every hook.
type view[T any] struct {
	query *authsync.Query[*client.DataClient, T]
}

func newView[T any](d Deps, fetch func(ctx context.Context, c *client.DataClient) (T, error), enabled bool) view[T] {
	opts := d.Options
	opts.Disabled = !enabled
	return view[T]{query: authsync.NewQuery[*client.DataClient, T](d.Store, d.Handle, fetch, opts)}
}

// Load runs the query unless the session gates it or it ran a moment ago.
func (v view[T]) Load(ctx context.Context) authsync.Result[T] { return v.query.Run(ctx) }

func (v view[T]) Refetch(ctx context.Context) authsync.Result[T] { return v.query.Refetch(ctx) }

func (v view[T]) Result() authsync.Result[T] { return v.query.Result() }

// Watch re-runs a load the session held back once it is usable again. Call stop
// when the view is no longer shown.
func (v view[T]) Watch(ctx context.Context) (stop func()) { return v.query.Watch(ctx) }

// Await is Load for one-shot callers. A load held back by a refresh in flight runs
// as soon as the refresh ends, and Await returns once it has settled.
func (v view[T]) Await(ctx context.Context) (authsync.Result[T], error) {
	stop := v.query.Watch(ctx)
	defer stop()

	res := v.query.Run(ctx)
	if !res.Loading {
		return res, nil
	}
	tick := time.NewTicker(awaitPoll)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-tick.C:
			if res = v.query.Result(); !res.Loading {
				return res, nil
			}
		}
	}
}

func valueOr[T any](r authsync.Result[T]) T {
	var zero T
	if r.Data == nil {
		return zero
	}
	return *r.Data
}
