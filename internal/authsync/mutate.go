package authsync

import (
	"context"
	"fmt"

	"github.com/granjalink/farm-backend-go/internal/client"
)

// Mutate runs fn against the query's client handle and refetches the query when
// it succeeds. It waits out a session refresh in flight and refuses to run for an
// anonymous or not yet ready store. An auth-shaped failure is retried once after
// the retry delay; a second one resets the store before the error is returned.
func Mutate[C, T, R any](ctx context.Context, q *Query[C, T], fn func(ctx context.Context, client C) (R, error)) (R, error) {
	var zero R

	for attempt := 0; ; attempt++ {
		if err := q.awaitSettled(ctx); err != nil {
			return zero, fmt.Errorf("mutate: %w", err)
		}
		st := q.store.Snapshot()
		if !st.Ready || !st.Authenticated() {
			return zero, fmt.Errorf("mutate: %w", client.ErrNotAuthenticated)
		}

		out, err := fn(ctx, q.holder.Get())
		if err == nil {
			q.Refetch(ctx)
			return out, nil
		}

		switch decide(err, attempt) {
		case actionRetry:
			q.logger.Debug("Auth error during mutation, retrying", "attempt", attempt+1, "error", err)
			if err := q.clock.Sleep(ctx, q.retryDelay); err != nil {
				return zero, fmt.Errorf("mutate: %w", err)
			}
		case actionReset:
			q.logger.Warn("Auth error persisted during mutation, resetting session", "error", err)
			q.store.Reset()
			q.holder.Reset()
			return zero, err
		default:
			return zero, err
		}
	}
}

// Exec is Mutate for operations without a result value.
func Exec[C, T any](ctx context.Context, q *Query[C, T], fn func(ctx context.Context, client C) error) error {
	_, err := Mutate(ctx, q, func(ctx context.Context, c C) (struct{}, error) {
		return struct{}{}, fn(ctx, c)
	})
	return err
}
