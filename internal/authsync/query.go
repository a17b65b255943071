package authsync

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultRetryDelay  = 1500 * time.Millisecond
	DefaultDedupWindow = 100 * time.Millisecond
)

// FetchFunc loads data with the process's client handle.
type FetchFunc[C, T any] func(ctx context.Context, client C) (T, error)

// Result is what a query currently shows. Data is nil until a fetch succeeds and
// for anonymous users.
type Result[T any] struct {
	Data        *T
	Loading     bool
	Err         error
	IsAuthError bool
}

type QueryOptions struct {
	Clock       Clock
	Logger      *slog.Logger
	Disabled    bool
	RetryDelay  time.Duration
	DedupWindow time.Duration
}

// Query runs a fetch only while the store is ready, not refreshing and signed in.
// An auth-shaped failure is retried once; a second one resets the store. A run the
// gates held back stays pending and is picked up by Watch once they open.
type Query[C, T any] struct {
	store  *Store
	holder *ClientHolder[C]
	fetch  FetchFunc[C, T]
	clock  Clock
	logger *slog.Logger

	retryDelay  time.Duration
	dedupWindow time.Duration

	mu      sync.Mutex
	enabled bool
	pending bool
	result  Result[T]
	lastRun time.Time

	wake chan struct{}
}

func NewQuery[C, T any](store *Store, holder *ClientHolder[C], fetch FetchFunc[C, T], opts QueryOptions) *Query[C, T] {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = DefaultDedupWindow
	}
	return &Query[C, T]{
		store:       store,
		holder:      holder,
		fetch:       fetch,
		clock:       opts.Clock,
		logger:      opts.Logger,
		retryDelay:  opts.RetryDelay,
		dedupWindow: opts.DedupWindow,
		enabled:     !opts.Disabled,
		result:      Result[T]{Loading: true},
		wake:        make(chan struct{}, 1),
	}
}

func (q *Query[C, T]) SetEnabled(enabled bool) {
	q.mu.Lock()
	q.enabled = enabled
	q.mu.Unlock()
	if enabled {
		q.kick(q.store.Snapshot())
	}
}

// Watch re-runs a held back or abandoned fetch as soon as the store is ready, not
// refreshing and signed in and the query is enabled. stop unsubscribes from the
// store and waits for a run in flight.
func (q *Query[C, T]) Watch(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	unsubscribe := q.store.Subscribe(q.kick)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				if q.takePending() {
					q.run(ctx, true)
				}
			}
		}
	}()
	q.kick(q.store.Snapshot())

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			cancel()
			<-done
		})
	}
}

// kick wakes the watcher when a pending run may go ahead. It runs as a store
// observer, so it never blocks or writes to the store.
func (q *Query[C, T]) kick(st State) {
	if !st.Ready || st.Refreshing || !st.Authenticated() {
		return
	}
	q.mu.Lock()
	due := q.pending && q.enabled
	q.mu.Unlock()
	if !due {
		return
	}
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Query[C, T]) takePending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	p := q.pending
	q.pending = false
	return p
}

// Result returns the last outcome, reported as loading while the store is not usable.
func (q *Query[C, T]) Result() Result[T] {
	q.mu.Lock()
	r := q.result
	q.mu.Unlock()

	st := q.store.Snapshot()
	if !st.Ready || st.Refreshing {
		r.Loading = true
	}
	return r
}

// Run executes the fetch if the store allows it. A call within the dedup window of
// the previous one is dropped and returns the current result.
func (q *Query[C, T]) Run(ctx context.Context) Result[T] {
	return q.run(ctx, false)
}

// Refetch runs the fetch regardless of the dedup window.
func (q *Query[C, T]) Refetch(ctx context.Context) Result[T] {
	return q.run(ctx, true)
}

func (q *Query[C, T]) run(ctx context.Context, force bool) Result[T] {
	if !q.admit(force) {
		return q.Result()
	}

	for attempt := 0; ; attempt++ {
		data, err := q.fetch(ctx, q.holder.Get())
		if err == nil {
			q.set(Result[T]{Data: &data})
			return q.Result()
		}

		switch decide(err, attempt) {
		case actionRetry:
			q.logger.Debug("Auth error, retrying", "attempt", attempt+1, "error", err)
			if err := q.clock.Sleep(ctx, q.retryDelay); err != nil {
				q.set(Result[T]{Err: err})
				return q.Result()
			}
			if !q.usable() {
				return q.Result()
			}
		case actionReset:
			q.logger.Warn("Auth error persisted after retry, resetting session", "error", err)
			q.mu.Lock()
			q.result = Result[T]{IsAuthError: true}
			q.pending = true
			q.mu.Unlock()
			q.store.Reset()
			q.holder.Reset()
			return q.Result()
		default:
			q.set(Result[T]{Err: err, IsAuthError: IsAuthError(err)})
			return q.Result()
		}
	}
}

// admit applies the gates in order and stamps the run when the fetch may proceed.
// A run refused by a gate is left pending for Watch.
func (q *Query[C, T]) admit(force bool) bool {
	st := q.store.Snapshot()

	q.mu.Lock()
	defer q.mu.Unlock()

	switch {
	case !st.Ready, st.Refreshing:
		q.result.Loading = true
		q.pending = true
		return false
	case !st.Authenticated():
		q.result = Result[T]{}
		q.pending = true
		return false
	case !q.enabled:
		q.result.Loading = false
		q.pending = true
		return false
	}

	now := q.clock.Now()
	if !force && !q.lastRun.IsZero() && now.Sub(q.lastRun) < q.dedupWindow {
		return false
	}
	q.lastRun = now
	q.pending = false
	q.result.Loading = true
	return true
}

// usable reports whether a retry may still go ahead. An abandoned retry stays
// pending for Watch.
func (q *Query[C, T]) usable() bool {
	st := q.store.Snapshot()
	ok := st.Ready && !st.Refreshing && st.Authenticated()
	if !ok {
		q.mu.Lock()
		if st.Authenticated() {
			q.result.Loading = true
		} else {
			q.result = Result[T]{}
		}
		q.pending = true
		q.mu.Unlock()
	}
	return ok
}

// awaitSettled blocks while a session refresh is in flight.
func (q *Query[C, T]) awaitSettled(ctx context.Context) error {
	if !q.store.Snapshot().Refreshing {
		return nil
	}
	changed := make(chan struct{}, 1)
	unsubscribe := q.store.Subscribe(func(State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for q.store.Snapshot().Refreshing {
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (q *Query[C, T]) set(r Result[T]) {
	q.mu.Lock()
	q.result = r
	q.mu.Unlock()
}
