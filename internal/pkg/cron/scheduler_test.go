package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnceJoinsErrors(t *testing.T) {
	s := NewScheduler()
	var calls atomic.Int32
	boom := errors.New("boom")

	s.AddJob("ok", time.Hour, func(context.Context) error { calls.Add(1); return nil })
	s.AddJob("fails", time.Hour, func(context.Context) error { calls.Add(1); return boom })
	s.AddJob("disabled", 0, func(context.Context) error { calls.Add(1); return nil })

	assert.Equal(t, []string{"ok", "fails"}, s.Jobs())

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fails")
	assert.Equal(t, int32(2), calls.Load())

	status := s.Status()
	require.Len(t, status, 2)
	assert.Equal(t, 1, status[0].Runs)
	assert.NoError(t, status[0].LastErr)
	assert.ErrorIs(t, status[1].LastErr, boom)
	assert.False(t, status[1].LastRun.IsZero())
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	stopped := make(chan struct{})
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start(context.Background())
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := NewScheduler()
	s.AddJob("idle", time.Minute, func(context.Context) error { return nil })
	s.Stop()
	assert.Equal(t, 0, s.Status()[0].Runs)
}
