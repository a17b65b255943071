// Package cron runs the API's periodic maintenance jobs in-process.
package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// JobFunc is one run of a job. It should return promptly once ctx is done.
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc

	// running serialises ticks with RunOnce so one job never overlaps itself.
	running sync.Mutex
	status  JobStatus
}

// JobStatus is what the scheduler remembers about a job's last run.
type JobStatus struct {
	Name     string
	Interval time.Duration
	Runs     int
	LastRun  time.Time
	LastErr  error
}

type Scheduler struct {
	mu     sync.Mutex
	jobs   []*job
	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AddJob registers fn to run every interval. A non-positive interval disables the job.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn JobFunc) {
	if interval <= 0 {
		slog.Warn("Cron job disabled", "name", name, "interval", interval)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &job{
		name:     name,
		interval: interval,
		fn:       fn,
		status:   JobStatus{Name: name, Interval: interval},
	})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Start runs every job once right away and then on its interval until ctx ends or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.group != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)
	for _, j := range s.jobs {
		s.group.Go(func() error {
			s.loop(ctx, j)
			return nil
		})
	}
	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels the running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	group, cancel := s.group, s.cancel
	s.mu.Unlock()
	if group == nil {
		return
	}

	cancel()
	_ = group.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if err := s.run(ctx, j); err != nil {
			slog.Error("Cron job failed", "name", j.name, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) run(ctx context.Context, j *job) error {
	j.running.Lock()
	defer j.running.Unlock()

	start := time.Now()
	err := j.fn(ctx)
	slog.Debug("Cron job finished", "name", j.name, "duration", time.Since(start), "failed", err != nil)

	s.mu.Lock()
	j.status.Runs++
	j.status.LastRun = start
	j.status.LastErr = err
	s.mu.Unlock()
	return err
}

// RunOnce runs every job once in registration order and joins their errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]*job(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, j := range jobs {
		if err := s.run(ctx, j); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", j.name, err))
		}
	}
	return errors.Join(errs...)
}

// Status lists the registered jobs in registration order.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.status)
	}
	return out
}

func (s *Scheduler) Jobs() []string {
	status := s.Status()
	names := make([]string, 0, len(status))
	for _, st := range status {
		names = append(names, st.Name)
	}
	return names
}
