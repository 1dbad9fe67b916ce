// Package scheduler triggers the news check on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/deusflow/newsalert/internal/logger"
)

// DefaultMisfireGrace is how late a scheduled run may start before it is
// skipped.
const DefaultMisfireGrace = 2 * time.Minute

// Runner is the job the scheduler drives.
type Runner interface {
	RunOnce(ctx context.Context)
}

type Scheduler struct {
	runner   Runner
	interval time.Duration
	grace    time.Duration
	cron     *cron.Cron

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New builds a scheduler that calls runner every interval. Runs are
// serialised and a run whose start slips more than grace behind its
// trigger is skipped.
func New(runner Runner, interval, grace time.Duration) *Scheduler {
	if grace <= 0 {
		grace = DefaultMisfireGrace
	}
	log := cronLogger{}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		grace:    grace,
		cron: cron.New(
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), misfireGuard(grace, time.Now)),
		),
	}
}

// Start registers the interval job and starts the cron loop. ctx is
// handed to every run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.interval < time.Second {
		return fmt.Errorf("scheduler interval %s is too short", s.interval)
	}

	runCtx, cancel := context.WithCancel(ctx)
	spec := "@every " + s.interval.String()
	if _, err := s.cron.AddFunc(spec, func() { s.runner.RunOnce(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("register news check job: %w", err)
	}

	s.cron.Start()
	s.cancel = cancel
	s.running = true
	logger.Info("scheduler started", "interval", s.interval.String(), "misfire_grace", s.grace.String())
	return nil
}

// Stop halts the cron loop and waits for a run in progress. If ctx
// expires first the run's context is cancelled and ctx's error returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	defer cancel()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval is the configured trigger period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// misfireGuard serialises jobs and drops any whose start was delayed
// more than grace past its trigger, e.g. while a previous run was still
// going.
func misfireGuard(grace time.Duration, now func() time.Time) cron.JobWrapper {
	var mu sync.Mutex
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			triggered := now()
			mu.Lock()
			defer mu.Unlock()

			if late := now().Sub(triggered); late > grace {
				logger.Warn("skipping missed news check", "late", late.String(), "grace", grace.String())
				return
			}
			j.Run()
		})
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
