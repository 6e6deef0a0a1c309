// Package scheduler runs periodic maintenance jobs such as metadata refresh
// and search store rebuilds.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// Task is a unit of periodic work.
type Task func(ctx context.Context) error

// Scheduler wraps a gocron scheduler. Jobs never overlap with themselves.
type Scheduler struct {
	scheduler gocron.Scheduler
	recorder  metrics.Recorder
	logger    *slog.Logger

	mu  sync.RWMutex
	ctx context.Context
}

// New creates a scheduler. A nil recorder disables job metrics.
func New(recorder metrics.Recorder, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scheduler: s, recorder: recorder, logger: logger, ctx: context.Background()}, nil
}

// Every registers task to run at interval under name and returns the job ID.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("job %s: interval must be positive, got %s", name, interval)
	}
	if task == nil {
		return "", errors.New("job " + name + ": task is nil")
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.execute, name, task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create job %s: %w", name, err)
	}
	return job.ID().String(), nil
}

// Start begins running jobs. Tasks receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.logger.Info("Starting scheduler", logfields.Count(len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	return nil
}

func (s *Scheduler) execute(name string, task Task) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	err := task(ctx)
	duration := time.Since(start)
	s.recorder.ObserveJob(name, duration, err == nil)

	if err != nil {
		s.logger.Error("Scheduled job failed",
			logfields.Job(name),
			logfields.DurationMS(float64(duration.Milliseconds())),
			logfields.Error(err))
		return
	}
	s.logger.Debug("Scheduled job completed",
		logfields.Job(name),
		logfields.DurationMS(float64(duration.Milliseconds())))
}
