package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	robfig "github.com/robfig/cron/v3"

	"github.com/tatame/tatame-backend/pkg/logger"
	"github.com/tatame/tatame-backend/pkg/metrics"
)

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	// Location interprets schedules; defaults to UTC.
	Location *time.Location
}

// Service runs registered jobs on their schedules, each tick under the
// job's distributed lease so only one replica does the work.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	location *time.Location
}

func NewService(p ServiceParams) (*Service, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("cron: logger required")
	case p.Lock == nil:
		return nil, errors.New("cron: lock required")
	}
	if p.Registry == nil {
		p.Registry = NewRegistry()
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	return &Service{
		logg:     p.Logger,
		registry: p.Registry,
		lock:     p.Lock,
		metrics:  p.Metrics,
		location: p.Location,
	}, nil
}

// Run blocks until ctx is canceled, then waits for running jobs.
func (s *Service) Run(ctx context.Context) error {
	adapter := schedulerLog{logg: s.logg, ctx: ctx}
	scheduler := robfig.New(
		robfig.WithLocation(s.location),
		robfig.WithLogger(adapter),
		robfig.WithChain(robfig.Recover(adapter), robfig.SkipIfStillRunning(adapter)),
	)

	for _, entry := range s.registry.Entries() {
		job := entry.Job
		if _, err := scheduler.AddFunc(entry.Spec, func() { _ = s.tick(ctx, job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name(), err)
		}
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "spec": entry.Spec, "tz": s.location.String()}), "cron.scheduled")
	}

	scheduler.Start()
	<-ctx.Done()
	s.logg.Info(ctx, "cron.stopping")
	<-scheduler.Stop().Done()
	return ctx.Err()
}

// RunNow performs one tick of the named job immediately.
func (s *Service) RunNow(ctx context.Context, name string) error {
	job, ok := s.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("cron: unknown job %q", name)
	}
	return s.tick(ctx, job)
}

func (s *Service) tick(ctx context.Context, job Job) error {
	name := job.Name()
	ctx = s.logg.WithField(ctx, "job", name)

	release, err := s.lock.TryLock(ctx, name)
	if errors.Is(err, ErrLockHeld) {
		s.logg.Info(ctx, "cron.skipped_locked")
		s.metrics.ObserveRun(name, metrics.CronSkipped, 0)
		return nil
	}
	if err != nil {
		s.logg.Error(ctx, "cron.lock_failed", err)
		s.metrics.ObserveRun(name, metrics.CronFailed, 0)
		return fmt.Errorf("lock %s: %w", name, err)
	}
	defer func() {
		// the lease must be dropped even when shutdown canceled ctx
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "cron.release_failed", err)
		}
	}()

	started := time.Now()
	runErr := job.Run(ctx)
	elapsed := time.Since(started)
	ctx = s.logg.WithField(ctx, "duration_ms", elapsed.Milliseconds())

	if runErr != nil {
		s.logg.Error(ctx, "cron.failed", runErr)
		s.metrics.ObserveRun(name, metrics.CronFailed, elapsed)
		return runErr
	}
	s.logg.Info(ctx, "cron.completed")
	s.metrics.ObserveRun(name, metrics.CronSucceeded, elapsed)
	return nil
}

// schedulerLog adapts robfig's logger to ours.
type schedulerLog struct {
	logg *logger.Logger
	ctx  context.Context
}

func (a schedulerLog) Info(msg string, keysAndValues ...any) {
	a.logg.Debug(a.logg.WithFields(a.ctx, kv(keysAndValues)), "cron.scheduler."+msg)
}

func (a schedulerLog) Error(err error, msg string, keysAndValues ...any) {
	a.logg.Error(a.logg.WithFields(a.ctx, kv(keysAndValues)), "cron.scheduler."+msg, err)
}

func kv(keysAndValues []any) map[string]any {
	out := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return out
}
