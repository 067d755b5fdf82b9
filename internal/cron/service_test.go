package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tatame/tatame-backend/pkg/logger"
	"github.com/tatame/tatame-backend/pkg/metrics"
)

type fakeLock struct {
	held    map[string]bool
	release int
}

func (f *fakeLock) TryLock(_ context.Context, job string) (func(context.Context) error, error) {
	if f.held == nil {
		f.held = map[string]bool{}
	}
	if f.held[job] {
		return nil, ErrLockHeld
	}
	f.held[job] = true
	return func(context.Context) error {
		f.release++
		delete(f.held, job)
		return nil
	}, nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestRunNowRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	cronMetrics := metrics.NewCronJobMetrics(reg)
	registry := NewRegistry()
	ok := &testJob{name: "success"}
	bad := &testJob{name: "fail", err: errors.New("boom")}
	if err := registry.Register("@daily", ok); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("@daily", bad); err != nil {
		t.Fatalf("register: %v", err)
	}
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{Logger: newTestLogger(), Registry: registry, Lock: lock, Metrics: cronMetrics})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.RunNow(context.Background(), "success"); err != nil {
		t.Fatalf("run success: %v", err)
	}
	if err := service.RunNow(context.Background(), "fail"); err == nil {
		t.Fatal("expected failing job error")
	}
	if ok.runs != 1 || bad.runs != 1 {
		t.Fatalf("expected one run each, got %d/%d", ok.runs, bad.runs)
	}
	if lock.release != 2 {
		t.Fatalf("expected lock released twice, got %d", lock.release)
	}
	if got := runsFor(t, reg, "fail", metrics.CronFailed); got != 1 {
		t.Fatalf("expected one failed run, got %v", got)
	}
}

func TestRunNowSkipsWhenLocked(t *testing.T) {
	reg := prometheus.NewRegistry()
	registry := NewRegistry()
	job := &testJob{name: "busy"}
	_ = registry.Register("@daily", job)
	lock := &fakeLock{held: map[string]bool{"busy": true}}
	service, _ := NewService(ServiceParams{Logger: newTestLogger(), Registry: registry, Lock: lock, Metrics: metrics.NewCronJobMetrics(reg)})

	if err := service.RunNow(context.Background(), "busy"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("locked job should not run")
	}
	if got := runsFor(t, reg, "busy", metrics.CronSkipped); got != 1 {
		t.Fatalf("expected skipped run recorded, got %v", got)
	}
}

// runsFor reads one series of the runs counter.
func runsFor(t *testing.T, reg *prometheus.Registry, job, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "tatame_cron_job_runs_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range m.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["job"] == job && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRunNowUnknownJob(t *testing.T) {
	service, _ := NewService(ServiceParams{Logger: newTestLogger(), Lock: &fakeLock{}})
	if err := service.RunNow(context.Background(), "nope"); err == nil {
		t.Fatal("expected unknown job error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register("0 9 * * *", &testJob{name: "noop"})
	service, _ := NewService(ServiceParams{Logger: newTestLogger(), Registry: registry, Lock: &fakeLock{}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
