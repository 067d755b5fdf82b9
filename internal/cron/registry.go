package cron

import (
	"context"
	"fmt"

	robfig "github.com/robfig/cron/v3"
)

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry binds a job to a standard five-field cron expression.
type Entry struct {
	Spec string
	Job  Job
}

// Registry tracks registered cron jobs.
type Registry struct {
	entries []Entry
	names   map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{names: map[string]struct{}{}}
}

// Register adds a job; the spec is validated up front so a typo fails at boot.
func (r *Registry) Register(spec string, job Job) error {
	if job == nil {
		return fmt.Errorf("job required")
	}
	if _, err := robfig.ParseStandard(spec); err != nil {
		return fmt.Errorf("job %s: invalid schedule %q: %w", job.Name(), spec, err)
	}
	if _, dup := r.names[job.Name()]; dup {
		return fmt.Errorf("job %s already registered", job.Name())
	}
	r.names[job.Name()] = struct{}{}
	r.entries = append(r.entries, Entry{Spec: spec, Job: job})
	return nil
}

// Entries returns the registered jobs in the order they were added.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Lookup finds a job by name.
func (r *Registry) Lookup(name string) (Job, bool) {
	for _, entry := range r.entries {
		if entry.Job.Name() == name {
			return entry.Job, true
		}
	}
	return nil, false
}
