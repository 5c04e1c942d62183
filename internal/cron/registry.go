package cron

import (
	"context"
	"fmt"
)

// Job is one unit of maintenance work executed per cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) (int64, error)
}

// Registry keeps jobs in registration order. Names are unique because they
// label metrics and log lines.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{names: map[string]struct{}{}}
}

// Register adds job, rejecting nil jobs and duplicate names.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return fmt.Errorf("job required")
	}
	if _, dup := r.names[job.Name()]; dup {
		return fmt.Errorf("job %q already registered", job.Name())
	}
	r.names[job.Name()] = struct{}{}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}
