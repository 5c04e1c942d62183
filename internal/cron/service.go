package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/agromart/agromart-backend/pkg/logger"
	"github.com/agromart/agromart-backend/pkg/metrics"
)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs every registered job once per interval while holding the lock.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("registry required")
	}
	if params.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	return &Service{
		logg:     params.Logger,
		registry: params.Registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: params.Interval,
	}, nil
}

// Run executes a cycle immediately and then on every tick until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "cron cycle failed", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron worker stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce executes one cycle. Every job runs even when an earlier one fails;
// the failures come back combined.
func (s *Service) RunOnce(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "cron lock held elsewhere, skipping cycle")
		return nil
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logg.Error(ctx, "cron lock release failed", err)
		}
	}()

	var errs error
	for _, job := range s.registry.Jobs() {
		errs = multierr.Append(errs, s.runJob(ctx, job))
	}
	return errs
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	name := job.Name()
	jobCtx := s.logg.WithFields(ctx, map[string]any{"job": name, "event": "cron.job"})

	start := time.Now()
	rows, err := job.Run(jobCtx)
	elapsed := time.Since(start)

	s.metrics.ObserveDuration(name, elapsed)
	jobCtx = s.logg.WithFields(jobCtx, map[string]any{
		"duration_ms":   elapsed.Milliseconds(),
		"rows_affected": rows,
	})
	if err != nil {
		s.metrics.IncFailure(name)
		s.logg.Error(jobCtx, "job failed", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	s.metrics.IncSuccess(name)
	s.metrics.AddRowsAffected(name, rows)
	s.logg.Info(jobCtx, "job completed")
	return nil
}
