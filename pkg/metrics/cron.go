package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agromart"

// CronJobMetrics records metadata for scheduled jobs.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	affected *prometheus.CounterVec
}

// NewCronJobMetrics registers the cron job metrics on the provided registerer.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "cron",
		Name:      "job_duration_seconds",
		Help:      "Duration of cron jobs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cron",
		Name:      "job_runs_total",
		Help:      "Cron job executions by outcome.",
	}, []string{"job", "outcome"})
	affected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cron",
		Name:      "rows_affected_total",
		Help:      "Rows changed by cron jobs.",
	}, []string{"job"})
	reg.MustRegister(duration, runs, affected)
	return &CronJobMetrics{
		duration: duration,
		runs:     runs,
		affected: affected,
	}
}

// ObserveDuration records the duration for the named job.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	c.incRun(job, "success")
}

// IncFailure increments the failure counter for the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	c.incRun(job, "failure")
}

// AddRowsAffected accumulates rows changed by the named job.
func (c *CronJobMetrics) AddRowsAffected(job string, rows int64) {
	if c == nil || c.affected == nil || rows <= 0 {
		return
	}
	c.affected.WithLabelValues(normalizeLabel(job)).Add(float64(rows))
}

func (c *CronJobMetrics) incRun(job, outcome string) {
	if c == nil || c.runs == nil {
		return
	}
	c.runs.WithLabelValues(normalizeLabel(job), outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
