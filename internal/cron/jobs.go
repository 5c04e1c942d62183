package cron

import (
	"context"
	"fmt"
	"time"
)

type readNotificationPurger interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationRetentionJob deletes read notifications older than the
// retention window. Unread notifications are never touched.
type NotificationRetentionJob struct {
	repo      readNotificationPurger
	retention time.Duration
	now       func() time.Time
}

func NewNotificationRetentionJob(repo readNotificationPurger, retentionDays int) (*NotificationRetentionJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if retentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive")
	}
	return &NotificationRetentionJob{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}, nil
}

func (j *NotificationRetentionJob) Name() string { return "notification_retention" }

func (j *NotificationRetentionJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.retention)
	rows, err := j.repo.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete read notifications before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return rows, nil
}

type archivedCartPruner interface {
	DeleteForArchivedProducts(ctx context.Context) (int64, error)
}

// CartPruneJob removes cart lines whose product was archived.
type CartPruneJob struct {
	repo archivedCartPruner
}

func NewCartPruneJob(repo archivedCartPruner) (*CartPruneJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &CartPruneJob{repo: repo}, nil
}

func (j *CartPruneJob) Name() string { return "cart_prune" }

func (j *CartPruneJob) Run(ctx context.Context) (int64, error) {
	rows, err := j.repo.DeleteForArchivedProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune archived cart lines: %w", err)
	}
	return rows, nil
}
