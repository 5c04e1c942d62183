package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePurger struct {
	cutoff time.Time
	rows   int64
	err    error
}

func (f *fakePurger) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.rows, f.err
}

type fakePruner struct {
	rows  int64
	err   error
	calls int
}

func (f *fakePruner) DeleteForArchivedProducts(ctx context.Context) (int64, error) {
	f.calls++
	return f.rows, f.err
}

func TestNotificationRetentionJobUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	repo := &fakePurger{rows: 42}
	job, err := NewNotificationRetentionJob(repo, 30)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.now = func() time.Time { return now }

	rows, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rows != 42 {
		t.Fatalf("expected 42 rows, got %d", rows)
	}
	if want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC); !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
}

func TestNotificationRetentionJobValidatesInput(t *testing.T) {
	if _, err := NewNotificationRetentionJob(nil, 30); err == nil {
		t.Fatalf("expected error for nil repo")
	}
	if _, err := NewNotificationRetentionJob(&fakePurger{}, 0); err == nil {
		t.Fatalf("expected error for zero retention")
	}
}

func TestJobsPropagateErrors(t *testing.T) {
	retention, _ := NewNotificationRetentionJob(&fakePurger{err: errors.New("db down")}, 7)
	if _, err := retention.Run(context.Background()); err == nil {
		t.Fatalf("expected retention error")
	}

	pruner := &fakePruner{err: errors.New("db down")}
	prune, _ := NewCartPruneJob(pruner)
	if _, err := prune.Run(context.Background()); err == nil {
		t.Fatalf("expected prune error")
	}
}

func TestCartPruneJobReportsRows(t *testing.T) {
	pruner := &fakePruner{rows: 3}
	job, err := NewCartPruneJob(pruner)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	rows, err := job.Run(context.Background())
	if err != nil || rows != 3 || pruner.calls != 1 {
		t.Fatalf("unexpected result rows=%d err=%v calls=%d", rows, err, pruner.calls)
	}
}
