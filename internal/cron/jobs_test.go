package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

type stubSweepRepo struct {
	cutoff  time.Time
	expired int64
	err     error
}

func (s *stubSweepRepo) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.expired, s.err
}

type stubCleanupRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (s *stubCleanupRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

func TestDuesExpiryJobUsesConfiguredMaxAge(t *testing.T) {
	repo := &stubSweepRepo{expired: 3}
	job, err := NewDuesExpiryJob(DuesExpiryJobParams{
		Logger:     testLogger(),
		Repository: repo,
		MaxAge:     72 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	before := time.Now().UTC().Add(-72 * time.Hour)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	after := time.Now().UTC().Add(-72 * time.Hour)

	if repo.cutoff.Before(before.Add(-time.Second)) || repo.cutoff.After(after.Add(time.Second)) {
		t.Fatalf("cutoff outside expected window: %v", repo.cutoff)
	}
}

func TestDuesExpiryJobPropagatesError(t *testing.T) {
	repo := &stubSweepRepo{err: errors.New("db down")}
	job, err := NewDuesExpiryJob(DuesExpiryJobParams{Logger: testLogger(), Repository: repo})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNotificationCleanupJobDefaultsRetention(t *testing.T) {
	repo := &stubCleanupRepo{deleted: 10}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     testLogger(),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	expected := time.Now().UTC().Add(-notificationRetentionDays * 24 * time.Hour)
	if diff := repo.cutoff.Sub(expected); diff > time.Second || diff < -time.Second {
		t.Fatalf("cutoff drifted: %v", diff)
	}
}

func TestNewJobsValidateDependencies(t *testing.T) {
	if _, err := NewDuesExpiryJob(DuesExpiryJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected repo validation error")
	}
	if _, err := NewNotificationCleanupJob(NotificationCleanupJobParams{Repository: &stubCleanupRepo{}}); err == nil {
		t.Fatal("expected logger validation error")
	}
}
